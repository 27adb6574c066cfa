package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"skyscope/entrepreneur/config"
	"skyscope/entrepreneur/services/crew_service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, topic string) (crew_service.Result, error)
}

// Server is the form front end of the pipeline. Runs are serialized: one
// request completes before the next one starts.
type Server struct {
	cfg    *config.Config
	runner Runner
	// Preflight is called before each run, e.g. to check the model runtime.
	Preflight func(ctx context.Context) error

	mu sync.Mutex
}

type pageData struct {
	App    config.AppConfig
	Topic  string
	Error  string
	Result *crew_service.Result
}

type GenerateRequest struct {
	Topic string `json:"topic" form:"topic"`
	Save  *bool  `json:"save" form:"save"`
}

type GenerateResponse struct {
	crew_service.Result
	Files []string `json:"files,omitempty"`
}

func NewServer(cfg *config.Config, runner Runner) *Server {
	return &Server{cfg: cfg, runner: runner}
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	r.Use(cors.New(corsConfig))

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", s.index)
	r.POST("/generate", s.generateForm)
	r.POST("/api/generate", s.generateJSON)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{App: s.cfg.App, Topic: s.cfg.DefaultTopic})
}

func (s *Server) generateForm(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", pageData{App: s.cfg.App, Topic: s.cfg.DefaultTopic, Error: err.Error()})
		return
	}

	result, _, err := s.generate(context.WithoutCancel(c.Request.Context()), req)
	if err != nil {
		c.HTML(statusFor(err), "index.html", pageData{App: s.cfg.App, Topic: req.Topic, Error: err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html", pageData{App: s.cfg.App, Topic: req.Topic, Result: &result})
}

func (s *Server) generateJSON(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, files, err := s.generate(context.WithoutCancel(c.Request.Context()), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{Result: result, Files: files})
}

// generate runs the crew for req. Callers detach ctx from the client
// connection so a dropped request does not abort a run halfway.
func (s *Server) generate(ctx context.Context, req GenerateRequest) (crew_service.Result, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.GetLogger()
	if s.Preflight != nil {
		if err := s.Preflight(ctx); err != nil {
			return crew_service.Result{}, nil, &unavailableError{err}
		}
	}

	result, err := s.runner.Run(ctx, req.Topic)
	if err != nil {
		logger.Error(ctx, "Generation failed: %v", err)
		return result, nil, err
	}

	save := s.cfg.Output.Save
	if req.Save != nil {
		save = *req.Save
	}
	if !save {
		return result, nil, nil
	}
	files, err := crew_service.SaveResult(result, s.cfg.Output)
	if err != nil {
		return result, files, err
	}
	return result, files, nil
}

type unavailableError struct{ err error }

func (e *unavailableError) Error() string { return e.err.Error() }
func (e *unavailableError) Unwrap() error { return e.err }

func statusFor(err error) int {
	var unavailable *unavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
