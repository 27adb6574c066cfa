package crew_service

import (
	"fmt"
	"os"
	"path/filepath"

	"skyscope/entrepreneur/config"
)

// SaveResult writes the research and the plan verbatim to their files,
// replacing earlier runs. It returns the paths written.
func SaveResult(result Result, output config.OutputConfig) ([]string, error) {
	dir := output.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{output.ResearchFile, result.Research},
		{output.PlanFile, result.Plan},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
