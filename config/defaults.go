package config

const DefaultTopic = "Automated passive income generating from home online crypto income solution"

// Default returns the stock Researcher / Tech Content Strategist crew.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Title:    "Skyscope Sentinel Multi-Agent AI Entrepreneur",
			Subtitle: "by Skyscope Sentinel Intelligence",
			Author:   "Casey J. Topojani",
			License:  "MIT",
		},
		DefaultTopic: DefaultTopic,
		Verbose:      true,
		LLM: LLMConfig{
			Provider:      "ollama",
			Model:         "internlm2",
			Temperature:   0.7,
			MaxIterations: 15,
			CheckRuntime:  true,
			PullModel:     true,
		},
		Search: SearchConfig{
			Provider:    "duckduckgo",
			TavilyDepth: "basic",
			MaxResults:  5,
		},
		Researcher: AgentConfig{
			Role: "Researcher",
			Goal: "Research and develop a six-figure income-producing automated passive income solution focused on crypto, generating from home online.",
			Backstory: `You are an expert financial researcher and developer specializing in cryptocurrency.
You are tasked with researching and designing an automated passive income system using crypto.
Your goal is to find and analyze existing solutions, identify opportunities, and generate specific steps for implementation.
Focus on scalability, security, and long-term sustainability.`,
			AllowDelegation: false,
			Tools:           []string{"Duck_Duck_Go_Search"},
		},
		Writer: AgentConfig{
			Role: "Tech Content Strategist",
			Goal: "Craft a detailed plan outlining the steps and resources needed to implement the researched crypto income solution.",
			Backstory: `You are a skilled technical writer with a deep understanding of cryptocurrency and online business.
Your role is to translate complex research findings into a clear and actionable plan.
Break down the solution into manageable steps, provide resources for each step, and ensure the plan is easily understood by a beginner.`,
			AllowDelegation: true,
		},
		ResearchTask: TaskConfig{
			Description:    "{{topic}}",
			ExpectedOutput: "A comprehensive report outlining the steps and resources required to develop a six-figure crypto passive income solution, ensuring scalability, security, and long-term sustainability.",
		},
		WriteTask: TaskConfig{
			Description: `Using the insights provided by the researcher, create a detailed implementation plan for the crypto income solution.
The plan should include the following:
  - A clear step-by-step guide for setting up the solution.
  - Specific resources, tools, and platforms needed for each step.
  - Potential challenges and mitigation strategies.
  - Strategies for ongoing maintenance and optimization.
The plan should be comprehensive and easy to understand, targeting beginners with minimal technical experience.`,
			ExpectedOutput: "A detailed implementation plan for the crypto income solution, broken down into manageable steps, with specific resources and tools provided for each step. The plan should be easy to follow and suitable for beginners.",
		},
		Output: OutputConfig{
			Save:         true,
			Dir:          ".",
			ResearchFile: "research_report.txt",
			PlanFile:     "implementation_plan.txt",
		},
		Server: ServerConfig{
			Addr: ":8501",
		},
	}
}
