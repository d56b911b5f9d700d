package llm

// clientConfig holds construction parameters shared by all providers.
type clientConfig struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

// Option is a functional option for configuring a Generator.
type Option func(*clientConfig)

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the provider endpoint. Only the OpenAI-compatible
// generator honors this; it enables local vLLM/Ollama style endpoints.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithModel sets the model identifier, overriding the provider default.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithMaxTokens caps the output token count.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature in [0,1].
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = temp
	}
}
