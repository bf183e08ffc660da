package config

import "fmt"

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	ListenAddress string
}

// ElasticConfig represents the search engine configuration
type ElasticConfig struct {
	URL string
}

// AccountConfig represents one IMAP mailbox account
type AccountConfig struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ClassifierConfig represents the zero-shot classifier configuration
type ClassifierConfig struct {
	APIURL   string
	APIToken string
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// NotifierConfig represents the outbound webhook configuration
type NotifierConfig struct {
	WebhookURL string
}

// GetServer returns the HTTP API configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetElastic returns the search engine configuration
func (c *Config) GetElastic() ElasticConfig {
	return ElasticConfig{
		URL: c.GetString("elastic.url"),
	}
}

// GetAccounts returns the configured IMAP accounts
func (c *Config) GetAccounts() ([]AccountConfig, error) {
	var accounts []AccountConfig
	if err := c.v.UnmarshalKey("imap.accounts", &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse imap.accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].Port == 0 {
			accounts[i].Port = 993
		}
	}
	return accounts, nil
}

// GetClassifier returns the zero-shot classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		APIURL:   c.GetString("classifier.api_url"),
		APIToken: c.GetString("classifier.api_token"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetNotifier returns the webhook notifier configuration
func (c *Config) GetNotifier() NotifierConfig {
	return NotifierConfig{
		WebhookURL: c.GetString("notifier.webhook_url"),
	}
}
