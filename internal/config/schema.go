// Package config defines the configuration schema for datasage.
//
// Config is loaded from ~/.datasage/config.json; secrets may also arrive via
// environment variables, which take precedence over file values.
package config

import "os"

// CatalogConfig holds the connection settings for the metadata catalog API.
type CatalogConfig struct {
	BaseURL         string `json:"baseUrl"`
	APIToken        string `json:"apiToken"`
	TimeoutSeconds  int    `json:"timeoutSeconds"`
	CacheTTLSeconds int    `json:"cacheTtlSeconds"`
}

func defaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		TimeoutSeconds:  30,
		CacheTTLSeconds: 300,
	}
}

// ToolServerConfig holds the listen address for the embedded MCP tool server.
type ToolServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func defaultToolServerConfig() ToolServerConfig {
	return ToolServerConfig{Host: "0.0.0.0", Port: 8000}
}

// MCPConfig holds the client-side connection to the MCP tool server.
type MCPConfig struct {
	ServerURL             string `json:"serverUrl"`
	SessionTimeoutSeconds int    `json:"sessionTimeoutSeconds"`
}

func defaultMCPConfig() MCPConfig {
	return MCPConfig{
		ServerURL:             "http://localhost:8000/sse",
		SessionTimeoutSeconds: 300,
	}
}

// ModelConfig holds the LLM settings for the answer engine.
type ModelConfig struct {
	APIKey    string `json:"apiKey"`
	Name      string `json:"name"`
	MaxTokens int    `json:"maxTokens"`
	MaxRounds int    `json:"maxRounds"`
}

func defaultModelConfig() ModelConfig {
	return ModelConfig{
		Name:      "claude-sonnet-4-20250514",
		MaxTokens: 2500,
		MaxRounds: 8,
	}
}

// SlackConfig configures the Slack channel.
type SlackConfig struct {
	Enabled       bool   `json:"enabled"`
	BotToken      string `json:"botToken"`
	AppToken      string `json:"appToken"`
	ReactEmoji    string `json:"reactEmoji"`
	ReplyInThread bool   `json:"replyInThread"`
	HistoryLimit  int    `json:"historyLimit"`
}

func defaultSlackConfig() SlackConfig {
	return SlackConfig{
		ReactEmoji:    "eyes",
		ReplyInThread: true,
		HistoryLimit:  10,
	}
}

// ChannelsConfig groups all channel configurations.
type ChannelsConfig struct {
	Slack SlackConfig `json:"slack"`
}

func defaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{Slack: defaultSlackConfig()}
}

// MaintenanceConfig holds scheduled housekeeping settings.
// CacheFlushSchedule is a cron expression; empty disables the flush job.
type MaintenanceConfig struct {
	CacheFlushSchedule string `json:"cacheFlushSchedule"`
}

func defaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{CacheFlushSchedule: "0 4 * * *"}
}

// Config is the root configuration object, loaded from ~/.datasage/config.json.
type Config struct {
	Catalog     CatalogConfig     `json:"catalog"`
	ToolServer  ToolServerConfig  `json:"toolServer"`
	MCP         MCPConfig         `json:"mcp"`
	Model       ModelConfig       `json:"model"`
	Channels    ChannelsConfig    `json:"channels"`
	Maintenance MaintenanceConfig `json:"maintenance"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Catalog:     defaultCatalogConfig(),
		ToolServer:  defaultToolServerConfig(),
		MCP:         defaultMCPConfig(),
		Model:       defaultModelConfig(),
		Channels:    defaultChannelsConfig(),
		Maintenance: defaultMaintenanceConfig(),
	}
}

// ApplyEnv overlays secret values from the environment onto c.
// Environment variables win over file values so deployments can keep
// credentials out of the config file entirely.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("CATALOG_API_TOKEN"); v != "" {
		c.Catalog.APIToken = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Channels.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_APP_TOKEN"); v != "" {
		c.Channels.Slack.AppToken = v
	}
}
