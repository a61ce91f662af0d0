package slack

import (
	"time"

	"github.com/gobeaver/slack-dispatch/config"
)

// DefaultBaseURL is the Slack Web API root used when no override is configured.
const DefaultBaseURL = "https://slack.com/api"

// Config defines slack configuration. Each credential accepts the variable
// names used by the different runners that launch this action, tried in order.
type Config struct {
	WebhookURL string        `env:"SLACK_WEBHOOK_URL|slackWebhookUrl"`
	BotToken   string        `env:"SLACK_BOT_TOKEN|slackBotToken|SLACK_TOKEN"`
	BaseURL    string        `env:"SLACK_BASE_URL|slackBaseUrl,default:https://slack.com/api"`
	UserAgent  string        `env:"SLACK_USER_AGENT,default:slack-dispatch/1.0"`
	Timeout    time.Duration `env:"SLACK_TIMEOUT,default:30s"` // 0 disables the client timeout

	// Security
	MaxMessageSize int  `env:"SLACK_MAX_MESSAGE_SIZE,default:0"` // characters, 0 disables the check
	RedactLogs     bool `env:"SLACK_REDACT_LOGS,default:true"`

	// Monitoring
	EnableLogging bool   `env:"SLACK_ENABLE_LOGGING,default:false"`
	LogLevel      string `env:"SLACK_LOG_LEVEL,default:info"`
}

// DefaultConfig returns a Config with all default values applied.
// Use this when creating configs programmatically instead of from environment variables.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      "slack-dispatch/1.0",
		Timeout:        30 * time.Second,
		MaxMessageSize: 0,
		RedactLogs:     true,
		EnableLogging:  false,
		LogLevel:       "info",
	}
}

// GetConfig returns config loaded from environment
func GetConfig(opts ...config.LoadOptions) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
