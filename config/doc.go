// Package config loads configuration structs from environment variables,
// with support for custom prefixes, alternative variable names, defaults and
// .env file loading.
//
// # Basic Usage
//
// Define a configuration struct with environment variable tags:
//
//	type Config struct {
//	    WebhookURL string        `env:"SLACK_WEBHOOK_URL|slackWebhookUrl"`
//	    Timeout    time.Duration `env:"SLACK_TIMEOUT,default:30s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # Alternative Names
//
// Names separated by "|" are tried in order and the first non-empty variable
// wins. This lets one field accept both SLACK_BOT_TOKEN and the camel-case
// slackBotToken some runners export, with a legacy SLACK_TOKEN as last resort.
// The same ordered resolution is available directly through Lookup.
//
// # Custom Prefixes
//
//	// Looks for MYAPP_SLACK_WEBHOOK_URL, MYAPP_slackWebhookUrl, ...
//	err := config.Load(&cfg, config.LoadOptions{Prefix: "MYAPP_"})
//
// # Supported Types
//
//   - string
//   - int, int64
//   - bool ("true", "false", "1", "0")
//   - time.Duration ("1h30m", "45s", ...)
//
// Fields of any other kind are left untouched.
//
// # Environment File Support
//
// A .env file in the current directory is loaded before variables are read.
// Variables already set in the process environment take precedence.
//
// # Debug Mode
//
// Set SLACK_CONFIG_DEBUG=true (or LoadOptions.Debug) to print each resolved
// variable name to stderr. Values are masked after their first four characters.
package config
