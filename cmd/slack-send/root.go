package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gobeaver/slack-dispatch/config"
	"github.com/gobeaver/slack-dispatch/slack"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile  string
	prefix   string
	webhook  string
	token    string
	baseURL  string
	timeout  time.Duration
	logLevel string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "slack-send",
		Short: "Send a message to Slack through a webhook or chat.postMessage",
		Long: `slack-send delivers one message per invocation to a Slack channel.

Credentials are read from the environment (SLACK_WEBHOOK_URL, SLACK_BOT_TOKEN
and their alternative names) or from flags. A webhook always takes precedence
over a bot token.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "load environment variables from this file before reading configuration")
	flags.StringVar(&opts.prefix, "prefix", "", "prefix applied to every environment variable name")
	flags.StringVar(&opts.webhook, "webhook", "", "incoming webhook URL (overrides SLACK_WEBHOOK_URL)")
	flags.StringVar(&opts.token, "token", "", "bot token for chat.postMessage (overrides SLACK_BOT_TOKEN)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Slack Web API root (overrides SLACK_BASE_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout, 0 disables it (overrides SLACK_TIMEOUT)")
	flags.StringVar(&opts.logLevel, "log-level", "", "enable logs on stderr at this level: debug, info, warn, error")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and responses on stderr")

	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newService builds a Service from the environment, then applies any
// persistent flag the user set explicitly.
func (o *rootOptions) newService(cmd *cobra.Command) (*slack.Service, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", o.envFile, err)
		}
	}

	cfg, err := slack.GetConfig(config.LoadOptions{Prefix: o.prefix})
	if err != nil {
		return nil, fmt.Errorf("failed to load slack config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("webhook") {
		cfg.WebhookURL = o.webhook
	}
	if flags.Changed("token") {
		cfg.BotToken = o.token
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("log-level") {
		cfg.EnableLogging = true
		cfg.LogLevel = o.logLevel
	}
	if o.verbose {
		cfg.EnableLogging = true
		cfg.LogLevel = "debug"
	}

	svc, err := slack.New(*cfg)
	if err != nil {
		return nil, err
	}
	svc.SetLogger(slack.NewLoggerTo(cmd.ErrOrStderr(), cfg.EnableLogging, cfg.LogLevel))
	return svc, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slack-send version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slack-send %s\n", version)
		},
	}
}
