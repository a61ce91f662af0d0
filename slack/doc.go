// Package slack delivers a single message to Slack, either through an
// incoming webhook or through the chat.postMessage Web API method.
//
// # Quick Start
//
// Initialize the service from environment variables and run one invocation:
//
//	import "github.com/gobeaver/slack-dispatch/slack"
//
//	if err := slack.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
//	res := slack.Slack().Run(ctx, map[string]any{
//	    "channel": "#deploys",
//	    "text":    "Release 1.4.2 is live",
//	})
//	json.NewEncoder(os.Stdout).Encode(res)
//
// # Transport Selection
//
// A webhook URL always wins: the "webhook" parameter first, then
// SLACK_WEBHOOK_URL or slackWebhookUrl. Without a webhook the service posts
// to <base>/chat.postMessage with a bearer token taken from Config.BotToken,
// SLACK_BOT_TOKEN, slackBotToken or the legacy SLACK_TOKEN, in that order.
// With neither configured the invocation fails with ErrConfiguration before
// any request is made.
//
// # Environment Variables
//
//   - SLACK_WEBHOOK_URL / slackWebhookUrl: incoming webhook URL
//   - SLACK_BOT_TOKEN / slackBotToken / SLACK_TOKEN: bot token
//   - SLACK_BASE_URL / slackBaseUrl: Web API root (default: https://slack.com/api)
//   - SLACK_TIMEOUT: HTTP client timeout (default: 30s, 0 disables it)
//   - SLACK_MAX_MESSAGE_SIZE: maximum text length in characters (default: 0, no limit)
//   - SLACK_ENABLE_LOGGING, SLACK_LOG_LEVEL: structured logs on stderr
//   - SLACK_REDACT_LOGS: mask tokens and webhook secrets in logs (default: true)
//
// Use WithPrefix to read the same variables under a custom prefix:
//
//	svc, err := slack.WithPrefix("MYAPP_").New()
//
// # Parameters
//
// Run accepts the parameter shapes produced by different callers: a decoded
// object, a single-element array wrapping one, a JSON document, or the
// positional pair (channel, text). Keys canal/channel, mensagem/texto/text,
// threadTs, blocks, attachments and webhook are recognized. See ParseParams.
//
// Blocks and attachments travel as opaque JSON objects. SectionBlock,
// HeaderBlock and DividerBlock build the common ones:
//
//	header, _ := slack.HeaderBlock("Deploy finished")
//	body, _ := slack.SectionBlock("*api* rolled out to `prod`", true)
//	res, err := svc.Dispatch(ctx, slack.Params{
//	    Channel: "#deploys",
//	    Text:    "Deploy finished",
//	    Blocks:  []json.RawMessage{header, slack.DividerBlock(), body},
//	})
//
// # Results
//
// Run always returns a Result shaped {success, data, error}. Failures are
// classified by the sentinels ErrValidation, ErrConfiguration, ErrTransport
// and ErrProvider; use errors.Is on Result.Err() or ErrorKind to tell them
// apart. Nothing is retried: each invocation makes at most one HTTP call.
package slack
