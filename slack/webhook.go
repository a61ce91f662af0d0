package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// webhookPayload is the body accepted by incoming webhooks.
type webhookPayload struct {
	Text        string            `json:"text"`
	Channel     string            `json:"channel,omitempty"`
	Blocks      []json.RawMessage `json:"blocks,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
}

// webhookSender posts to an incoming webhook. Webhooks answer with the
// literal body "ok" and never echo a message timestamp.
type webhookSender struct {
	svc *Service
	url string
}

func (w *webhookSender) name() string { return TransportWebhook }

func (w *webhookSender) send(ctx context.Context, p Params) (*DispatchResult, error) {
	payload, err := json.Marshal(webhookPayload{
		Text:        p.Text,
		Channel:     p.Channel,
		Blocks:      p.Blocks,
		Attachments: p.Attachments,
		ThreadTS:    p.ThreadTS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	status, body, err := w.svc.doRequest(ctx, w.url, payload, nil)
	if err != nil {
		return nil, &TransportError{Op: "webhook request failed", Err: err}
	}

	if status < 200 || status > 299 || strings.TrimSpace(string(body)) != "ok" {
		return nil, &TransportError{Op: "webhook rejected message", StatusCode: status, Body: string(body)}
	}

	raw, _ := json.Marshal(strings.TrimSpace(string(body)))
	return &DispatchResult{
		Success:     true,
		Channel:     p.Channel,
		Text:        p.Text,
		Timestamp:   unixSeconds(time.Now()),
		ThreadTS:    p.ThreadTS,
		RawResponse: raw,
		Transport:   TransportWebhook,
	}, nil
}
