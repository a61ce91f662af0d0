package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

const postMessageMethod = "chat.postMessage"

// postMessagePayload is the JSON body sent to chat.postMessage.
type postMessagePayload struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
	Blocks      []json.RawMessage `json:"blocks,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
}

// postMessageResponse decodes the fields of the chat.postMessage answer we
// report back. ok/error handling comes from slack-go's SlackResponse.
type postMessageResponse struct {
	slack.SlackResponse
	Timestamp string `json:"ts"`
	Message   *struct {
		Timestamp       string `json:"ts"`
		ThreadTimestamp string `json:"thread_ts"`
	} `json:"message"`
}

// apiSender posts through the Web API with a bot token.
type apiSender struct {
	svc      *Service
	token    string
	endpoint string
}

func newAPISender(svc *Service, token, baseURL string) *apiSender {
	return &apiSender{
		svc:      svc,
		token:    token,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + postMessageMethod,
	}
}

func (a *apiSender) name() string { return TransportAPI }

func (a *apiSender) send(ctx context.Context, p Params) (*DispatchResult, error) {
	payload, err := json.Marshal(postMessagePayload{
		Channel:     p.Channel,
		Text:        p.Text,
		ThreadTS:    p.ThreadTS,
		Blocks:      p.Blocks,
		Attachments: p.Attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", postMessageMethod, err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.token)

	status, body, err := a.svc.doRequest(ctx, a.endpoint, payload, header)
	if err != nil {
		return nil, &TransportError{Op: postMessageMethod + " request failed", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{Op: postMessageMethod + " failed", StatusCode: status, Body: string(body)}
	}

	var resp postMessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: postMessageMethod + " returned malformed JSON", StatusCode: status, Body: string(body), Err: err}
	}

	if !resp.Ok {
		providerErr := resp.Err()
		code := resp.Error
		if providerErr == nil {
			code = "unknown_error"
			providerErr = slack.SlackErrorResponse{Err: code}
		}
		return nil, &ProviderError{Method: postMessageMethod, Code: code, Err: providerErr}
	}

	result := &DispatchResult{
		Success:     true,
		Channel:     p.Channel,
		Text:        p.Text,
		Timestamp:   parseTimestamp(resp.Timestamp),
		MessageID:   resp.Timestamp,
		RawResponse: json.RawMessage(body),
		Transport:   TransportAPI,
	}
	if resp.Message != nil {
		if resp.Message.Timestamp != "" {
			result.MessageID = resp.Message.Timestamp
		}
		result.ThreadTS = resp.Message.ThreadTimestamp
	}
	return result, nil
}

// parseTimestamp reads a Slack "seconds.micros" timestamp, falling back to
// the local clock when the provider omitted it.
func parseTimestamp(ts string) float64 {
	if f, err := strconv.ParseFloat(ts, 64); err == nil {
		return f
	}
	return unixSeconds(time.Now())
}
