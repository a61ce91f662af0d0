package slack

import (
	"encoding/json"
	"errors"
	"time"
)

var errNoResult = errors.New("internal error: dispatch returned no result")

// Transport names reported in DispatchResult.Transport.
const (
	TransportWebhook = "webhook"
	TransportAPI     = "api"
)

// DispatchResult describes a message accepted by Slack.
type DispatchResult struct {
	Success     bool            `json:"success"`
	Channel     string          `json:"channel"`
	Text        string          `json:"text"`
	Timestamp   float64         `json:"timestamp"`
	ThreadTS    string          `json:"threadTs,omitempty"`
	MessageID   string          `json:"messageId,omitempty"`
	RawResponse json.RawMessage `json:"rawResponse,omitempty"`
	Transport   string          `json:"transport"`
}

// Result is the record reported for every invocation. Data is set iff
// Success is true, Error iff it is false.
type Result struct {
	Success bool            `json:"success"`
	Data    *DispatchResult `json:"data"`
	Error   *string         `json:"error"`

	err error
}

// Err returns the error behind a failed Result, nil on success.
func (r Result) Err() error { return r.err }

// Report turns the outcome of a dispatch into a Result.
func Report(res *DispatchResult, err error) Result {
	if err != nil {
		return Failure(err)
	}
	if res == nil {
		return Failure(errNoResult)
	}
	return Result{Success: true, Data: res}
}

// Failure builds the uniform failure record for err.
func Failure(err error) Result {
	msg := err.Error()
	return Result{Success: false, Error: &msg, err: err}
}

// unixSeconds renders t the way Slack renders message timestamps.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
