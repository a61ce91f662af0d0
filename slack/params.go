package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Params is the canonical form of a message request, whatever shape the
// caller supplied it in.
type Params struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	ThreadTS    string            `json:"threadTs,omitempty"`
	Blocks      []json.RawMessage `json:"blocks,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
	Webhook     string            `json:"webhook,omitempty"`
}

// Accepted keys for each field, in priority order.
var (
	channelKeys     = []string{"canal", "channel"}
	textKeys        = []string{"mensagem", "texto", "text"}
	threadKeys      = []string{"threadTs", "thread_ts"}
	webhookKeys     = []string{"webhook", "webhookUrl"}
	blocksKeys      = []string{"blocks"}
	attachmentsKeys = []string{"attachments"}
)

// ParseParams normalizes a loosely-typed input into Params.
//
// Accepted shapes:
//   - Params or *Params
//   - map[string]any (a decoded JSON or YAML object)
//   - []any holding a single object, or positional strings
//   - []string positional arguments: a JSON document, or (channel, text)
//   - string, []byte or json.RawMessage holding JSON; a plain string is the text
//
// Any other shape fails with ErrValidation.
func ParseParams(input any) (Params, error) {
	switch v := input.(type) {
	case nil:
		return Params{}, fmt.Errorf("%w: no parameters supplied", ErrValidation)
	case Params:
		return v, nil
	case *Params:
		if v == nil {
			return Params{}, fmt.Errorf("%w: no parameters supplied", ErrValidation)
		}
		return *v, nil
	case map[string]any:
		return paramsFromMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return paramsFromMap(m)
	case []any:
		return paramsFromList(v)
	case []string:
		return paramsFromPositional(v)
	case json.RawMessage:
		return paramsFromJSON(v)
	case []byte:
		return paramsFromJSON(v)
	case string:
		return paramsFromPositional([]string{v})
	default:
		return Params{}, fmt.Errorf("%w: unsupported parameter type %T", ErrValidation, input)
	}
}

// Validate checks the required fields. A missing channel is accepted when a
// webhook is configured, because incoming webhooks are bound to a channel
// on the Slack side.
func (p Params) Validate(webhookConfigured bool) error {
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("%w: message text is required", ErrValidation)
	}
	if strings.TrimSpace(p.Channel) == "" && !webhookConfigured {
		return fmt.Errorf("%w: channel is required", ErrValidation)
	}
	return nil
}

func paramsFromList(list []any) (Params, error) {
	if len(list) == 1 {
		switch first := list[0].(type) {
		case map[string]any:
			return paramsFromMap(first)
		case string:
			return paramsFromPositional([]string{first})
		}
	}

	args := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return Params{}, fmt.Errorf("%w: positional argument %d must be a string, got %T", ErrValidation, i, item)
		}
		args = append(args, s)
	}
	return paramsFromPositional(args)
}

func paramsFromPositional(args []string) (Params, error) {
	switch {
	case len(args) == 0:
		return Params{}, fmt.Errorf("%w: no parameters supplied", ErrValidation)
	case looksLikeJSON(args[0]):
		if len(args) > 1 {
			return Params{}, fmt.Errorf("%w: unexpected arguments after JSON parameters", ErrValidation)
		}
		return paramsFromJSON([]byte(args[0]))
	case len(args) == 1:
		return Params{Text: args[0]}, nil
	case len(args) == 2:
		return Params{Channel: args[0], Text: args[1]}, nil
	default:
		return Params{}, fmt.Errorf("%w: expected (channel, text), got %d arguments", ErrValidation, len(args))
	}
}

func paramsFromJSON(data []byte) (Params, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Params{}, fmt.Errorf("%w: no parameters supplied", ErrValidation)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return Params{}, fmt.Errorf("%w: malformed JSON parameters: %v", ErrValidation, err)
	}

	switch v := decoded.(type) {
	case map[string]any:
		return paramsFromMap(v)
	case []any:
		if len(v) == 1 {
			if m, ok := v[0].(map[string]any); ok {
				return paramsFromMap(m)
			}
		}
		return Params{}, fmt.Errorf("%w: JSON parameters must be an object or a single-element array", ErrValidation)
	default:
		return Params{}, fmt.Errorf("%w: JSON parameters must be an object", ErrValidation)
	}
}

func paramsFromMap(m map[string]any) (Params, error) {
	var (
		p   Params
		err error
	)
	if p.Channel, err = stringField(m, channelKeys); err != nil {
		return Params{}, err
	}
	if p.Text, err = stringField(m, textKeys); err != nil {
		return Params{}, err
	}
	if p.ThreadTS, err = stringField(m, threadKeys); err != nil {
		return Params{}, err
	}
	if p.Webhook, err = stringField(m, webhookKeys); err != nil {
		return Params{}, err
	}
	if p.Blocks, err = objectList(m, blocksKeys); err != nil {
		return Params{}, err
	}
	if p.Attachments, err = objectList(m, attachmentsKeys); err != nil {
		return Params{}, err
	}
	return p, nil
}

// stringField returns the first non-empty value among keys.
func stringField(m map[string]any, keys []string) (string, error) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok || raw == nil {
			continue
		}

		var s string
		switch v := raw.(type) {
		case string:
			s = v
		case json.Number:
			s = v.String()
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		case int64:
			s = strconv.FormatInt(v, 10)
		default:
			return "", fmt.Errorf("%w: %s must be a string, got %T", ErrValidation, key, raw)
		}

		if strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", nil
}

// objectList reads an ordered list of JSON objects. The list may also arrive
// JSON-encoded in a string.
func objectList(m map[string]any, keys []string) ([]json.RawMessage, error) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok || raw == nil {
			continue
		}

		var items []json.RawMessage
		switch v := raw.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				return nil, fmt.Errorf("%w: %s must be a JSON array: %v", ErrValidation, key, err)
			}
		case []json.RawMessage:
			items = v
		case []any:
			items = make([]json.RawMessage, 0, len(v))
			for i, item := range v {
				b, err := json.Marshal(item)
				if err != nil {
					return nil, fmt.Errorf("%w: %s[%d]: %v", ErrValidation, key, i, err)
				}
				items = append(items, b)
			}
		case []map[string]any:
			items = make([]json.RawMessage, 0, len(v))
			for i, item := range v {
				b, err := json.Marshal(item)
				if err != nil {
					return nil, fmt.Errorf("%w: %s[%d]: %v", ErrValidation, key, i, err)
				}
				items = append(items, b)
			}
		default:
			return nil, fmt.Errorf("%w: %s must be an array, got %T", ErrValidation, key, raw)
		}

		for i, item := range items {
			if !isJSONObject(item) {
				return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrValidation, key, i)
			}
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil
	}
	return nil, nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func isJSONObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
