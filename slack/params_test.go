package slack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Params
	}{
		{
			name:  "English keys",
			input: map[string]any{"channel": "#general", "text": "hello"},
			want:  Params{Channel: "#general", Text: "hello"},
		},
		{
			name:  "Portuguese keys",
			input: map[string]any{"canal": "#geral", "mensagem": "olá"},
			want:  Params{Channel: "#geral", Text: "olá"},
		},
		{
			name:  "texto alias",
			input: map[string]any{"canal": "#geral", "texto": "oi"},
			want:  Params{Channel: "#geral", Text: "oi"},
		},
		{
			name:  "canal wins over channel",
			input: map[string]any{"canal": "#a", "channel": "#b", "text": "x"},
			want:  Params{Channel: "#a", Text: "x"},
		},
		{
			name:  "blank alias falls through",
			input: map[string]any{"mensagem": "  ", "text": "fallback", "channel": "C1"},
			want:  Params{Channel: "C1", Text: "fallback"},
		},
		{
			name:  "text keeps surrounding whitespace",
			input: map[string]any{"channel": "C1", "text": "  indented\n"},
			want:  Params{Channel: "C1", Text: "  indented\n"},
		},
		{
			name:  "thread and webhook",
			input: map[string]any{"channel": "C1", "text": "x", "thread_ts": "1.2", "webhookUrl": "https://hooks.example/x"},
			want:  Params{Channel: "C1", Text: "x", ThreadTS: "1.2", Webhook: "https://hooks.example/x"},
		},
		{
			name:  "string map",
			input: map[string]string{"canal": "#geral", "mensagem": "oi"},
			want:  Params{Channel: "#geral", Text: "oi"},
		},
		{
			name:  "single-element list",
			input: []any{map[string]any{"channel": "C1", "text": "wrapped"}},
			want:  Params{Channel: "C1", Text: "wrapped"},
		},
		{
			name:  "positional pair",
			input: []string{"#general", "hello"},
			want:  Params{Channel: "#general", Text: "hello"},
		},
		{
			name:  "positional any pair",
			input: []any{"#general", "hello"},
			want:  Params{Channel: "#general", Text: "hello"},
		},
		{
			name:  "single plain argument is the text",
			input: "just text",
			want:  Params{Text: "just text"},
		},
		{
			name:  "JSON string",
			input: `{"canal":"#geral","mensagem":"oi","threadTs":"1700.1"}`,
			want:  Params{Channel: "#geral", Text: "oi", ThreadTS: "1700.1"},
		},
		{
			name:  "JSON array string",
			input: `[{"channel":"C1","text":"hi"}]`,
			want:  Params{Channel: "C1", Text: "hi"},
		},
		{
			name:  "JSON bytes",
			input: []byte(`{"channel":"C1","text":"hi"}`),
			want:  Params{Channel: "C1", Text: "hi"},
		},
		{
			name:  "positional JSON argument",
			input: []string{`{"channel":"C1","text":"hi"}`},
			want:  Params{Channel: "C1", Text: "hi"},
		},
		{
			name:  "numeric thread timestamp",
			input: `{"channel":"C1","text":"hi","threadTs":1700000000.000100}`,
			want:  Params{Channel: "C1", Text: "hi", ThreadTS: "1700000000.000100"},
		},
		{
			name:  "struct passes through",
			input: Params{Channel: "C1", Text: "hi"},
			want:  Params{Channel: "C1", Text: "hi"},
		},
		{
			name:  "pointer passes through",
			input: &Params{Channel: "C1", Text: "hi"},
			want:  Params{Channel: "C1", Text: "hi"},
		},
		{
			name:  "missing fields are empty",
			input: map[string]any{},
			want:  Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParams_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		errMsg string
	}{
		{"nil", nil, "no parameters"},
		{"nil pointer", (*Params)(nil), "no parameters"},
		{"unsupported type", 3.14, "unsupported parameter type"},
		{"empty positional", []string{}, "no parameters"},
		{"too many positional", []string{"a", "b", "c"}, "expected (channel, text)"},
		{"JSON with trailing args", []string{`{"text":"x"}`, "extra"}, "unexpected arguments"},
		{"malformed JSON", `{"text":`, "malformed JSON"},
		{"JSON scalar array", `["a","b"]`, "single-element array"},
		{"non-string text", map[string]any{"text": true}, "text must be a string"},
		{"non-string list item", []any{"C1", 5}, "positional argument 1"},
		{"blocks not a list", map[string]any{"text": "x", "blocks": 12}, "blocks must be an array"},
		{"blocks with scalar", map[string]any{"text": "x", "blocks": []any{"divider"}}, "blocks[0] must be an object"},
		{"blocks bad JSON string", map[string]any{"text": "x", "blocks": "[{"}, "blocks must be a JSON array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseParams_BlocksAndAttachments(t *testing.T) {
	t.Run("decoded lists keep order", func(t *testing.T) {
		p, err := ParseParams(map[string]any{
			"text": "x",
			"blocks": []any{
				map[string]any{"type": "header"},
				map[string]any{"type": "divider"},
			},
			"attachments": []map[string]any{{"color": "good"}},
		})
		require.NoError(t, err)
		require.Len(t, p.Blocks, 2)
		assert.JSONEq(t, `{"type":"header"}`, string(p.Blocks[0]))
		assert.JSONEq(t, `{"type":"divider"}`, string(p.Blocks[1]))
		require.Len(t, p.Attachments, 1)
		assert.JSONEq(t, `{"color":"good"}`, string(p.Attachments[0]))
	})

	t.Run("JSON-encoded string", func(t *testing.T) {
		p, err := ParseParams(map[string]any{
			"text":   "x",
			"blocks": `[{"type":"section","text":{"type":"mrkdwn","text":"*hi*"}}]`,
		})
		require.NoError(t, err)
		require.Len(t, p.Blocks, 1)
		assert.JSONEq(t, `{"type":"section","text":{"type":"mrkdwn","text":"*hi*"}}`, string(p.Blocks[0]))
	})

	t.Run("raw messages", func(t *testing.T) {
		p, err := ParseParams(map[string]any{
			"text":   "x",
			"blocks": []json.RawMessage{DividerBlock()},
		})
		require.NoError(t, err)
		assert.Len(t, p.Blocks, 1)
	})

	t.Run("empty list is omitted", func(t *testing.T) {
		p, err := ParseParams(map[string]any{"text": "x", "blocks": []any{}, "attachments": ""})
		require.NoError(t, err)
		assert.Nil(t, p.Blocks)
		assert.Nil(t, p.Attachments)
	})

	t.Run("nested in JSON document", func(t *testing.T) {
		p, err := ParseParams(`{"text":"x","blocks":[{"type":"divider"}],"attachments":[{"text":"a"},{"text":"b"}]}`)
		require.NoError(t, err)
		assert.Len(t, p.Blocks, 1)
		assert.Len(t, p.Attachments, 2)
	})
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		webhook bool
		errMsg  string
	}{
		{"complete", Params{Channel: "C1", Text: "hi"}, false, ""},
		{"missing text", Params{Channel: "C1"}, false, "message text is required"},
		{"blank text", Params{Channel: "C1", Text: " \t"}, true, "message text is required"},
		{"missing both reports text first", Params{}, false, "message text is required"},
		{"missing channel", Params{Text: "hi"}, false, "channel is required"},
		{"blank channel", Params{Channel: "  ", Text: "hi"}, false, "channel is required"},
		{"missing channel with webhook", Params{Text: "hi"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate(tt.webhook)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
