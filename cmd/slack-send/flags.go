package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// jsonObjectList is a repeatable flag whose values must each be a JSON object.
type jsonObjectList struct {
	items []json.RawMessage
}

var _ pflag.Value = (*jsonObjectList)(nil)

func (l *jsonObjectList) String() string {
	parts := make([]string, 0, len(l.items))
	for _, item := range l.items {
		parts = append(parts, string(item))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (l *jsonObjectList) Set(value string) error {
	raw := bytes.TrimSpace([]byte(value))
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return fmt.Errorf("expected a JSON object, got %q", value)
	}
	l.items = append(l.items, json.RawMessage(raw))
	return nil
}

func (l *jsonObjectList) Type() string { return "json" }
