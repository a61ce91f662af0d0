package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

// Test struct with various field types
type TestConfig struct {
	StringField   string        `env:"TEST_STRING"`
	IntField      int           `env:"TEST_INT"`
	Int64Field    int64         `env:"TEST_INT64"`
	BoolField     bool          `env:"TEST_BOOL"`
	DurationField time.Duration `env:"TEST_DURATION,default:5s"`
	DefaultField  string        `env:"TEST_DEFAULT,default:defaultValue"`
	NoTagField    string        // Field without env tag
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected TestConfig
		wantErr  bool
	}{
		{
			name: "all fields set from environment",
			envVars: map[string]string{
				"TEST_STRING":   "hello",
				"TEST_INT":      "42",
				"TEST_INT64":    "9223372036854775807",
				"TEST_BOOL":     "true",
				"TEST_DURATION": "1m",
			},
			expected: TestConfig{
				StringField:   "hello",
				IntField:      42,
				Int64Field:    9223372036854775807,
				BoolField:     true,
				DurationField: time.Minute,
				DefaultField:  "defaultValue",
			},
		},
		{
			name: "override default value",
			envVars: map[string]string{
				"TEST_STRING":  "test",
				"TEST_DEFAULT": "overridden",
			},
			expected: TestConfig{
				StringField:   "test",
				DurationField: 5 * time.Second,
				DefaultField:  "overridden",
			},
		},
		{
			name: "invalid int value",
			envVars: map[string]string{
				"TEST_INT": "not-a-number",
			},
			wantErr: true,
		},
		{
			name: "invalid bool value",
			envVars: map[string]string{
				"TEST_BOOL": "not-a-bool",
			},
			wantErr: true,
		},
		{
			name: "invalid duration value",
			envVars: map[string]string{
				"TEST_DURATION": "soon",
			},
			wantErr: true,
		},
		{
			name:    "empty environment leaves zero values",
			envVars: map[string]string{},
			expected: TestConfig{
				DurationField: 5 * time.Second,
				DefaultField:  "defaultValue",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"TEST_STRING", "TEST_INT", "TEST_INT64", "TEST_BOOL", "TEST_DURATION", "TEST_DEFAULT"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &TestConfig{}
			err := Load(cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(*cfg, tt.expected) {
				t.Errorf("Load() = %+v, want %+v", *cfg, tt.expected)
			}
		})
	}
}

func TestLoadAlternativeNames(t *testing.T) {
	type tokenConfig struct {
		Token string `env:"SLACK_BOT_TOKEN|slackBotToken|SLACK_TOKEN"`
	}

	tests := []struct {
		name    string
		envVars map[string]string
		want    string
	}{
		{"primary name wins", map[string]string{"SLACK_BOT_TOKEN": "primary", "slackBotToken": "camel", "SLACK_TOKEN": "legacy"}, "primary"},
		{"camel case fallback", map[string]string{"slackBotToken": "camel", "SLACK_TOKEN": "legacy"}, "camel"},
		{"legacy fallback", map[string]string{"SLACK_TOKEN": "legacy"}, "legacy"},
		{"blank values are skipped", map[string]string{"SLACK_BOT_TOKEN": "  ", "SLACK_TOKEN": "legacy"}, "legacy"},
		{"nothing set", map[string]string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"SLACK_BOT_TOKEN", "slackBotToken", "SLACK_TOKEN"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			var cfg tokenConfig
			if err := Load(&cfg); err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.Token != tt.want {
				t.Errorf("Token = %q, want %q", cfg.Token, tt.want)
			}
		})
	}
}

func TestLoadWithPrefix(t *testing.T) {
	type prefixed struct {
		URL string `env:"WEBHOOK_URL|webhookUrl"`
	}

	t.Setenv("WEBHOOK_URL", "unprefixed")
	t.Setenv("MYAPP_WEBHOOK_URL", "")
	t.Setenv("MYAPP_webhookUrl", "prefixed-camel")

	var cfg prefixed
	if err := Load(&cfg, LoadOptions{Prefix: "MYAPP_"}); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "prefixed-camel" {
		t.Errorf("URL = %q, want %q", cfg.URL, "prefixed-camel")
	}
}

func TestLoadRejectsNonStructPointer(t *testing.T) {
	var s string
	if err := Load(&s); err == nil {
		t.Error("expected error for pointer to non-struct")
	}
	if err := Load(TestConfig{}); err == nil {
		t.Error("expected error for non-pointer")
	}
}

func TestLoadWithDebug(t *testing.T) {
	t.Setenv("SLACK_CONFIG_DEBUG", "true")
	t.Setenv("TEST_STRING", "debug-test")

	cfg := &TestConfig{}
	if err := Load(cfg); err != nil {
		t.Errorf("Load() with debug enabled failed: %v", err)
	}
	if cfg.StringField != "debug-test" {
		t.Errorf("StringField = %v, want %v", cfg.StringField, "debug-test")
	}
}

func TestLookup(t *testing.T) {
	t.Setenv("LOOKUP_A", "")
	t.Setenv("LOOKUP_B", "b-value")
	t.Setenv("LOOKUP_C", "c-value")

	value, name, ok := Lookup("LOOKUP_A", "LOOKUP_B", "LOOKUP_C")
	if !ok || value != "b-value" || name != "LOOKUP_B" {
		t.Errorf("Lookup() = (%q, %q, %v), want (b-value, LOOKUP_B, true)", value, name, ok)
	}

	os.Unsetenv("LOOKUP_MISSING")
	if _, _, ok := Lookup("LOOKUP_MISSING"); ok {
		t.Error("Lookup() reported a missing variable as set")
	}
}

func TestSetFieldValue(t *testing.T) {
	tests := []struct {
		name      string
		fieldType string
		value     string
		wantErr   bool
	}{
		{name: "valid string", fieldType: "string", value: "test"},
		{name: "valid int", fieldType: "int", value: "123"},
		{name: "valid int64", fieldType: "int64", value: "9223372036854775807"},
		{name: "valid bool true", fieldType: "bool", value: "true"},
		{name: "valid bool 0", fieldType: "bool", value: "0"},
		{name: "valid duration", fieldType: "duration", value: "250ms"},
		{name: "invalid int", fieldType: "int", value: "abc", wantErr: true},
		{name: "invalid bool", fieldType: "bool", value: "yes", wantErr: true},
		{name: "invalid duration", fieldType: "duration", value: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg interface{}
			switch tt.fieldType {
			case "string":
				cfg = &struct{ Field string }{}
			case "int":
				cfg = &struct{ Field int }{}
			case "int64":
				cfg = &struct{ Field int64 }{}
			case "bool":
				cfg = &struct{ Field bool }{}
			case "duration":
				cfg = &struct{ Field time.Duration }{}
			}

			field := reflect.ValueOf(cfg).Elem().Field(0)
			err := setFieldValue(field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("setFieldValue() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplexEnvTag(t *testing.T) {
	type ComplexConfig struct {
		Field1 string `env:"COMPLEX_FIELD1,default:value1"`
		Field2 string `env:"COMPLEX_FIELD2,default:https://slack.com/api,other:ignored"`
		Field3 string `env:"COMPLEX_FIELD3|complexField3,something,default:value3"`
	}

	cfg := &ComplexConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Field1 != "value1" {
		t.Errorf("Field1 = %v, want %v", cfg.Field1, "value1")
	}
	if cfg.Field2 != "https://slack.com/api" {
		t.Errorf("Field2 = %v, want %v", cfg.Field2, "https://slack.com/api")
	}
	if cfg.Field3 != "value3" {
		t.Errorf("Field3 = %v, want %v", cfg.Field3, "value3")
	}
}

func TestUnsupportedFieldType(t *testing.T) {
	type UnsupportedConfig struct {
		FloatField float64 `env:"TEST_FLOAT"`
	}

	t.Setenv("TEST_FLOAT", "3.14")

	cfg := &UnsupportedConfig{}
	if err := Load(cfg); err != nil {
		t.Errorf("Load() should not error for unsupported types, got: %v", err)
	}
	if cfg.FloatField != 0 {
		t.Errorf("FloatField = %v, want %v", cfg.FloatField, 0)
	}
}
