package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadOptions defines options for loading configuration from environment variables.
type LoadOptions struct {
	Prefix string // Prefix to prepend to every environment variable name (default: none)
	Debug  bool   // Print resolved variables to stderr (values are masked)
}

// Load populates a struct from .env file and environment variables using reflection.
// A .env file in the current directory is loaded first; variables already present
// in the environment are never overridden by it.
//
// The function uses struct field tags to determine environment variable names:
//   - `env:"VAR_NAME"`: Maps the field to the specified environment variable
//   - `env:"VAR_NAME|varName"`: Tries each name in order, first non-empty wins
//   - `env:"VAR_NAME,default:value"`: Provides a default value if no variable is set
//
// Every candidate name is prefixed with LoadOptions.Prefix.
//
// Example:
//
//	type Config struct {
//	    Token   string        `env:"SLACK_BOT_TOKEN|slackBotToken|SLACK_TOKEN"`
//	    BaseURL string        `env:"SLACK_BASE_URL,default:https://slack.com/api"`
//	    Timeout time.Duration `env:"SLACK_TIMEOUT,default:30s"`
//	}
//
//	var cfg Config
//	err := config.Load(&cfg, config.LoadOptions{Prefix: "MYAPP_"})
//	// Will look for MYAPP_SLACK_BOT_TOKEN, then MYAPP_slackBotToken, then MYAPP_SLACK_TOKEN
func Load(cfg interface{}, opts ...LoadOptions) error {
	options := LoadOptions{}
	if len(opts) > 0 {
		options = opts[0]
	}

	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: expected pointer to struct, got %T", cfg)
	}

	// Silently try to load .env file, ignore if not found
	_ = godotenv.Load()

	v := rv.Elem()
	t := v.Type()
	printDebug := options.Debug || os.Getenv("SLACK_CONFIG_DEBUG") == "true"

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			continue
		}

		names, defaultValue := parseTag(envTag)
		for j := range names {
			names[j] = options.Prefix + names[j]
		}

		value, name, ok := Lookup(names...)
		if !ok {
			value = defaultValue
			name = names[0]
		}
		if printDebug {
			fmt.Fprintf(os.Stderr, "[SLACK] %s=%s\n", name, mask(value))
		}

		if value != "" {
			if err := setFieldValue(v.Field(i), value); err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
		}
	}

	return nil
}

// Lookup returns the value of the first environment variable in names that is
// set to a non-empty value, together with the name that matched.
func Lookup(names ...string) (value, name string, ok bool) {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v, n, true
		}
	}
	return "", "", false
}

// parseTag splits an env tag into its candidate names and default value.
func parseTag(tag string) ([]string, string) {
	parts := strings.Split(tag, ",")
	var names []string
	for _, n := range strings.Split(parts[0], "|") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	defaultValue := ""
	for _, part := range parts[1:] {
		if strings.HasPrefix(part, "default:") {
			defaultValue = strings.TrimPrefix(part, "default:")
			break
		}
	}
	return names, defaultValue
}

func mask(value string) string {
	if len(value) <= 4 {
		return value
	}
	return value[:4] + strings.Repeat("*", 8)
}

// setFieldValue sets the value of a struct field using reflection and type conversion.
//
// Supported types:
//   - string: Direct assignment
//   - int, int64: Parsed using strconv.ParseInt with base 10
//   - bool: Parsed using strconv.ParseBool (supports "true", "false", "1", "0", etc.)
//   - time.Duration: Parsed using time.ParseDuration
//
// Unsupported kinds are skipped silently.
func setFieldValue(field reflect.Value, value string) error {
	// Check for time.Duration first
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return nil
	}
	return nil
}
