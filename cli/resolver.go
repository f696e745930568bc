package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/numscript/log"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Keys are flag names. Nested mappings are joined with '-', so both of these
// set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may stand in for hyphens. A file that cannot be parsed is
// ignored with a warning. Command-line flags override file values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return config{}, nil
		}

		log.Warn("ignoring malformed configuration", slog.Any("error", err))

		return config{}, nil
	}

	conf := config{}
	conf.flatten("", doc)

	return conf, nil
}

// config implements [kong.Resolver] over a flattened configuration map.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flatten stores the leaves of m under their hyphen-joined key paths.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(key, v)
		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = fmt.Sprint(scalar(item))
			}

			c[key] = items
		default:
			c[key] = scalar(v)
		}
	}
}

// scalar converts a decoded YAML value to what kong's mappers accept:
// booleans as is, everything else as text.
func scalar(v any) any {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
