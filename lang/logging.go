package lang

import (
	"log/slog"
	"sort"

	"github.com/ardnew/numscript/number"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func valueAttr(key string, v number.Value) slog.Attr {
	if v == nil {
		return slog.String(key, "nil")
	}

	return slog.String(key, v.String())
}

func statementAttrs(st *Statement) []slog.Attr {
	return []slog.Attr{
		slog.String("kind", st.Kind.String()),
		slog.Int("offset", st.Index),
		slog.String("source", st.Source),
	}
}
