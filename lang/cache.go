package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// cacheLimit bounds the number of cached programs. A full cache is emptied
// before the next program is stored.
const cacheLimit = 1024

var (
	// globalCache stores compiled programs keyed by source hash and strict
	// mode.
	globalCache sync.Map
	cacheSize   atomic.Int64
)

// state tracks the compilation of one source.
type state struct {
	once    sync.Once
	program *Program
	err     error
}

func cacheKey(source string, strict bool) string {
	key := strconv.FormatUint(xxh3.HashString(source), 36)
	if strict {
		key += ":strict"
	}

	return key
}

func compileCached(ctx context.Context, source string, o options) (*Program, error) {
	key := cacheKey(source, o.strict)

	if _, ok := globalCache.Load(key); !ok && cacheSize.Load() >= cacheLimit {
		o.logger.DebugContext(ctx, "cache full", slog.Int("limit", cacheLimit))
		ClearCache()
	}

	v, loaded := globalCache.LoadOrStore(key, &state{})
	st := v.(*state)

	if !loaded {
		cacheSize.Add(1)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("hit", loaded))

	st.once.Do(func() {
		st.program, st.err = compile(ctx, source, o)
	})

	if st.program != nil && st.program.Source != source {
		// Hash collision: compile without caching.
		return compile(ctx, source, o)
	}

	return st.program, st.err
}

// ClearCache discards all cached programs.
func ClearCache() {
	globalCache.Clear()
	cacheSize.Store(0)
}
