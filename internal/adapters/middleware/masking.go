package middleware

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/arcfactory/arc/pkg/ports"
)

// MaskedValue replaces the value of every matched field.
const MaskedValue = "***"

type maskingStore struct {
	next     ports.OutputStore
	patterns []*regexp.Regexp
}

// NewMasking creates a middleware that masks the values of JSON object
// fields whose names match any of the patterns before persisting. Non-JSON
// values pass through untouched; masking is applied on the way in, so the
// persisted copy never contains the sensitive values.
func NewMasking(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.OutputStore) ports.OutputStore {
		return &maskingStore{next: next, patterns: patterns}
	}
}

func (m *maskingStore) Save(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return m.next.Save(ctx, key, value, ttl)
	}

	masked := maskValue(decoded, m.patterns)
	out, err := json.Marshal(masked)
	if err != nil {
		return m.next.Save(ctx, key, value, ttl)
	}
	return m.next.Save(ctx, key, out, ttl)
}

func (m *maskingStore) Load(ctx context.Context, key string) ([]byte, error) {
	return m.next.Load(ctx, key)
}

func (m *maskingStore) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *maskingStore) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *maskingStore) Close() error {
	return m.next.Close()
}

func maskValue(v any, patterns []*regexp.Regexp) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			if matchesAny(k, patterns) {
				out[k] = MaskedValue
				continue
			}
			out[k] = maskValue(val, patterns)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = maskValue(val, patterns)
		}
		return out
	default:
		return v
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
