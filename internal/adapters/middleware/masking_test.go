package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfactory/arc/internal/adapters/memory"
	"github.com/arcfactory/arc/internal/adapters/middleware"
)

func TestMasking_MasksMatchingFields(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewMasking([]string{"(?i)password", "(?i)ssn"})(underlying)
	ctx := context.Background()

	doc := []byte(`{
		"ticker": "ACME",
		"password": "hunter2",
		"accounts": [{"ssn": "123-45-6789", "balance": 10}]
	}`)
	require.NoError(t, store.Save(ctx, "k", doc, 0))

	stored, err := underlying.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ticker": "ACME",
		"password": "***",
		"accounts": [{"ssn": "***", "balance": 10}]
	}`, string(stored))
}

func TestMasking_NonJSONPassesThrough(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewMasking([]string{"secret"})(underlying)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []byte("not json at all"), 0))

	stored, err := underlying.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("not json at all"), stored)
}

func TestMasking_LoadIsUntouched(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "k", []byte(`{"password":"kept"}`), 0))

	store := middleware.NewMasking([]string{"password"})(underlying)
	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"kept"}`, string(got))
}
