package favorites

import (
	"context"
	"testing"

	"github.com/tj/assert"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	got, err := kv.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	in := []string{"Paris", "Lyon"}
	assert.NoError(t, kv.Set(ctx, "k", in))
	in[0] = "mutated"

	got, err = kv.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon"}, got)

	got[1] = "mutated"
	again, _ := kv.Get(ctx, "k")
	assert.Equal(t, "Lyon", again[1])
}
