package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
{"keyword":"send","component":"client","host":"h1","target":"api","thread":"1","request":"r1","time":"2024-05-01T10:00:00.5Z","vars":{"tid":"7","attempt":2}}

{"keyword":"recv","component":"server","host":"h2","target":"db","thread":"9","seconds":1714557601.25}
`

func TestDecode(t *testing.T) {
	lines, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "send", first.Keyword)
	assert.Equal(t, domain.ThreadKey{Host: "h1", Target: "api", Thread: "1"}, first.Key())
	assert.Equal(t, "r1", first.Request)
	assert.InDelta(t, 1714557600.5, first.Seconds, 1e-6)
	assert.Equal(t, map[string]string{"tid": "7", "attempt": "2"}, first.Vars)
	assert.Equal(t, 2, first.Number)

	second := lines[1]
	assert.InDelta(t, 1714557601.25, second.Seconds, 1e-9)
	assert.False(t, second.Time.IsZero())
	assert.Equal(t, 4, second.Number)
}

func TestDecode_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"malformed":    `{"keyword":`,
		"no keyword":   `{"component":"c","host":"h","target":"t","thread":"1","seconds":1}`,
		"no timestamp": `{"keyword":"k","component":"c","host":"h","target":"t","thread":"1"}`,
		"bad time":     `{"keyword":"k","component":"c","host":"h","target":"t","thread":"1","time":"yesterday"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}

	_, err := Decode(strings.NewReader(`{"component":"c","host":"h","target":"t","thread":"1","seconds":1}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonl")
	b := filepath.Join(dir, "b.jsonl")
	require.NoError(t, os.WriteFile(a, []byte(`{"keyword":"x","component":"c","host":"h","target":"t","thread":"1","seconds":2}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"keyword":"y","component":"c","host":"h","target":"t","thread":"1","seconds":1}`+"\n"), 0o644))

	src, err := Open(a, b)
	require.NoError(t, err)

	ctx := context.Background()
	keys, err := src.Threads(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	lines, err := src.Lines(ctx, keys[0])
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "y", lines[0].Keyword)

	_, err = Open(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}
