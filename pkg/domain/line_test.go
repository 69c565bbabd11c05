package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupVarKey(t *testing.T) {
	for _, name := range []string{"component", "target", "host", "thread", "request", "time", "seconds"} {
		k, ok := LookupVarKey(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	_, ok := LookupVarKey("tid")
	assert.False(t, ok)
}

func TestLine_Get(t *testing.T) {
	line := &Line{
		Reserved: Reserved{
			Host:    "h1",
			Target:  "api",
			Thread:  "t-1",
			Time:    time.Unix(10, 0).UTC(),
			Seconds: 10.5,
		},
		Keyword: "send",
		Vars:    map[string]string{"tid": "7", "host": "shadowed"},
	}

	v, ok := line.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "h1", v, "reserved fields take precedence over free-form vars")

	v, ok = line.Get("tid")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	v, ok = line.Get("seconds")
	assert.True(t, ok)
	assert.Equal(t, "10.5", v)

	_, ok = line.Get("request")
	assert.False(t, ok, "empty reserved values are absent")

	_, ok = line.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, ThreadKey{Host: "h1", Target: "api", Thread: "t-1"}, line.Key())
}

func TestThreadKey_Less(t *testing.T) {
	a := ThreadKey{Host: "h1", Target: "a", Thread: "2"}
	b := ThreadKey{Host: "h1", Target: "b", Thread: "1"}
	c := ThreadKey{Host: "h2", Target: "a", Thread: "1"}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.Equal(t, "h1/a/2", a.String())
}
