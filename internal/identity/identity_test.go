package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSelectsFromConfiguredAgents(t *testing.T) {
	agents := []string{"agent-a", "agent-b", "agent-c"}
	r := NewRotator(agents, "", 1)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.Next()
		assert.Contains(t, agents, id.UserAgent)
		assert.Equal(t, id.UserAgent, id.Headers["User-Agent"])
		seen[id.UserAgent] = true
	}

	// 100 draws over 3 agents should hit every one.
	assert.Len(t, seen, 3)
}

func TestNextFallsBackWhenListEmpty(t *testing.T) {
	r := NewRotator(nil, "", 1)

	id := r.Next()
	assert.Equal(t, fallbackUserAgent, id.UserAgent)
	assert.NotEmpty(t, id.Headers["Accept"])
	assert.NotEmpty(t, id.Headers["Accept-Language"])
}

func TestNextCarriesConfiguredAcceptLanguage(t *testing.T) {
	r := NewRotator([]string{"agent-a"}, "de-DE,de;q=0.9", 1)

	id := r.Next()
	assert.Equal(t, "de-DE,de;q=0.9", id.Headers["Accept-Language"])
}
