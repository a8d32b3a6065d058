package identity

import (
	"math/rand"
	"sync"
)

// Identity is the browser fingerprint used for one attempt.
type Identity struct {
	UserAgent string
	Headers   map[string]string
}

const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Rotator hands out a pseudo-random identity per attempt. It never fails:
// an empty agent list falls back to a single built-in identity.
type Rotator struct {
	agents         []string
	acceptLanguage string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRotator builds a rotator over the configured user agents.
func NewRotator(agents []string, acceptLanguage string, seed int64) *Rotator {
	if acceptLanguage == "" {
		acceptLanguage = "pt-BR,pt;q=0.9,en;q=0.8"
	}
	return &Rotator{
		agents:         agents,
		acceptLanguage: acceptLanguage,
		rnd:            rand.New(rand.NewSource(seed)),
	}
}

// Next selects the identity for the next attempt.
func (r *Rotator) Next() Identity {
	agent := fallbackUserAgent
	if len(r.agents) > 0 {
		r.mu.Lock()
		agent = r.agents[r.rnd.Intn(len(r.agents))]
		r.mu.Unlock()
	}

	return Identity{
		UserAgent: agent,
		Headers:   baseHeaders(agent, r.acceptLanguage),
	}
}

func baseHeaders(agent, acceptLanguage string) map[string]string {
	return map[string]string{
		"User-Agent":                agent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           acceptLanguage,
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
	}
}
