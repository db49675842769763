package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig is the budget for one route. With Prefix set, Path matches
// every request path that starts with it.
type EndpointConfig struct {
	Path   string
	Method string
	Prefix bool
	Limit  int
	Window time.Duration
	Burst  int
}

// DefaultEndpointConfigs returns the per-route budgets. Ranking and model
// calls are the expensive ones; everything else uses the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/health", Method: "GET"},

		{Path: "/upload-resumes", Method: "POST", Prefix: true, Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/upload-jd", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		{Path: "/match-skills", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/predict-", Method: "POST", Prefix: true, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/calculate-score", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		{Path: "/ranked-results/export", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// MatchEndpoint returns the config for path and method, preferring exact
// matches over prefix matches, or nil when none applies. A matched config
// with a zero Limit means unlimited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	var prefixMatch *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if c.Prefix && prefixMatch == nil && strings.HasPrefix(path, c.Path) {
			prefixMatch = c
		}
	}
	return prefixMatch
}
