package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is how long, in seconds, browsers may cache a preflight answer.
	MaxAge int
}

// DefaultCORSConfig returns the CORS configuration for origins.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         86400,
	}
}

// CORSMiddleware answers preflight requests and decorates cross-origin
// responses. Requests from other origins pass through without CORS headers
// and are blocked by the browser.
type CORSMiddleware struct {
	config   CORSConfig
	origins  map[string]bool
	allowAll bool
	methods  string
	headers  string
	exposed  string
}

// NewCORSMiddleware creates a new CORS middleware with the given config.
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	m := &CORSMiddleware{
		config:  config,
		origins: make(map[string]bool, len(config.AllowedOrigins)),
		methods: strings.Join(config.AllowedMethods, ", "),
		headers: strings.Join(config.AllowedHeaders, ", "),
		exposed: strings.Join(config.ExposedHeaders, ", "),
	}
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			m.allowAll = true
			continue
		}
		m.origins[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return m
}

func (m *CORSMiddleware) allowed(origin string) bool {
	return m.allowAll || m.origins[strings.ToLower(origin)]
}

// Handler returns the middleware handler function.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !m.allowed(origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		if m.allowAll {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", m.methods)
			h.Set("Access-Control-Allow-Headers", m.headers)
			if m.config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if m.exposed != "" {
			h.Set("Access-Control-Expose-Headers", m.exposed)
		}
		next.ServeHTTP(w, r)
	})
}

//Personal.AI order the ending
