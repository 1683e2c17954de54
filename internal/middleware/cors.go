package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, " + HeaderCorrelationID
)

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(allow []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allow))}
	for _, o := range allow {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) listed(origin string) bool {
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

// CORS answers preflights itself and decorates every other response.
// Origins listed explicitly are echoed and may send credentials (the session
// cookie). A "*" entry admits any other origin without credentials.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			switch origin := r.Header.Get("Origin"); {
			case origin == "":
			case policy.listed(origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", HeaderCorrelationID)
			case policy.any:
				h.Set("Access-Control-Allow-Origin", "*")
				h.Set("Access-Control-Expose-Headers", HeaderCorrelationID)
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
