package transport

import (
	"context"
	"net/http"
)

// sessionHeader carries the streamable HTTP session id once a client has
// initialized.
const sessionHeader = "Mcp-Session-Id"

type sessionKey struct{}

// SessionIDFromContext returns the MCP session ID of the request, if any.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// SessionMiddleware copies the MCP session header into the request context
// so request logs can be correlated with a client session.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID := r.Header.Get(sessionHeader); sessionID != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, sessionID))
		}
		next.ServeHTTP(w, r)
	})
}
