package ws

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/auth"
)

// TokenParser validates a session token
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// extractToken reads the JWT from the handshake request.
// Priority: 1. token query parameter, 2. Authorization header
func extractToken(r *http.Request) string {
	// io(url, { query: { token } }) ends up as ?token=xxx on the handshake
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// wrapWithAuth rejects Socket.IO handshakes that carry no valid token
func wrapWithAuth(next http.Handler, tokens TokenParser, log *logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handshake is a GET to /socket.io/?EIO=..&transport=..
		if r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/socket.io/") {
			token := extractToken(r)
			if token == "" {
				log.WithField("remote", r.RemoteAddr).Warn("handshake rejected: no token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				log.WithField("remote", r.RemoteAddr).WithError(err).Warn("handshake rejected: invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "user": claims.Username}).Debug("handshake accepted")
		}

		next.ServeHTTP(w, r)
	})
}
