package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingAuthHeader = errors.New("missing Authorization header")
	errMalformedAuth     = errors.New("malformed Authorization header")
	errInvalidToken      = errors.New("invalid token")
)

// tokenVerifier checks a bearer token's signature and expiry. Unlike the
// teacher's JWTManager it never issues tokens: this shard trusts a token
// minted elsewhere (an upstream auth service, or the orchestrator) and only
// verifies it.
type tokenVerifier struct {
	secretKey []byte
}

func newTokenVerifier(secret string) *tokenVerifier {
	return &tokenVerifier{secretKey: []byte(secret)}
}

func (v *tokenVerifier) verify(tokenString string) error {
	if tokenString == "" {
		return errInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !token.Valid {
		return errInvalidToken
	}
	return nil
}

// requireAuth wraps next with bearer-token verification. Routes /ping and
// /healthz are never wrapped (see Server.routes). When no JWTSecret is
// configured, requireAuth is skipped entirely and every route is open.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.verifier == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, errMissingAuthHeader.Error())
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, errMalformedAuth.Error())
			return
		}
		if err := s.verifier.verify(parts[1]); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r)
	}
}
