package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pratheep-Srikones/rpal-online/server/serr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// file token.go has functions for issuing and validating run claim tokens.
// A claim token is handed out when a run is stored and is the only proof of
// ownership over it; deleting a run requires presenting its token.

const tokenIssuer = "rpal-online"

// generateClaimToken creates a signed token that allows its bearer to manage
// the run with the given ID.
func generateClaimToken(secret []byte, runID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": runID.String(),
		"iat": time.Now().Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign claim token: %w", err)
	}
	return signed, nil
}

// validateClaimToken checks a token's signature and issuer and returns the
// run ID it covers.
func validateClaimToken(secret []byte, tokStr string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, serr.New("token signing method is not HMAC", serr.ErrBadToken)
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.UUID{}, serr.New("", err, serr.ErrBadToken)
	}
	if !parsed.Valid {
		return uuid.UUID{}, serr.New("", serr.ErrBadToken)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return uuid.UUID{}, serr.New("token has no subject", serr.ErrBadToken)
	}
	runID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.UUID{}, serr.New("token subject is not a run ID", serr.ErrBadToken)
	}

	return runID, nil
}

// getBearerToken retrieves the token from the Authorization header of the
// given request.
func getBearerToken(req *http.Request) (string, error) {
	scheme := "bearer "
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", serr.New("no authorization header present", serr.ErrBadToken)
	}
	if !strings.HasPrefix(strings.ToLower(authHeader), scheme) {
		return "", serr.New("authorization header not in Bearer format", serr.ErrBadToken)
	}

	return strings.TrimSpace(authHeader[len(scheme):]), nil
}
