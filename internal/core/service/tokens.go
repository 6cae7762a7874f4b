package service

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

var errInvalidToken = errors.New("invalid session token")

// sessionClaims is the payload of a session token. The token only proves which
// session it was issued for; the session store decides whether it is still live.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type sessionTokens struct {
	secret []byte
}

func newSessionTokens(secret string) sessionTokens {
	return sessionTokens{secret: []byte(secret)}
}

func (t sessionTokens) issue(s *domain.Session) (string, error) {
	claims := sessionClaims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// parse verifies the signature and expiry and returns the session and user ids.
func (t sessionTokens) parse(token string) (string, int64, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return "", 0, errInvalidToken
	}
	if claims.SessionID == "" {
		return "", 0, errInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return "", 0, errInvalidToken
	}
	return claims.SessionID, userID, nil
}
