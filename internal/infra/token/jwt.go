// Package token はHS256のアクセストークンを発行・検証する。
package token

import (
	"errors"
	"time"

	"secondhand/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// {userId, type, iat, exp}
type Claims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"type"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 署名・アルゴリズム・期限・claimsの形を検証する。期限はnow基準（発行側と同じ時計）
func Parse(secret string, raw string, now time.Time) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	// expなしのトークンは受け付けない
	if claims.UserID == "" || !claims.Role.Valid() || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyIssuedAt(now, false) || !claims.VerifyNotBefore(now, false) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
