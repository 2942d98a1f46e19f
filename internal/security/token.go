package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"veterinaria-ica/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 7 * 24 * time.Hour

	tokenTimePrecision = time.Millisecond
)

func init() {
	// NumericDate admite fracciones (RFC 7519 §2); jwt/v5 trunca según esta variable.
	jwt.TimePrecision = tokenTimePrecision
}

var ErrEmptySecret = errors.New("security: signing secret is empty")

// Claims del token de sesión. Los roles NO viajan en el token: se
// resuelven siempre contra storage.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens emite y verifica tokens de sesión HS256. Sin estado: no hay
// lookup en DB ni lista de revocación.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue firma {id, email, iat, exp} con exp = iat + ttl. iat/exp viajan con
// precisión de milisegundos: con segundos enteros la ventana real quedaba
// hasta 1s más corta que ttl.
func (t *Tokens) Issue(userID int64, email string) (string, time.Time, error) {
	now := t.now().Truncate(tokenTimePrecision)
	exp := now.Add(t.ttl)

	c := Claims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c.ExpiresAt.Time, nil
}

// Verify implementa auth.TokenVerifier.
func (t *Tokens) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	c := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Claims{}, auth.ErrExpiredToken
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !parsed.Valid || c.ID <= 0 {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	return auth.Claims{UserID: c.ID, Email: c.Email}, nil
}
