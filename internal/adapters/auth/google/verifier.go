package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"veterinaria-ica/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var validIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Verifier implementa auth.FederatedVerifier para id_tokens de Google
// (Sign-In with Google): firma RS256 contra el JWKS, aud == client id,
// iss de Google y exp vigente.
type Verifier struct {
	clientID string
	keys     *KeySet
	now      func() time.Time
}

func NewVerifier(clientID string, keys *KeySet) *Verifier {
	return &Verifier{
		clientID: strings.TrimSpace(clientID),
		keys:     keys,
		now:      time.Now,
	}
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (auth.FederatedIdentity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if v == nil || v.keys == nil || v.clientID == "" {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: google client id not configured", auth.ErrVerifierUnavailable)
	}
	if rawToken == "" {
		return auth.FederatedIdentity{}, auth.ErrInvalidFederatedToken
	}

	var fetchErr error
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("no kid")
		}
		pk, err := v.keys.Key(ctx, kid)
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			fetchErr = err
		}
		return pk, err
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if fetchErr != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: %v", auth.ErrVerifierUnavailable, fetchErr)
	}
	if err != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: %v", auth.ErrInvalidFederatedToken, err)
	}

	if _, ok := validIssuers[claims.Issuer]; !ok {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: bad iss", auth.ErrInvalidFederatedToken)
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: missing email", auth.ErrInvalidFederatedToken)
	}
	// El email es la llave de unión con cuentas locales: exigir que Google lo haya verificado.
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return auth.FederatedIdentity{}, fmt.Errorf("%w: email not verified", auth.ErrInvalidFederatedToken)
	}

	return auth.FederatedIdentity{
		Email:       email,
		DisplayName: strings.TrimSpace(claims.Name),
		PictureURL:  strings.TrimSpace(claims.Picture),
	}, nil
}
