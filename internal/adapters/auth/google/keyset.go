package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"veterinaria-ica/internal/platform/httpclient"

	"golang.org/x/sync/singleflight"
)

var ErrKeyNotFound = errors.New("kid not found in JWKS")

const (
	defaultKeysTTL = time.Hour

	// Piso entre refrescos disparados por un kid desconocido con cache vigente.
	minRefreshInterval = time.Minute
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// KeySet cachea las claves públicas de firma del emisor, indexadas por kid.
// Se refresca al vencer el TTL (Cache-Control max-age si viene) o si
// aparece un kid desconocido (rotación de Google), como máximo una vez por
// minRefreshInterval. Fetches concurrentes se colapsan en uno.
type KeySet struct {
	url    string
	client *httpclient.Client
	now    func() time.Time
	group  singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expAt     time.Time
	fetchedAt time.Time
}

func NewKeySet(url string, client *httpclient.Client) *KeySet {
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout)
	}
	return &KeySet{
		url:    strings.TrimSpace(url),
		client: client,
		now:    time.Now,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if pk, ok, refresh := ks.lookup(kid); !refresh {
		if ok {
			return pk, nil
		}
		return nil, ErrKeyNotFound
	}

	_, err, _ := ks.group.Do("jwks", func() (any, error) {
		// Otro caller pudo haber refrescado mientras esperábamos.
		if _, _, refresh := ks.lookup(kid); !refresh {
			return nil, nil
		}
		return nil, ks.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if pk, ok := ks.keys[kid]; ok {
		return pk, nil
	}
	return nil, ErrKeyNotFound
}

// lookup devuelve la clave cacheada y si hace falta ir al JWKS.
func (ks *KeySet) lookup(kid string) (*rsa.PublicKey, bool, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	now := ks.now()
	pk, ok := ks.keys[kid]
	if !now.Before(ks.expAt) {
		return pk, ok, true
	}
	if ok {
		return pk, true, false
	}
	return nil, false, now.Sub(ks.fetchedAt) >= minRefreshInterval
}

func (ks *KeySet) refresh(ctx context.Context) error {
	var doc jwks
	hdr, err := ks.client.GetJSON(ctx, ks.url, &doc)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}

	tmp := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pk, err := parseRSA(k.N, k.E)
		if err != nil {
			continue
		}
		tmp[k.Kid] = pk
	}

	ttl := defaultKeysTTL
	if hdr != nil {
		if maxAge, ok := parseMaxAge(hdr.Get("Cache-Control")); ok {
			ttl = maxAge
		}
	}

	ks.mu.Lock()
	now := ks.now()
	ks.keys = tmp
	ks.expAt = now.Add(ttl)
	ks.fetchedAt = now
	ks.mu.Unlock()
	return nil
}

func parseRSA(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil || len(eb) == 0 {
		return nil, errors.New("bad exponent")
	}
	exp := 0
	for _, b := range eb {
		exp = exp<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}

// parseMaxAge extrae max-age de un header Cache-Control.
func parseMaxAge(cc string) (time.Duration, bool) {
	for _, part := range strings.Split(cc, ",") {
		part = strings.TrimSpace(part)
		v, ok := strings.CutPrefix(strings.ToLower(part), "max-age=")
		if !ok {
			continue
		}
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
