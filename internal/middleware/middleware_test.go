package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/ports/auth"
)

type fakeVerifier struct {
	tokens map[string]auth.Claims
}

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f.tokens[token]
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return c, nil
}

type fakeRoles struct {
	roles map[int64][]string
	err   error
}

func (f fakeRoles) RolesOf(_ context.Context, id int64) ([]string, error) {
	return f.roles[id], f.err
}

func (f fakeRoles) HasRole(ctx context.Context, id int64, role string) (bool, error) {
	rs, err := f.RolesOf(ctx, id)
	if err != nil {
		return false, err
	}
	for _, r := range rs {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func decodeMsg(t *testing.T, rr *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var body struct {
		OK  bool   `json:"ok"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return body.OK, body.Msg
}

func chain(h http.Handler, mws []func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func okHandler(t *testing.T, want int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if !ok || c.UserID != want {
			t.Errorf("expected claims for user %d, got %+v (ok=%v)", want, c, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	v := fakeVerifier{tokens: map[string]auth.Claims{"good": {UserID: 7, Email: "ana@x.com"}}}
	h := Authenticate(v, logger.NewNop())(okHandler(t, 7))

	cases := []struct {
		name    string
		header  string
		status  int
		wantMsg string
	}{
		{"missing", "", http.StatusUnauthorized, MsgTokenMissing},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, MsgTokenMissing},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, MsgTokenMissing},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, MsgTokenInvalid},
		{"valid", "Bearer good", http.StatusNoContent, ""},
		{"valid lowercase scheme", "bearer good", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			if tc.wantMsg == "" {
				return
			}
			ok, msg := decodeMsg(t, rr)
			if ok || msg != tc.wantMsg {
				t.Fatalf("expected ok=false msg=%q, got ok=%v msg=%q", tc.wantMsg, ok, msg)
			}
		})
	}
}

func TestGateRole(t *testing.T) {
	v := fakeVerifier{tokens: map[string]auth.Claims{
		"admin":   {UserID: 1},
		"cliente": {UserID: 2},
	}}
	roles := fakeRoles{roles: map[int64][]string{1: {"ADMIN"}, 2: {"CLIENTE"}}}
	g := NewGate(v, roles, nil)

	h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), g.Role("ADMIN"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer cliente")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if _, msg := decodeMsg(t, rr); msg != MsgForbidden {
		t.Fatalf("unexpected msg %q", msg)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	// sin token no se consulta el resolver
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthorize_ResolverErrorIs500(t *testing.T) {
	roles := fakeRoles{err: errors.New("db down")}
	h := Authorize(logger.NewNop(), RequireRole(roles, "ADMIN"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), auth.Claims{UserID: 1}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if _, msg := decodeMsg(t, rr); msg != "Error interno" {
		t.Fatalf("unexpected msg %q", msg)
	}
}

func TestSelfOrRole(t *testing.T) {
	roles := fakeRoles{roles: map[int64][]string{1: {"ADMIN"}, 2: {"CLIENTE"}, 3: {"CLIENTE"}}}
	ctx := context.Background()

	if err := SelfOrRole(roles, 2, "ADMIN")(ctx, auth.Claims{UserID: 2}); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := SelfOrRole(roles, 2, "ADMIN")(ctx, auth.Claims{UserID: 1}); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := SelfOrRole(roles, 2, "ADMIN")(ctx, auth.Claims{UserID: 3}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("expected generated request id, got %q / %q", seen, rr.Header().Get(HeaderRequestID))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "abc-123" {
		t.Fatalf("expected incoming id to be reused, got %q", seen)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if ok, msg := decodeMsg(t, rr); ok || msg != "Error interno" {
		t.Fatalf("unexpected body ok=%v msg=%q", ok, msg)
	}
}

func TestDeadline(t *testing.T) {
	h := Deadline(50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			t.Errorf("expected deadline on request context")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
