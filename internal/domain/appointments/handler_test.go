package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/ports/auth"
)

type fakeRoles map[int64][]string

func (f fakeRoles) RolesOf(_ context.Context, userID int64) ([]string, error) {
	return f[userID], nil
}

func (f fakeRoles) HasRole(_ context.Context, userID int64, role string) (bool, error) {
	for _, r := range f[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func postAppointment(t *testing.T, h http.Handler, subject int64, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/cliente/citas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithClaims(req.Context(), auth.Claims{UserID: subject, Email: "u@x.com"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestCreateAppointmentHandler_MissingReasonIsBadRequest(t *testing.T) {
	svc, repo := newTestService()
	gate := middleware.NewGate(nil, fakeRoles{1: {"CLIENTE"}, 2: {"CLIENTE"}}, logger.NewNop())
	h := createAppointmentHandler(svc, gate)

	cases := []struct {
		name    string
		subject int64
		body    string
	}{
		{"someone else's pet", 2, `{"mascota_id":10,"veterinario_id":5,"fecha":"2025-12-24T10:00","motivo":""}`},
		{"unknown pet", 1, `{"mascota_id":99,"veterinario_id":5,"fecha":"2025-12-24T10:00"}`},
		{"blank reason", 1, `{"mascota_id":10,"veterinario_id":5,"fecha":"2025-12-24T10:00","motivo":"   "}`},
	}
	for _, tc := range cases {
		code, out := postAppointment(t, h, tc.subject, tc.body)
		if code != http.StatusBadRequest || out["msg"] != MsgMissingData {
			t.Fatalf("%s: expected 400 %q, got %d %v", tc.name, MsgMissingData, code, out)
		}
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no appointments stored, got %d", len(repo.items))
	}
}

func TestCreateAppointmentHandler_OwnershipAndSuccess(t *testing.T) {
	svc, repo := newTestService()
	gate := middleware.NewGate(nil, fakeRoles{1: {"CLIENTE"}, 2: {"CLIENTE"}, 3: {"ADMIN"}}, logger.NewNop())
	h := createAppointmentHandler(svc, gate)
	body := `{"mascota_id":"10","veterinario_id":5,"fecha":"2025-12-24T10:00","motivo":"Vacuna"}`

	if code, out := postAppointment(t, h, 2, body); code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d %v", code, out)
	}

	code, out := postAppointment(t, h, 1, body)
	if code != http.StatusCreated || out["msg"] != MsgCreated {
		t.Fatalf("expected 201 for owner, got %d %v", code, out)
	}

	if code, out := postAppointment(t, h, 3, body); code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d %v", code, out)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 appointments stored, got %d", len(repo.items))
	}
}
