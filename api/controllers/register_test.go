package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/internal/auth"
	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

type stubRegisterService struct {
	summary *users.Summary
	err     error
	got     auth.RegisterRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.Summary, error) {
	s.got = req
	return s.summary, s.err
}

func (s *stubRegisterService) Provision(ctx context.Context, name, email, password string, role enums.AccountRole) (*users.Summary, error) {
	return s.summary, s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	id := uuid.New()
	reg := &stubRegisterService{summary: &users.Summary{ID: id, Name: "Ana", Email: "ana@example.com"}}
	handler := AuthRegister(reg, nil)

	body := `{"name":"Ana","email":"ana@example.com","password":"secret1","bloodGroup":"O-"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	data := env.Data.(map[string]any)
	if data["id"] != id.String() || data["email"] != "ana@example.com" {
		t.Fatalf("unexpected payload %v", data)
	}
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password must not be returned")
	}
	if reg.got.BloodGroup == nil || *reg.got.BloodGroup != "O-" {
		t.Fatalf("expected blood group forwarded, got %+v", reg.got)
	}
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "User with this email already exists")}
	handler := AuthRegister(reg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(`{"name":"Ana","email":"ana@example.com","password":"secret1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	handler := AuthRegister(&stubRegisterService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(`{"name":"Ana","email":"not-an-email","password":"secret1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != string(pkgerrors.CodeValidation) || env.Details == nil {
		t.Fatalf("expected validation details, got %+v", env)
	}
}
