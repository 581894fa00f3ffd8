package api_test

import (
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/api"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository/mock"
)

func employersRouter(m *mock.Mocks) (*mux.Router, string) {
	tokens := testTokens()
	h := api.NewEmployersHandler(m.EmployerRepo, m.UserRepo)
	r := mux.NewRouter()
	r.Use(api.JWTAuthMiddleware(tokens))
	r.HandleFunc("/employers/me", h.GetMe).Methods("GET")
	r.HandleFunc("/employers/me", h.UpdateMe).Methods("PUT")
	tok, _ := tokens.Issue("user-1", "boss@example.com")
	return r, tok
}

func TestEmployerProfile(t *testing.T) {
	m := mock.NewMocks()
	r, tok := employersRouter(m)

	if w := doJSON(t, r, http.MethodGet, "/employers/me", nil, tok); w.Code != http.StatusNotFound {
		t.Fatalf("missing profile: want 404 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/employers/me", map[string]string{"contact_name": "  "}, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("blank contact: want 400 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/employers/me", map[string]string{"contact_name": "Mr Chan", "district": "Tokyo"}, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("bad district: want 400 got %d", w.Code)
	}

	// First save creates the profile and grants the employer role.
	w := doJSON(t, r, http.MethodPut, "/employers/me", map[string]string{"contact_name": "Mr Chan", "district": "新界"}, tok)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: want 201 got %d body=%s", w.Code, w.Body.String())
	}
	if !slices.Contains(m.UserRepo.Roles["user-1"], models.RoleEmployer) {
		t.Fatalf("employer role not granted")
	}

	w = doJSON(t, r, http.MethodPut, "/employers/me", map[string]string{"contact_name": "Mrs Chan", "company_name": "Chan Ltd"}, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("update: want 200 got %d body=%s", w.Code, w.Body.String())
	}
	emp := decodeBody[models.Employer](t, w)
	if emp.ContactName != "Mrs Chan" || emp.CompanyName == nil || *emp.CompanyName != "Chan Ltd" || emp.District != nil {
		t.Fatalf("unexpected employer %+v", emp)
	}

	w = doJSON(t, r, http.MethodGet, "/employers/me", nil, tok)
	if got := decodeBody[models.Employer](t, w); w.Code != http.StatusOK || got.ID != emp.ID {
		t.Fatalf("get: %d %+v", w.Code, got)
	}
}

func TestEmployerProfileSaveFailure(t *testing.T) {
	m := mock.NewMocks()
	m.EmployerRepo.CreateErr = errors.New("disk full")
	r, tok := employersRouter(m)

	w := doJSON(t, r, http.MethodPut, "/employers/me", map[string]string{"contact_name": "Mr Chan"}, tok)
	if eb := decodeBody[errBody](t, w); w.Code != http.StatusInternalServerError || eb.Code != api.CodeInternal {
		t.Fatalf("want 500 internal, got %d %+v", w.Code, eb)
	}
	if len(m.UserRepo.Roles["user-1"]) != 0 {
		t.Fatalf("role granted without a profile")
	}
}
