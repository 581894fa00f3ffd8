package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/api"
	"github.com/garnizeh/helpermatch/internal/storage"
	"github.com/garnizeh/helpermatch/internal/wizard"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
	"github.com/garnizeh/helpermatch/pkg/repository/mock"
)

func profileRouter(t *testing.T, m *mock.Mocks) (*mux.Router, string) {
	t.Helper()
	store, err := storage.New(t.TempDir(), "http://localhost:8080/storage")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	tokens := testTokens()
	h := api.NewWorkerProfileHandler(wizard.NewService(m.WorkerRepo, store, nil), 10<<20)
	r := mux.NewRouter()
	r.Use(api.JWTAuthMiddleware(tokens))
	r.HandleFunc("/workers/me", h.Me).Methods("GET")
	r.HandleFunc("/workers/me", h.Register).Methods("POST")
	r.HandleFunc("/workers/me", h.Update).Methods("PUT")
	r.HandleFunc("/workers/me/form", h.Form).Methods("GET")
	r.HandleFunc("/workers/me/photo", h.UploadPhoto).Methods("POST")
	return r, issue(t, tokens, "user-1")
}

type saveResp struct {
	WorkerID  string `json:"worker_id"`
	HKIDState string `json:"hkid_state"`
}

func TestRegisterWorkerProfile(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	if w := doJSON(t, r, http.MethodGet, "/workers/me", nil, tok); w.Code != http.StatusNotFound {
		t.Fatalf("no profile yet: want 404 got %d", w.Code)
	}

	body := `{
		"name":          "Maria Santos",
		"nationality":   "Philippines",
		"gender":        "F",
		"height_cm":     "158",
		"hkid":          "a123456(7)",
		"skill_cooking": true,
		"eats_pork":     "yes",
		"overseas":      [{"country": "Singapore", "duration": "2 years"}],
		"duties":        [{"working_country": "Hong Kong", "skill_care_babies": true}]
	}`
	w := doJSON(t, r, http.MethodPost, "/workers/me", body, tok)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: want 201 got %d body=%s", w.Code, w.Body.String())
	}
	res := decodeBody[saveResp](t, w)
	if res.HKIDState != "ok" {
		t.Fatalf("expected hkid ok, got %q", res.HKIDState)
	}

	stored := m.WorkerRepo.Workers[res.WorkerID]
	if stored == nil || stored.Status != models.StatusPending || stored.UserID != "user-1" {
		t.Fatalf("unexpected stored worker %+v", stored)
	}
	if stored.HeightCM == nil || *stored.HeightCM != 158 || !stored.Cooking || stored.EatsPork != models.Yes {
		t.Fatalf("fields not converted: %+v", stored)
	}
	if stored.Smokes != models.Unanswered {
		t.Fatalf("unanswered question stored as %v", stored.Smokes)
	}
	if len(m.WorkerRepo.Overseas[res.WorkerID]) != 1 || len(m.WorkerRepo.Duties[res.WorkerID]) != 1 {
		t.Fatalf("child rows not stored")
	}

	if w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"Again"}`, tok); w.Code != http.StatusConflict {
		t.Fatalf("second register: want 409 got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/workers/me", nil, tok)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Maria Santos") {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRejectsMissingName(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"   ","nationality":"Indonesia"}`, tok)
	eb := decodeBody[errBody](t, w)
	if w.Code != http.StatusBadRequest || eb.Code != "name_required" || eb.Step == nil || *eb.Step != 0 {
		t.Fatalf("want 400 name_required at step 0, got %d %+v", w.Code, eb)
	}
	if eb.Error != wizard.ErrNameRequired.Error() {
		t.Fatalf("unexpected message %q", eb.Error)
	}
	if m.WorkerRepo.RegisterCalls != 0 {
		t.Fatalf("store was written")
	}
}

func TestRegisterRejectsSchemaViolations(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"Ana","gender":"X","skill_cooking":"yes"}`, tok)
	eb := decodeBody[errBody](t, w)
	if w.Code != http.StatusBadRequest || eb.Code != api.CodeValidation || len(eb.Details) < 2 {
		t.Fatalf("want 400 with details, got %d %+v", w.Code, eb)
	}

	if w := doJSON(t, r, http.MethodPost, "/workers/me", `not json`, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: want 400 got %d", w.Code)
	}
}

func TestUpdateWorkerProfile(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	if w := doJSON(t, r, http.MethodPut, "/workers/me", `{"name":"Ana"}`, tok); w.Code != http.StatusNotFound {
		t.Fatalf("update without profile: want 404 got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"Ana","nationality":"Indonesia","overseas":[{"country":"Taiwan"},{"country":"Macau"}]}`, tok)
	id := decodeBody[saveResp](t, w).WorkerID

	w = doJSON(t, r, http.MethodGet, "/workers/me/form", nil, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("form: want 200 got %d", w.Code)
	}
	form := decodeBody[struct {
		WorkerID string      `json:"worker_id"`
		Form     wizard.Form `json:"form"`
		Steps    []string    `json:"steps"`
	}](t, w)
	if form.WorkerID != id || form.Form.Name != "Ana" || len(form.Form.Overseas) != 2 || len(form.Steps) != len(wizard.EditSteps) {
		t.Fatalf("unexpected form %+v", form)
	}

	w = doJSON(t, r, http.MethodPut, "/workers/me", `{"name":"Ana Lim","hkid":"bad","overseas":[{"country":"Japan"}]}`, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("update: want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if res := decodeBody[saveResp](t, w); res.HKIDState != "error" {
		t.Fatalf("expected advisory hkid error, got %q", res.HKIDState)
	}
	stored := m.WorkerRepo.Workers[id]
	if stored.Name != "Ana Lim" || stored.Nationality == nil || *stored.Nationality != "Indonesia" {
		t.Fatalf("unexpected stored worker %+v", stored)
	}
	if ov := m.WorkerRepo.Overseas[id]; len(ov) != 1 || ov[0].Country != "Japan" {
		t.Fatalf("overseas not replaced: %+v", ov)
	}

	w = doJSON(t, r, http.MethodPut, "/workers/me", `{"name":""}`, tok)
	if eb := decodeBody[errBody](t, w); w.Code != http.StatusBadRequest || eb.Code != "name_required" {
		t.Fatalf("blank name update: got %d %+v", w.Code, eb)
	}
	if m.WorkerRepo.UpdateCalls != 1 {
		t.Fatalf("expected a single update, got %d", m.WorkerRepo.UpdateCalls)
	}
}

func TestUpdateReplacesPartialEntries(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{
		"name":     "Ana",
		"overseas": [{"country": "Hong Kong", "duration": "2 years"}],
		"duties":   [{"working_country": "Singapore", "salary": "4500", "skill_driving": true, "skill_cooking": true}]
	}`, tok)
	id := decodeBody[saveResp](t, w).WorkerID

	w = doJSON(t, r, http.MethodPut, "/workers/me", `{"overseas":[{"country":"Taiwan"}],"duties":[{"working_country":"Macau"}]}`, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("update: want 200 got %d body=%s", w.Code, w.Body.String())
	}
	ov := m.WorkerRepo.Overseas[id]
	if len(ov) != 1 || ov[0].Country != "Taiwan" || ov[0].Duration != nil {
		t.Fatalf("overseas kept stale fields: %+v", ov)
	}
	duties := m.WorkerRepo.Duties[id]
	if len(duties) != 1 || duties[0].WorkingCountry == nil || *duties[0].WorkingCountry != "Macau" {
		t.Fatalf("unexpected duties %+v", duties)
	}
	if duties[0].Driving || duties[0].Cooking || duties[0].Salary != nil {
		t.Fatalf("duty kept stale fields: %+v", duties[0])
	}
}

func TestUploadProfilePhoto(t *testing.T) {
	m := mock.NewMocks()
	r, tok := profileRouter(t, m)

	if w := doMultipart(t, r, "/workers/me/photo", []part{{field: "other", content: []byte("x")}}, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("missing file: want 400 got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"Ana"}`, tok)
	id := decodeBody[saveResp](t, w).WorkerID

	w = doMultipart(t, r, "/workers/me/photo", []part{{field: "photo", filename: "me.png", content: pngBytes}}, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("photo: want 200 got %d body=%s", w.Code, w.Body.String())
	}
	url := decodeBody[map[string]string](t, w)["photo_url"]
	if !strings.HasPrefix(url, "http://localhost:8080/storage/worker-assets/user-1/profile.jpg?v=") {
		t.Fatalf("unexpected url %q", url)
	}
	if got := m.WorkerRepo.Workers[id].PhotoURL; got == nil || *got != url {
		t.Fatalf("photo url not stored: %v", got)
	}

	w = doMultipart(t, r, "/workers/me/photo", []part{{field: "photo", filename: "me.jpg", content: []byte("<html><body>hi</body></html>")}}, tok)
	if eb := decodeBody[errBody](t, w); w.Code != http.StatusBadRequest || eb.Code != "bad_request" {
		t.Fatalf("non-image photo: want 400 got %d %+v", w.Code, eb)
	}
	w = doMultipart(t, r, "/workers/me/photo", []part{{field: "photo", filename: "clip.mp4", content: mp4Bytes}}, tok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("video photo: want 400 got %d", w.Code)
	}
	if got := m.WorkerRepo.Workers[id].PhotoURL; got == nil || *got != url {
		t.Fatalf("rejected upload changed the photo url: %v", got)
	}
}

func TestRegisterRaceIsConflict(t *testing.T) {
	m := mock.NewMocks()
	m.WorkerRepo.RegisterErr = repository.ErrConflict
	r, tok := profileRouter(t, m)

	w := doJSON(t, r, http.MethodPost, "/workers/me", `{"name":"Ana"}`, tok)
	if eb := decodeBody[errBody](t, w); w.Code != http.StatusConflict || eb.Code != "conflict" {
		t.Fatalf("want 409 conflict got %d %+v", w.Code, eb)
	}
}
