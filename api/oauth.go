package api

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/internal/auth"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// OAuthHandler runs the provider sign-in round trip and hands the session
// token back to the client in the redirect fragment.
type OAuthHandler struct {
	userRepo  repository.UserRepo
	tokens    *auth.Tokens
	providers map[string]*auth.Provider
	origins   []string
}

// NewOAuthHandler creates an OAuthHandler. redirect_to must be a relative
// path or an URL on one of origins; "*" allows any origin.
func NewOAuthHandler(ur repository.UserRepo, tokens *auth.Tokens, providers map[string]*auth.Provider, origins []string) *OAuthHandler {
	return &OAuthHandler{userRepo: ur, tokens: tokens, providers: providers, origins: origins}
}

func (h *OAuthHandler) provider(r *http.Request) (*auth.Provider, error) {
	p, ok := h.providers[mux.Vars(r)["provider"]]
	if !ok {
		return nil, notFound(auth.ErrUnknownProvider.Error())
	}
	return p, nil
}

func (h *OAuthHandler) allowedRedirect(target string) bool {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	if slices.Contains(h.origins, "*") {
		return true
	}
	return slices.Contains(h.origins, u.Scheme+"://"+u.Host)
}

// Start redirects to the provider's consent page.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	redirectTo := q.Get("redirect_to")
	if redirectTo == "" {
		redirectTo = "/"
	}
	if !h.allowedRedirect(redirectTo) {
		writeError(w, r, badRequest("redirect_to is not allowed"))
		return
	}
	role := q.Get("role")
	if role == "" {
		role = string(models.RoleWorker)
	}
	if role != string(models.RoleWorker) && role != string(models.RoleEmployer) {
		writeError(w, r, badRequest("role must be worker or employer"))
		return
	}

	state, err := h.tokens.IssueState(p.Name, role, redirectTo)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

func redirectWithFragment(w http.ResponseWriter, r *http.Request, target string, values url.Values) {
	http.Redirect(w, r, target+"#"+values.Encode(), http.StatusFound)
}

// Callback exchanges the code, finds or creates the user by email and
// redirects to redirect_to#access_token=<jwt>. Provider failures land on
// redirect_to#error=<message>.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	state, err := h.tokens.ParseState(q.Get("state"))
	if err != nil || state.Provider != p.Name {
		writeError(w, r, badRequest("invalid oauth state"))
		return
	}
	if msg := q.Get("error"); msg != "" {
		redirectWithFragment(w, r, state.RedirectTo, url.Values{"error": {msg}})
		return
	}

	ctx := r.Context()
	email, err := p.Exchange(ctx, q.Get("code"))
	if err != nil {
		logger.WarnContext(ctx, "oauth exchange failed", "provider", p.Name, "err", err)
		redirectWithFragment(w, r, state.RedirectTo, url.Values{"error": {err.Error()}})
		return
	}

	u, err := h.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	if u == nil {
		u = &models.User{Email: &email, Provider: p.Name}
		id, err := h.userRepo.CreateUser(ctx, u)
		if err != nil {
			writeError(w, r, internal(err))
			return
		}
		u.ID = id
		if err := h.userRepo.AddRole(ctx, id, models.Role(state.Role)); err != nil {
			writeError(w, r, internal(err))
			return
		}
		logger.InfoContext(ctx, "oauth user created", "user_id", id, "provider", p.Name)
	}

	tok, err := h.tokens.Issue(u.ID, email)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	redirectWithFragment(w, r, state.RedirectTo, url.Values{"access_token": {tok}, "token_type": {"bearer"}})
}
