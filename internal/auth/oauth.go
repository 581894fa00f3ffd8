package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/garnizeh/helpermatch/internal/config"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrNoEmail         = errors.New("provider did not return an email address")
	ErrEmailUnverified = errors.New("provider email address is not verified")
)

// Provider is a configured OAuth identity provider.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// TrustsEmail marks providers that only ever return confirmed addresses
	// and send no email_verified claim.
	TrustsEmail bool
}

// Providers builds the enabled providers from config. Callback URLs are
// <callback_base_url>/v1/auth/oauth/<name>/callback.
func Providers(cfg config.OAuthConfig) map[string]*Provider {
	base := strings.TrimRight(cfg.CallbackBaseURL, "/")
	out := map[string]*Provider{}

	if cfg.Google.Enabled() {
		out["google"] = &Provider{
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  base + "/v1/auth/oauth/google/callback",
				Scopes:       []string{"openid", "email"},
			},
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		}
	}
	if cfg.Facebook.Enabled() {
		out["facebook"] = &Provider{
			Name: "facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.Facebook.ClientID,
				ClientSecret: cfg.Facebook.ClientSecret,
				Endpoint:     facebook.Endpoint,
				RedirectURL:  base + "/v1/auth/oauth/facebook/callback",
				Scopes:       []string{"email"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,email",
			TrustsEmail: true,
		}
	}
	return out
}

// AuthCodeURL is where the user is sent to sign in with the provider.
func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and returns the account email.
// Addresses the provider does not vouch for are rejected with ErrEmailUnverified.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s token exchange: %w", p.Name, err)
	}

	resp, err := p.Config.Client(ctx, tok).Get(p.UserInfoURL)
	if err != nil {
		return "", fmt.Errorf("%s userinfo: %w", p.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s userinfo: unexpected status %d", p.Name, resp.StatusCode)
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%s userinfo decode: %w", p.Name, err)
	}
	if info.Email == "" {
		return "", ErrNoEmail
	}
	if info.EmailVerified == nil && !p.TrustsEmail || info.EmailVerified != nil && !*info.EmailVerified {
		return "", ErrEmailUnverified
	}
	return strings.ToLower(info.Email), nil
}
