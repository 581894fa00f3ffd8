package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const stateAudience = "oauth-state"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by session tokens. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// StateClaims are embedded in the OAuth state parameter.
type StateClaims struct {
	Provider   string `json:"provider"`
	Role       string `json:"role,omitempty"`
	RedirectTo string `json:"redirect_to"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a session token for the user.
func (t *Tokens) Issue(userID, email string) (string, error) {
	now := t.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies a session token. State tokens are rejected.
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	var claims Claims
	if err := t.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	for _, aud := range claims.Audience {
		if aud == stateAudience {
			return nil, ErrInvalidToken
		}
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// IssueState signs the OAuth round-trip state, valid for ten minutes. Role is
// the role granted if the callback creates a new user.
func (t *Tokens) IssueState(provider, role, redirectTo string) (string, error) {
	now := t.now()
	claims := StateClaims{
		Provider:   provider,
		Role:       role,
		RedirectTo: redirectTo,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) ParseState(state string) (*StateClaims, error) {
	var claims StateClaims
	if err := t.parse(state, &claims, jwt.WithAudience(stateAudience)); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (t *Tokens) parse(tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
