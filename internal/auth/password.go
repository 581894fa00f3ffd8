package auth

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// Policy is a set of password rules. Digits and capitals are ASCII only.
// Check reports every violated rule, not only the first one.
type Policy struct {
	MinLength    int
	RequireDigit bool
	RequireUpper bool
}

var (
	// StrictPolicy applies to worker sign-up.
	StrictPolicy = Policy{MinLength: 8, RequireDigit: true, RequireUpper: true}
	// SimplePolicy applies to employer sign-up.
	SimplePolicy = Policy{MinLength: 6}
)

// PolicyError lists the rules a password failed.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "password does not meet requirements: " + strings.Join(e.Violations, "; ")
}

func (p Policy) Violations(password string) []string {
	var out []string
	if len([]rune(password)) < p.MinLength {
		out = append(out, "must be at least "+strconv.Itoa(p.MinLength)+" characters")
	}
	if p.RequireDigit && !strings.ContainsAny(password, "0123456789") {
		out = append(out, "must contain a number")
	}
	if p.RequireUpper && !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		out = append(out, "must contain an uppercase letter")
	}
	return out
}

// Check validates password against the policy and its confirmation. An empty
// confirm skips the comparison.
func (p Policy) Check(password, confirm string) error {
	if v := p.Violations(password); len(v) > 0 {
		return &PolicyError{Violations: v}
	}
	if confirm != "" && confirm != password {
		return ErrPasswordMismatch
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
