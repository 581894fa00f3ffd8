package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/helpermatch/internal/auth"
	"github.com/garnizeh/helpermatch/internal/otp"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// OTPService issues and checks phone confirmation codes.
type OTPService interface {
	Request(ctx context.Context, userID, phone string) error
	Verify(ctx context.Context, userID, phone, code string) error
}

type AuthHandler struct {
	userRepo     repository.UserRepo
	employerRepo repository.EmployerRepo
	tokens       *auth.Tokens
	otp          OTPService
	now          func() time.Time
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, er repository.EmployerRepo, tokens *auth.Tokens, otpSvc OTPService) *AuthHandler {
	return &AuthHandler{userRepo: ur, employerRepo: er, tokens: tokens, otp: otpSvc, now: time.Now}
}

type workerSignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type employerSignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password"`
	ContactName     string `json:"contact_name" validate:"required"`
	CompanyName     string `json:"company_name"`
	Phone           string `json:"phone"`
	District        string `json:"district" validate:"omitempty,oneof=香港島 九龍 新界 離島"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type otpRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type userResponse struct {
	ID               string        `json:"id"`
	Email            *string       `json:"email"`
	Phone            *string       `json:"phone"`
	PhoneConfirmedAt *int64        `json:"phone_confirmed_at"`
	PhoneVerified    bool          `json:"phone_verified"`
	Provider         string        `json:"provider"`
	Roles            []models.Role `json:"roles"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []models.Role{}
	}
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Phone:            u.Phone,
		PhoneConfirmedAt: u.PhoneConfirmedAt,
		PhoneVerified:    u.PhoneConfirmedAt != nil,
		Provider:         u.Provider,
		Roles:            roles,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func passwordError(err error) error {
	var pe *auth.PolicyError
	if errors.As(err, &pe) {
		appErr := newError(http.StatusBadRequest, CodeValidation, "password does not meet requirements", err)
		appErr.Details = pe.Violations
		return appErr
	}
	if errors.Is(err, auth.ErrPasswordMismatch) {
		return newError(http.StatusBadRequest, CodeValidation, err.Error(), err)
	}
	return internal(err)
}

// createUser inserts an email user with one role. It fails with 409 when
// the email is taken.
func (h *AuthHandler) createUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	existing, err := h.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, internal(err)
	}
	if existing != nil {
		return nil, newError(http.StatusConflict, CodeConflict, "email already registered", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internal(err)
	}
	u := &models.User{Email: &email, PasswordHash: hash, Provider: "email"}
	id, err := h.userRepo.CreateUser(ctx, u)
	if err != nil {
		return nil, internal(err)
	}
	u.ID = id
	if err := h.userRepo.AddRole(ctx, id, role); err != nil {
		return nil, internal(err)
	}
	u.Roles = []models.Role{role}
	return u, nil
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	tok, err := h.tokens.Issue(u.ID, email)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	writeJSON(w, status, authResponse{Token: tok, User: toUserResponse(u)})
}

func (h *AuthHandler) WorkerSignup(w http.ResponseWriter, r *http.Request) {
	var req workerSignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.StrictPolicy.Check(req.Password, req.ConfirmPassword); err != nil {
		writeError(w, r, passwordError(err))
		return
	}

	u, err := h.createUser(r.Context(), normalizeEmail(req.Email), req.Password, models.RoleWorker)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.InfoContext(r.Context(), "worker signed up", "user_id", u.ID)
	h.respondWithToken(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) EmployerSignup(w http.ResponseWriter, r *http.Request) {
	var req employerSignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.SimplePolicy.Check(req.Password, req.ConfirmPassword); err != nil {
		writeError(w, r, passwordError(err))
		return
	}

	ctx := r.Context()
	u, err := h.createUser(ctx, normalizeEmail(req.Email), req.Password, models.RoleEmployer)
	if err != nil {
		writeError(w, r, err)
		return
	}

	emp := &models.Employer{
		UserID:      u.ID,
		ContactName: strings.TrimSpace(req.ContactName),
		CompanyName: optional(req.CompanyName),
		Phone:       optional(req.Phone),
		District:    optional(req.District),
	}
	if _, err := h.employerRepo.CreateEmployer(ctx, emp); err != nil {
		writeError(w, r, newError(http.StatusInternalServerError, "profile_save_failed",
			"account created but profile save failed: "+err.Error(), err))
		return
	}
	logger.InfoContext(ctx, "employer signed up", "user_id", u.ID)
	h.respondWithToken(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	u, err := h.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, r, newError(http.StatusUnauthorized, CodeUnauthorized, "invalid email or password", nil))
		return
	}
	roles, err := h.userRepo.ListRoles(ctx, u.ID)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	u.Roles = roles
	h.respondWithToken(w, r, http.StatusOK, u)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) currentUser(ctx context.Context) (*models.User, error) {
	u, err := h.userRepo.GetUserByID(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, internal(err)
	}
	if u == nil {
		return nil, newError(http.StatusUnauthorized, CodeUnauthorized, "user no longer exists", nil)
	}
	roles, err := h.userRepo.ListRoles(ctx, u.ID)
	if err != nil {
		return nil, internal(err)
	}
	u.Roles = roles
	return u, nil
}

// Me returns the signed-in user. Phone verification is read from
// phone_confirmed_at.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func otpError(err error) error {
	var sendErr *otp.SendError
	switch {
	case errors.Is(err, otp.ErrInvalidPhone):
		return newError(http.StatusBadRequest, CodeValidation, err.Error(), err)
	case errors.Is(err, otp.ErrInvalidCode):
		return newError(http.StatusBadRequest, "invalid_code", err.Error(), err)
	case errors.Is(err, otp.ErrCooldown), errors.Is(err, otp.ErrTooManyAttempts):
		return newError(http.StatusTooManyRequests, CodeTooMany, err.Error(), err)
	case errors.As(err, &sendErr):
		return newError(http.StatusBadGateway, CodeExternal, sendErr.Message, err)
	}
	return internal(err)
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	phone := strings.TrimSpace(req.Phone)
	if err := h.otp.Request(r.Context(), UserIDFromContext(r.Context()), phone); err != nil {
		writeError(w, r, otpError(err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "code sent"})
}

// VerifyOTP confirms the phone and returns the refreshed user.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	userID := UserIDFromContext(ctx)
	phone := strings.TrimSpace(req.Phone)
	if !otp.ValidCodeFormat(req.Code) {
		writeError(w, r, newError(http.StatusBadRequest, CodeValidation, "code must be 6 digits", nil))
		return
	}
	if err := h.otp.Verify(ctx, userID, phone, req.Code); err != nil {
		writeError(w, r, otpError(err))
		return
	}
	if err := h.userRepo.ConfirmPhone(ctx, userID, phone, h.now().UnixMilli()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, newError(http.StatusUnauthorized, CodeUnauthorized, "user no longer exists", err))
			return
		}
		writeError(w, r, internal(err))
		return
	}

	u, err := h.currentUser(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.InfoContext(ctx, "phone confirmed", "user_id", userID)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// optional maps blank input to NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
