package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/helpermatch/internal/otp"
)

// OTPSender is the part of the OTP service the diagnostics page drives.
type OTPSender interface {
	Request(ctx context.Context, userID, phone string) error
	Ping(ctx context.Context) error
	SenderName() string
}

// diagnosticsUser owns the codes sent from the test page. No session carries
// it, so those codes can never be verified.
const diagnosticsUser = "diagnostics"

// DiagnosticsHandler serves the SMS test page backend.
type DiagnosticsHandler struct {
	otp OTPSender
	env string
	now func() time.Time
}

func NewDiagnosticsHandler(o OTPSender, env string) *DiagnosticsHandler {
	return &DiagnosticsHandler{otp: o, env: env, now: time.Now}
}

type smsTestError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

type smsTestResponse struct {
	Success     bool              `json:"success"`
	Error       *smsTestError     `json:"error,omitempty"`
	Timestamp   string            `json:"timestamp"`
	Environment map[string]string `json:"environment"`
}

// SMS runs a real OTP request, cooldown included, and reports the raw
// outcome. It always answers 200; the result is in the body.
func (h *DiagnosticsHandler) SMS(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	phone := strings.TrimSpace(req.Phone)

	resp := smsTestResponse{
		Environment: map[string]string{
			"env":          h.env,
			"sms_provider": h.otp.SenderName(),
			"redis":        "ok",
		},
	}
	if err := h.otp.Ping(ctx); err != nil {
		resp.Environment["redis"] = err.Error()
	}

	err := h.otp.Request(ctx, diagnosticsUser, phone)
	resp.Success = err == nil
	if err != nil {
		se := &smsTestError{Message: err.Error()}
		var sendErr *otp.SendError
		if errors.As(err, &sendErr) {
			se.Message = sendErr.Message
			se.Status = sendErr.Status
		}
		resp.Error = se
		logger.WarnContext(ctx, "sms test failed", "err", err)
	}
	resp.Timestamp = h.now().UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, resp)
}
