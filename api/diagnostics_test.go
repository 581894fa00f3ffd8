package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/garnizeh/helpermatch/api"
	"github.com/garnizeh/helpermatch/internal/otp"
)

type smsResult struct {
	Success bool `json:"success"`
	Error   *struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
	Timestamp   string            `json:"timestamp"`
	Environment map[string]string `json:"environment"`
}

func TestDiagnosticsSMS(t *testing.T) {
	tests := []struct {
		name        string
		phones      []string
		sender      *fakeSender
		redisDown   bool
		wantSuccess bool
		wantMessage string
		wantStatus  int
		wantSent    int
	}{
		{name: "Sent", phones: []string{"+85291234567"}, sender: &fakeSender{}, wantSuccess: true, wantSent: 1},
		{name: "InvalidPhone", phones: []string{"12345"}, sender: &fakeSender{}, wantMessage: otp.ErrInvalidPhone.Error()},
		{
			name:        "ProviderError",
			phones:      []string{"+85291234567"},
			sender:      &fakeSender{err: &otp.SendError{Status: 401, Message: "Authenticate"}},
			wantMessage: "Authenticate",
			wantStatus:  401,
		},
		{
			name:        "CooldownApplies",
			phones:      []string{"+85291234567", "+85291234567"},
			sender:      &fakeSender{},
			wantMessage: otp.ErrCooldown.Error(),
			wantSent:    1,
		},
		{name: "RedisDown", phones: []string{"+85291234567"}, sender: &fakeSender{}, redisDown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { rdb.Close() })
			if tt.redisDown {
				mr.Close()
			}
			h := api.NewDiagnosticsHandler(otp.NewService(rdb, tt.sender, 5*time.Minute, time.Minute, nil), "development")

			var w *httptest.ResponseRecorder
			for _, phone := range tt.phones {
				w = doJSON(t, http.HandlerFunc(h.SMS), http.MethodPost, "/v1/diagnostics/sms", map[string]string{"phone": phone}, "")
				if w.Code != http.StatusOK {
					t.Fatalf("expected 200 got %d", w.Code)
				}
			}
			res := decodeBody[smsResult](t, w)
			if res.Success != tt.wantSuccess || res.Timestamp == "" {
				t.Fatalf("unexpected result %+v", res)
			}
			if res.Environment["env"] != "development" || res.Environment["sms_provider"] != "fake" {
				t.Fatalf("unexpected environment %v", res.Environment)
			}
			if redisOK := res.Environment["redis"] == "ok"; redisOK == tt.redisDown {
				t.Fatalf("unexpected redis state %q", res.Environment["redis"])
			}
			if len(tt.sender.sent) != tt.wantSent {
				t.Fatalf("expected %d sent messages, got %d", tt.wantSent, len(tt.sender.sent))
			}
			if tt.wantSuccess {
				if res.Error != nil {
					t.Fatalf("unexpected error %+v", res.Error)
				}
				return
			}
			if res.Error == nil || (tt.wantMessage != "" && res.Error.Message != tt.wantMessage) || res.Error.Status != tt.wantStatus {
				t.Fatalf("unexpected error %+v", res.Error)
			}
		})
	}
}
