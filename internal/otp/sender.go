package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers an SMS body to an E.164 number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
	Name() string
}

// SendError carries the provider status of a failed delivery.
type SendError struct {
	Status  int
	Message string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sms send failed: %d %s", e.Status, e.Message)
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (t *TwilioSender) Name() string { return "twilio" }

func (t *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			return &SendError{Status: restErr.Status, Message: restErr.Message}
		}
		return &SendError{Status: http.StatusBadGateway, Message: err.Error()}
	}
	return nil
}

// LogSender writes codes to the log instead of sending them. Used when no
// SMS provider is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) Name() string { return "log" }

func (l LogSender) Send(ctx context.Context, to, body string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("sms not sent, no provider configured", slog.String("to", to), slog.String("body", body))
	return nil
}
