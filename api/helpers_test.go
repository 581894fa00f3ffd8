package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/helpermatch/internal/auth"
)

const testSecret = "testsecret"

func testTokens() *auth.Tokens {
	return auth.NewTokens(testSecret, time.Hour)
}

func issue(t *testing.T, tokens *auth.Tokens, userID string) string {
	t.Helper()
	tok, err := tokens.Issue(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// doJSON sends body as JSON (a string is sent as is) with an optional bearer token.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}

type errBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details"`
	Step    *int     `json:"step"`
}

type sentSMS struct {
	to, body string
}

// fakeSender records messages instead of sending them.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{to: to, body: body})
	return nil
}

// lastCode returns the trailing six digits of the last message.
func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("no sms sent")
	}
	b := f.sent[len(f.sent)-1].body
	return b[len(b)-6:]
}

type part struct {
	field, filename string
	content         []byte
}

// doMultipart posts parts as multipart/form-data. Parts without a filename
// are sent as plain fields.
func doMultipart(t *testing.T, h http.Handler, path string, parts []part, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		var (
			w   io.Writer
			err error
		)
		if p.filename == "" {
			w, err = mw.CreateFormField(p.field)
		} else {
			w, err = mw.CreateFormFile(p.field, p.filename)
		}
		if err != nil {
			t.Fatalf("multipart: %v", err)
		}
		w.Write(p.content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// PNG and MP4 headers, enough for content sniffing.
var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	mp4Bytes = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
)
