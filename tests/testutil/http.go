package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// SessionHeader carries the shopper session id on API requests
const SessionHeader = "X-Session-ID"

// APIClient sends JSON requests to an in-process handler, optionally as an
// admin (bearer token) or a shopper (session id)
type APIClient struct {
	T         *testing.T
	Handler   http.Handler
	Token     string
	SessionID string
}

// NewAPIClient returns an anonymous client for handler
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{T: t, Handler: handler}
}

// Do encodes body as JSON (when non-nil) and serves the request
func (c *APIClient) Do(method, path string, body any) *httptest.ResponseRecorder {
	c.T.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.T, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.SessionID != "" {
		req.Header.Set(SessionHeader, c.SessionID)
	}

	w := httptest.NewRecorder()
	c.Handler.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response: %s", w.Body.String())
	return env
}

// DecodeData asserts a success envelope and decodes its data into T
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "Failed to decode data")
	return out
}

// RequireErrorCode asserts an error envelope with the given status and code
func RequireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	require.Equal(t, code, env.Error.Code)
}
