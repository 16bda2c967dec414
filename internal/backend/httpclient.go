package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/logging"
)

// HTTP implements API client over REST endpoints.
// User profiles are cached in memory for the lifetime of the process to avoid
// refetching the same author while rendering a page of posts.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:5000")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	log    *pterm.Logger

	mu        sync.Mutex
	userCache map[int64]cachedUser
}

type cachedUser struct {
	user *User
	at   time.Time
}

// newHTTP creates a new HTTP client with the given base URL.
// It configures a 10-second timeout for all requests.
func newHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		userCache: make(map[int64]cachedUser),
	}
}

// SetHTTPClient sets a custom HTTP client
func (h *HTTP) SetHTTPClient(c *http.Client) {
	h.client = c
}

// SetLogger enables debug traces of requests. Credentials are masked.
func (h *HTTP) SetLogger(log *pterm.Logger) {
	h.log = log
}

// BaseURL returns the API base URL requests are sent to.
func (h *HTTP) BaseURL() string { return h.baseURL }

// APIError is a non-2xx answer from the API. The API sends
// {"error": "<status text>", "message": ...} where message is either a
// string or an object of field -> problem.
type APIError struct {
	StatusCode int
	Err        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Err, e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Err)
}

// decodeAPIError reads an error response body into an APIError wrapped as APIRequestFailed.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Err: http.StatusText(resp.StatusCode)}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var raw struct {
		Error   string          `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(b))
	} else {
		if raw.Error != "" {
			apiErr.Err = raw.Error
		}
		apiErr.Message = flattenMessage(raw.Message)
	}
	return apperrors.Wrap(apperrors.APIRequestFailed, resp.Request.Method+" "+resp.Request.URL.Path, apiErr)
}

func flattenMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		return joinProblems(fields)
	}
	return string(raw)
}

// do sends a request and decodes a JSON response into out (when non-nil).
// A non-empty token is sent as a Bearer credential.
func (h *HTTP) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(req, out)
}

func (h *HTTP) send(req *http.Request, out any) error {
	h.debug("request", "method", req.Method, "url", req.URL.String(), "authorization", logging.Mask(req.Header.Get("Authorization")))

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	h.debug("response", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (h *HTTP) debug(msg string, args ...any) {
	if h.log == nil {
		return
	}
	h.log.Debug(msg, h.log.Args(args...))
}

// Ping calls GET /api/ping. No authentication required.
// This can be used to check connectivity to the backend service.
func (h *HTTP) Ping(ctx context.Context) error {
	return h.do(ctx, http.MethodGet, "/api/ping", "", nil, nil)
}
