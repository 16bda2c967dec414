package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// IssueToken posts to /api/tokens with HTTP basic auth and returns the token
// from the response. The API answers {"token": "<jwt>"}; a bearer token in the
// Authorization header is accepted as well.
func (h *HTTP) IssueToken(ctx context.Context, username, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/tokens", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Accept", "application/json")

	var raw map[string]any
	if err := h.sendWithHeaders(req, &raw, func(hdr http.Header) {
		if t := findBearerTokenInHeaders(hdr); t != "" {
			raw = map[string]any{"token": t}
		}
	}); err != nil {
		return "", err
	}

	token := extractAccessToken(raw)
	if token == "" {
		return "", errors.New("no token in response")
	}
	return token, nil
}

// sendWithHeaders is send with a hook that sees the response headers before
// the body is decoded into out.
func (h *HTTP) sendWithHeaders(req *http.Request, out *map[string]any, onHeaders func(http.Header)) error {
	h.debug("request", "method", req.Method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	h.debug("response", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	// Be liberal in what we accept: decode into a map first
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		*out = nil
	}
	if *out == nil || extractAccessToken(*out) == "" {
		onHeaders(resp.Header)
	}
	return nil
}

// parseBearerToken extracts token from a value like "Bearer <token>" case-insensitively.
// Returns the token string without the "Bearer " prefix, or empty string if invalid format.
func parseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 7 {
		return ""
	}
	if strings.EqualFold(v[0:6], "bearer") {
		if rest := strings.TrimSpace(v[6:]); rest != "" {
			return rest
		}
	}
	return ""
}

// findBearerTokenInHeaders looks for a Bearer token in the Authorization header.
func findBearerTokenInHeaders(h http.Header) string {
	for _, v := range h.Values("Authorization") {
		if t := parseBearerToken(v); t != "" {
			return t
		}
	}
	return ""
}

// extractAccessToken extracts the token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result map[string]any) string {
	for _, key := range []string{"token", "access_token", "accessToken"} {
		if v, ok := result[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
