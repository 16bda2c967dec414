package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "myblog/client/internal/errors"
)

// Claims is the payload the blog API puts in the tokens it issues.
//
// Claims are decoded WITHOUT signature verification. They are good enough to
// greet the user or pick which posts are theirs; the server re-checks the
// token on every authorized request and nothing here grants access.
//
// Only user_id is required. Name, ExpiresAt and IssuedAt are hints; a value
// of the wrong type leaves them zero.
type Claims struct {
	UserID    int64
	Name      string
	ExpiresAt *jwt.NumericDate
	IssuedAt  *jwt.NumericDate
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims extracts the payload of a three-segment token.
// Any shape problem (segment count, Base64, JSON, missing user_id) is a
// MalformedCredential error; nothing is defaulted.
func DecodeClaims(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, apperrors.New(apperrors.MalformedCredential,
			fmt.Sprintf("token has %d segments, want 3", len(parts)))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedCredential, "payload is not valid base64", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedCredential, "payload is not a JSON object", err)
	}
	if fields == nil {
		return nil, apperrors.New(apperrors.MalformedCredential, "payload is not a JSON object")
	}

	uid, err := userIDFrom(fields["user_id"])
	if err != nil {
		return nil, err
	}

	c := &Claims{UserID: uid}
	_ = json.Unmarshal(fields["name"], &c.Name)
	c.ExpiresAt = numericDate(fields["exp"])
	c.IssuedAt = numericDate(fields["iat"])
	return c, nil
}

// userIDFrom accepts any JSON number with an integral value, so 7 and 7.0
// are the same user.
func userIDFrom(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, apperrors.New(apperrors.MalformedCredential, "payload has no user_id")
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, apperrors.New(apperrors.MalformedCredential, "user_id is not a number")
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, apperrors.Wrap(apperrors.MalformedCredential, "user_id is not a number", err)
	}
	if id, err := n.Int64(); err == nil {
		return id, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, apperrors.New(apperrors.MalformedCredential,
			fmt.Sprintf("user_id %s is not an integer", n))
	}
	return int64(f), nil
}

func numericDate(raw json.RawMessage) *jwt.NumericDate {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var d jwt.NumericDate
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil
	}
	return &d
}

// DecodeUserID returns the user_id claim of token.
func DecodeUserID(token string) (int64, error) {
	c, err := DecodeClaims(token)
	if err != nil {
		return 0, err
	}
	return c.UserID, nil
}

// decodeSegment accepts the JWT URL alphabet (padded or not) and falls back
// to the standard alphabet for tokens produced by plain base64 encoders.
func decodeSegment(seg string) ([]byte, error) {
	b, err := segmentParser.DecodeSegment(seg)
	if err == nil {
		return b, nil
	}
	if b, stdErr := base64.StdEncoding.DecodeString(seg); stdErr == nil {
		return b, nil
	}
	if b, stdErr := base64.RawStdEncoding.DecodeString(seg); stdErr == nil {
		return b, nil
	}
	return nil, err
}
