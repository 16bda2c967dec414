package session

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "myblog/client/internal/errors"
)

func TestDecodeUserIDRoundTrip(t *testing.T) {
	uid, err := DecodeUserID(rawToken(`{"user_id": 7}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)
}

func TestDecodeClaimsAcceptsEncodings(t *testing.T) {
	payload := []byte(`{"user_id": 12, "name": "bob?>"}`)
	tests := []struct {
		name string
		seg  string
	}{
		{name: "raw url", seg: base64.RawURLEncoding.EncodeToString(payload)},
		{name: "padded url", seg: base64.URLEncoding.EncodeToString(payload)},
		{name: "standard alphabet", seg: base64.StdEncoding.EncodeToString(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeClaims("h." + tt.seg + ".s")
			require.NoError(t, err)
			assert.Equal(t, int64(12), c.UserID)
			assert.Equal(t, "bob?>", c.Name)
		})
	}
}

func TestDecodeClaimsToleratesOtherClaims(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int64
	}{
		{name: "numeric aud", payload: `{"user_id": 7, "aud": 123}`, want: 7},
		{name: "numeric sub", payload: `{"user_id": 7, "sub": 42}`, want: 7},
		{name: "string exp", payload: `{"user_id": 7, "exp": "tomorrow"}`, want: 7},
		{name: "object name", payload: `{"user_id": 7, "name": {"first": "a"}}`, want: 7},
		{name: "float user_id", payload: `{"user_id": 7.0}`, want: 7},
		{name: "exponent user_id", payload: `{"user_id": 1e2}`, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := DecodeUserID(rawToken(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, uid)
		})
	}
}

func TestDecodeClaimsHints(t *testing.T) {
	c, err := DecodeClaims(rawToken(`{"user_id": 3, "name": "carol", "exp": 1700000000, "iat": "soon"}`))
	require.NoError(t, err)
	assert.Equal(t, "carol", c.Name)
	require.NotNil(t, c.ExpiresAt)
	assert.Equal(t, int64(1700000000), c.ExpiresAt.Unix())
	assert.Nil(t, c.IssuedAt)

	c, err = DecodeClaims(rawToken(`{"user_id": 3, "name": 5, "exp": null}`))
	require.NoError(t, err)
	assert.Empty(t, c.Name)
	assert.Nil(t, c.ExpiresAt)
}

func TestDecodeClaimsRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "a.b"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "empty", token: ""},
		{name: "invalid base64", token: "h.!!!!.s"},
		{name: "valid base64 but not json", token: rawToken("hello world")},
		{name: "json but not an object", token: rawToken(`[1,2,3]`)},
		{name: "missing user_id", token: rawToken(`{"name": "alice"}`)},
		{name: "null user_id", token: rawToken(`{"user_id": null}`)},
		{name: "string user_id", token: rawToken(`{"user_id": "7"}`)},
		{name: "fractional user_id", token: rawToken(`{"user_id": 7.5}`)},
		{name: "bool user_id", token: rawToken(`{"user_id": true}`)},
		{name: "null payload", token: rawToken(`null`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := DecodeUserID(tt.token)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.MalformedCredential), "got %v", err)
			assert.Zero(t, uid)
		})
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	tok := signedToken(t, 99)
	tampered := tok[:len(tok)-4] + "AAAA"

	uid, err := DecodeUserID(tampered)
	require.NoError(t, err)
	assert.Equal(t, int64(99), uid)
}
