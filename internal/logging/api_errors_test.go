package logging

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		status int
		want   APIErrorType
	}{
		{400, APIErrorValidation},
		{401, APIErrorAuth},
		{403, APIErrorForbidden},
		{404, APIErrorNotFound},
		{500, APIErrorServer},
		{503, APIErrorServer},
		{409, APIErrorUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAPIError(tt.status), "status %d", tt.status)
	}
}

func TestFormatAPIError(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	out := FormatAPIError(401, "token=abc.def.ghi expired")
	assert.Contains(t, out, "did not accept your credentials")
	assert.Contains(t, out, "myblog login")
	assert.Contains(t, out, "token=***")
	assert.NotContains(t, out, "abc.def.ghi")

	out = FormatAPIError(403, "")
	assert.Contains(t, out, "Only the author")
	assert.NotContains(t, out, "Details")
}
