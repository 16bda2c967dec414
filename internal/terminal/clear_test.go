package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinesToClear(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 2},
		{10, 80, 2},
		{80, 80, 2},
		{81, 80, 3},
		{200, 80, 4},
		{10, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, linesToClear(tt.length, tt.width), "length=%d width=%d", tt.length, tt.width)
	}
}
