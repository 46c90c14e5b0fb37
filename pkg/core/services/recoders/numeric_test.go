package recoders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	v, ok := ParseNumeric(" 1012345.5 ")
	assert.True(t, ok)
	assert.Equal(t, 1012345.5, v)

	for _, s := range []string{"", "  ", "abc", "NaN", "Inf", "1,000"} {
		_, ok := ParseNumeric(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"45", 45, true},
		{"45.9", 45, true},
		{"-3.2", -3, true},
		{"1e2", 100, true},
		{"9999999999", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInteger(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
