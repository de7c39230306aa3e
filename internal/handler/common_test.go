package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeatNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12A", "12A", true},
		{"12a", "12A", true},
		{" 3c ", "3C", true},
		{"101K", "101K", true},
		{"A12", "", false},
		{"12", "", false},
		{"12AB", "", false},
		{"0A", "", false},
		{"", "", false},
		{"-1A", "", false},
	}
	for _, tc := range cases {
		got, err := normalizeSeatNumber(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
