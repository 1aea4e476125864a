// utils/identifier_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abcd-1234", true},
		{"yt7u-eiyg", true},
		{"ABCD-efgh", true},
		{"abcd1234", false},
		{"ab-cd", false},
		{"abcde-1234", false},
		{"abcd-12345", false},
		{" abcd-1234", false},
		{"abcd-1234/", false},
		{"ab_d-1234", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidIdentifier(tt.in))
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "Yt7u-eiyg", NormalizeIdentifier("  Yt7u-eiyg\t"))
}
