package refcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := New()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		assert.Equal(t, code, Normalize(code))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 95, "codes should be effectively unique")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "ABCD2345", "ABCD2345"},
		{"lowercase", "abcd2345", "ABCD2345"},
		{"whitespace", "  ABCD2345\n", "ABCD2345"},
		{"dashes stripped", "ABCD-2345", "ABCD2345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
