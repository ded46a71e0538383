package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, name := range Names() {
		data, err := Load("embed:" + name)
		require.NoError(t, err, name)
		assert.Greater(t, len(data), 1000, name)
	}
	_, err := Load("Inter-Regular")
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"sans-serif", false, false, Default},
		{"", true, false, "go-bold"},
		{"Arial", true, true, "go-bolditalic"},
		{"serif", false, true, "lm-roman-italic"},
		{"Latin Modern Roman", true, false, "lm-roman-bold"},
		{"monospace", true, false, "go-mono-bold"},
		{"lm-mono", true, true, "lm-mono-italic"},
	}
	for _, tc := range cases {
		got := Select(tc.family, tc.bold, tc.italic)
		assert.Equal(t, tc.want, got, tc.family)
		_, err := Load(got)
		assert.NoError(t, err)
	}
}
