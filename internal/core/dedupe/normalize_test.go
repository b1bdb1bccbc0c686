package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAlias(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice Smith", "alicesmith"},
		{"  Alice\tSmith\n", "alicesmith"},
		{"刘雪丽", "刘雪丽"},
		{"刘　雪丽", "刘雪丽"},             // full-width space (U+3000)
		{"\uFEFF王大伟", "王大伟"},        // BOM
		{"老\u200B王", "老王"},           // zero-width space
		{"MIXED case Name", "mixedcasename"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeAlias(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeAlias_Idempotent(t *testing.T) {
	inputs := []string{"Alice Smith", "刘　雪丽", "\uFEFF老王 ", "", "a b c"}
	for _, s := range inputs {
		once := NormalizeAlias(s)
		assert.Equal(t, once, NormalizeAlias(once), "input %q", s)
	}
}
