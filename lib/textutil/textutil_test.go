package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"", ""},
		{"   ", ""},
		{"Tomato soup", "Tomato soup"},
		{"Tomato\u00a0soup", "Tomato soup"},
		{"To\u00admato\u200b soup\ufeff", "Tomato soup"},
		{"\u200eSchnitzel\u200f", "Schnitzel"},
		{"  a \t b\n\nc  ", "a b c"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, Normalize(test.input))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  K\u00e4se\u00adsp\u00e4tzle  mit R\u00f6stzwiebeln ",
		"plain",
		"\u200b\ufeff",
		"a  b   c",
	}
	for _, s := range inputs {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once))
	}
}

func TestCanonicalKey(t *testing.T) {
	require.Equal(t, "tomato soup", CanonicalKey("  Tomato Soup "))
	require.Equal(t, "", CanonicalKey("   "))
}
