package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateToken(t *testing.T) {
	cases := []struct {
		date   time.Time
		expect string
	}{
		{time.Date(2025, time.May, 3, 12, 0, 0, 0, Location), "2025123"},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, Location), "2025001"},
		{time.Date(2024, time.December, 31, 23, 0, 0, 0, Location), "2024366"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, DateToken(test.date))
	}
}
