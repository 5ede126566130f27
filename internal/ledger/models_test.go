package ledger

import "testing"

func TestMinorToAmount(t *testing.T) {
	cases := []struct {
		minor int64
		want  float64
	}{
		{5000, 50.00},
		{2550, 25.50},
		{1, 0.01},
		{0, 0},
	}
	for _, c := range cases {
		if got := MinorToAmount(c.minor); got != c.want {
			t.Errorf("MinorToAmount(%d) = %v, want %v", c.minor, got, c.want)
		}
	}
}
