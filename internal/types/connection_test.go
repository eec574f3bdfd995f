package types

import "testing"

func TestCircleWeight(t *testing.T) {
	cases := []struct {
		name   string
		circle CircleType
		want   float64
	}{
		{name: "inner", circle: CircleInner, want: 1.0},
		{name: "outer", circle: CircleOuter, want: 0.7},
		{name: "universe", circle: CircleUniverse, want: 0.4},
		{name: "unknown_falls_back_to_universe", circle: CircleType("bestie"), want: 0.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CircleWeight(tc.circle); got != tc.want {
				t.Fatalf("CircleWeight(%q)=%v, want %v", tc.circle, got, tc.want)
			}
			conn := Connection{Circle: tc.circle}
			if got := conn.Weight(); got != tc.want {
				t.Fatalf("Connection.Weight()=%v, want %v", got, tc.want)
			}
		})
	}
}
