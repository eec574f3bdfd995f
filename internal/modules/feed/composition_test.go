package feed

import (
	"testing"

	"github.com/opencircle/opencircle-backend/internal/types"
)

func TestBucketTargetsDefaultComposition(t *testing.T) {
	targets := BucketTargets(types.DefaultComposition(), 20)

	want := map[types.Bucket]int{
		types.BucketPersonal:  8,
		types.BucketInterest:  5,
		types.BucketTrending:  3,
		types.BucketDiscovery: 2,
		types.BucketCommunity: 1,
		types.BucketProduct:   1,
	}
	total := 0
	for b, n := range want {
		if targets[b] != n {
			t.Errorf("target[%s]=%d, want %d", b, targets[b], n)
		}
		total += targets[b]
	}
	if total != 20 {
		t.Fatalf("targets sum to %d, want 20", total)
	}
}

func TestBucketTargetsRemainderGoesToLargest(t *testing.T) {
	// first=7 with the default ratios floors to 2+1+1+0+0+0=4; the three
	// leftover slots must all land on personal.
	targets := BucketTargets(types.DefaultComposition(), 7)

	total := 0
	for _, n := range targets {
		total += n
	}
	if total != 7 {
		t.Fatalf("targets sum to %d, want 7", total)
	}
	if targets[types.BucketPersonal] != 5 {
		t.Fatalf("target[personal]=%d, want 5", targets[types.BucketPersonal])
	}
}

func TestBucketTargetsZeroFirst(t *testing.T) {
	targets := BucketTargets(types.DefaultComposition(), 0)
	for b, n := range targets {
		if n != 0 {
			t.Fatalf("target[%s]=%d, want 0", b, n)
		}
	}
}

func TestCompositionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *types.FeedComposition)
		wantErr bool
	}{
		{name: "default_valid", mutate: func(c *types.FeedComposition) {}},
		{
			name: "within_tolerance",
			mutate: func(c *types.FeedComposition) {
				c.PersonalRatio = 0.405
			},
		},
		{
			name: "sum_too_high",
			mutate: func(c *types.FeedComposition) {
				c.PersonalRatio = 0.60
			},
			wantErr: true,
		},
		{
			name: "negative_ratio",
			mutate: func(c *types.FeedComposition) {
				c.PersonalRatio = -0.05
				c.InterestRatio = 0.70
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := types.DefaultComposition()
			tc.mutate(c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate()=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
