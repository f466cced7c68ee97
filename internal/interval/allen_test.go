package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllenClassificationMatrix pins the classification of a=[10,20)
// against a spread of b intervals and checks that exactly one of the
// thirteen predicates fires for each pair.
func TestAllenClassificationMatrix(t *testing.T) {
	a := Interval{Start: 10, End: 20}

	cases := []struct {
		b    Interval
		want Relation
	}{
		{Interval{25, 35}, Before},
		{Interval{20, 30}, Meets},
		{Interval{15, 25}, Overlaps},
		{Interval{10, 25}, Starts},
		{Interval{12, 18}, Contains},
		{Interval{15, 20}, FinishedBy},
		{Interval{10, 20}, Equals},
		{Interval{10, 15}, StartedBy},
		{Interval{5, 25}, During},
		{Interval{5, 20}, Finishes},
		{Interval{5, 15}, OverlappedBy},
		{Interval{0, 10}, MetBy},
		{Interval{0, 5}, After},
	}

	for _, tc := range cases {
		got, err := Classify(a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "classify([10,20) vs [%d,%d))", tc.b.Start, tc.b.End)

		fired := 0
		for _, r := range AllRelations {
			if r.Holds(a, tc.b) {
				fired++
			}
		}
		assert.Equal(t, 1, fired, "exactly one relation must hold for [10,20) vs [%d,%d)", tc.b.Start, tc.b.End)
	}
}

// TestAllenInverseConsistency checks each relation against its inverse
// under argument swap across a grid of endpoint combinations.
func TestAllenInverseConsistency(t *testing.T) {
	inverses := map[Relation]Relation{
		Before:   After,
		Meets:    MetBy,
		Overlaps: OverlappedBy,
		Starts:   StartedBy,
		During:   Contains,
		Finishes: FinishedBy,
		Equals:   Equals,
	}

	bounds := []int64{0, 5, 10, 15, 20}
	var ivs []Interval
	for _, s := range bounds {
		for _, e := range bounds {
			if s < e {
				ivs = append(ivs, Interval{Start: s, End: e})
			}
		}
	}

	for _, a := range ivs {
		for _, b := range ivs {
			for fwd, inv := range inverses {
				assert.Equal(t, fwd.Holds(a, b), inv.Holds(b, a),
					"%v(a,b) must equal %v(b,a) for a=%v b=%v", fwd, inv, a, b)
			}
			fired := 0
			for _, r := range AllRelations {
				if r.Holds(a, b) {
					fired++
				}
			}
			assert.Equal(t, 1, fired, "exactly one relation for a=%v b=%v", a, b)
		}
	}
}

func TestClassifyRejectsDegenerate(t *testing.T) {
	_, err := Classify(Interval{5, 5}, Interval{0, 10})
	require.Error(t, err)
	var ivErr *InvalidIntervalError
	assert.ErrorAs(t, err, &ivErr)
}
