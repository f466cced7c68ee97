package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketingValidation(t *testing.T) {
	_, err := NewBucketing(0, 100)
	require.Error(t, err)
	var perr *ZeroOrNegativePeriodError
	assert.ErrorAs(t, err, &perr)

	_, err = NewBucketing(-60, 0)
	require.Error(t, err)
}

// TestBucketRoundTripExample pins the worked example: period 60 anchored
// at 100.
func TestBucketRoundTripExample(t *testing.T) {
	bk, err := NewBucketing(60, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(1), bk.BucketOf(175))
	assert.Equal(t, int64(160), bk.BucketStart(1))
	assert.Equal(t, int64(160), bk.FloorToBucket(175))
	assert.Equal(t, int64(220), bk.CeilToBucket(175))
}

func TestBucketOfBucketStartRoundTrip(t *testing.T) {
	params := []struct{ period, epoch0 int64 }{
		{60, 100}, {1, 0}, {7, -3}, {86400, 12345},
	}
	for _, p := range params {
		bk, err := NewBucketing(p.period, p.epoch0)
		require.NoError(t, err)
		for k := int64(-10); k <= 10; k++ {
			assert.Equal(t, k, bk.BucketOf(bk.BucketStart(k)),
				"period=%d epoch0=%d k=%d", p.period, p.epoch0, k)
		}
	}
}

func TestFloorCeilBracketTimestamp(t *testing.T) {
	bk, err := NewBucketing(60, 100)
	require.NoError(t, err)

	for t0 := int64(-500); t0 <= 500; t0++ {
		floor := bk.FloorToBucket(t0)
		ceil := bk.CeilToBucket(t0)
		assert.LessOrEqual(t, floor, t0)
		assert.GreaterOrEqual(t, ceil, t0)
		if floor == t0 {
			assert.Equal(t, t0, ceil, "on-boundary timestamps floor and ceil to themselves")
		} else {
			assert.Equal(t, bk.Period, ceil-floor)
		}
	}
}

func TestNegativeTimestampsLandInNegativeBuckets(t *testing.T) {
	bk, err := NewBucketing(60, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), bk.BucketOf(-1))
	assert.Equal(t, int64(-1), bk.BucketOf(-60))
	assert.Equal(t, int64(-2), bk.BucketOf(-61))
	assert.Equal(t, int64(0), bk.BucketOf(0))
}

func TestDurationInBuckets(t *testing.T) {
	bk, err := NewBucketing(60, 0)
	require.NoError(t, err)

	n, err := bk.DurationInBuckets(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = bk.DurationInBuckets(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = bk.DurationInBuckets(60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = bk.DurationInBuckets(61)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = bk.DurationInBuckets(-1)
	require.Error(t, err)
}
