package interval

import "fmt"

// ZeroOrNegativePeriodError reports a bucketing period <= 0.
type ZeroOrNegativePeriodError struct {
	Got int64
}

func (e *ZeroOrNegativePeriodError) Error() string {
	return fmt.Sprintf("bucketing period must be positive, got %d", e.Got)
}

// Bucketing partitions the integer timeline into equal-width buckets of
// Period anchored at Epoch0. Bucket k covers
// [Epoch0 + k*Period, Epoch0 + (k+1)*Period); negative timestamps land in
// negative buckets via Euclidean floor division.
type Bucketing struct {
	Period int64
	Epoch0 int64
}

// NewBucketing validates the period and constructs a Bucketing.
func NewBucketing(period, epoch0 int64) (Bucketing, error) {
	if period <= 0 {
		return Bucketing{}, &ZeroOrNegativePeriodError{Got: period}
	}
	return Bucketing{Period: period, Epoch0: epoch0}, nil
}

// floorDiv is Euclidean floor division: the quotient rounds toward
// negative infinity, so floorDiv(-1, 60) == -1, not 0.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// BucketOf returns the index of the bucket containing t.
func (bk Bucketing) BucketOf(t int64) int64 {
	return floorDiv(t-bk.Epoch0, bk.Period)
}

// BucketStart returns the inclusive start of bucket k.
func (bk Bucketing) BucketStart(k int64) int64 {
	return bk.Epoch0 + k*bk.Period
}

// FloorToBucket rounds t down to its bucket's start.
func (bk Bucketing) FloorToBucket(t int64) int64 {
	return bk.BucketStart(bk.BucketOf(t))
}

// CeilToBucket rounds t up to the next bucket boundary, returning t itself
// when it already sits on one.
func (bk Bucketing) CeilToBucket(t int64) int64 {
	if bk.FloorToBucket(t) == t {
		return t
	}
	return bk.BucketStart(bk.BucketOf(t) + 1)
}

// DurationInBuckets returns how many whole buckets are needed to cover a
// non-negative duration d, rounding up.
func (bk Bucketing) DurationInBuckets(d int64) (int64, error) {
	if d < 0 {
		return 0, fmt.Errorf("duration must be non-negative, got %d", d)
	}
	return floorDiv(d+bk.Period-1, bk.Period), nil
}
