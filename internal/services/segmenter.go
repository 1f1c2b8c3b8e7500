package services

import "github.com/czaja307/TravelPlanner-backend/internal/domain"

// Segment is one capacity-bounded batch for the optimizer: a contiguous
// sub-list of the requested places plus the day range it covers.
type Segment struct {
	Places    []domain.PlaceRequest
	DayOffset int // days preceding this segment, a multiple of the slot cap
	Days      int // day-slots in this segment, at most the slot cap
}

// BuildSegments partitions the place list and the day range into batches
// the optimizer can accept (at most maxSlots vehicles per call).
//
// The segment count is driven by the day range alone; the place list is
// then split evenly across that many segments. The two dimensions are
// deliberately coupled: a place chunk does not necessarily fill its
// segment's days, and the optimizer decides the actual day assignment
// within each batch.
//
// Guarantees: segments cover every input place exactly once, in the
// original order, and day offsets are contiguous multiples of maxSlots.
func BuildSegments(requests []domain.PlaceRequest, daysCount, maxSlots int) []Segment {
	numSegments := ceilDiv(daysCount, maxSlots)
	if numSegments < 1 {
		numSegments = 1
	}

	segmentSize := ceilDiv(len(requests), numSegments)

	segments := make([]Segment, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		lo := i * segmentSize
		if lo > len(requests) {
			lo = len(requests)
		}
		hi := lo + segmentSize
		if hi > len(requests) {
			hi = len(requests)
		}

		dayOffset := i * maxSlots
		days := daysCount - dayOffset
		if days > maxSlots {
			days = maxSlots
		}

		segments = append(segments, Segment{
			Places:    requests[lo:hi],
			DayOffset: dayOffset,
			Days:      days,
		})
	}

	return segments
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
