package game

import "slices"

// TipCeiling is the highest distance ever requested from the hint service.
const TipCeiling = 299

// hardSampleAttempts bounds resampling on hard difficulty before falling back
// to a linear scan for the first unseen distance.
const hardSampleAttempts = 1000

// TipDistance picks the distance to request from the hint service.
//
//   - easy:   half of the closest distance seen so far, at most TipCeiling
//     (149 on the first hint).
//   - medium: one closer than the closest distance seen (299 on the first hint).
//   - hard:   a random distance in [1, TipCeiling-1] not seen yet.
//
// intn returns a uniform integer in [0, n); it is only used on hard.
func TipDistance(d Difficulty, log []Guess, intn func(n int) int) int {
	seen := make([]int, 0, len(log))
	for _, g := range log {
		seen = append(seen, g.Distance)
	}

	switch d {
	case Medium:
		if len(seen) == 0 {
			return TipCeiling
		}
		tip := closest(seen) - 1
		if tip <= 1 {
			return firstUnseen(seen)
		}
		return tip
	case Hard:
		return randomTip(seen, intn)
	default:
		if len(seen) == 0 {
			return TipCeiling / 2
		}
		tip := min(slices.Min(seen), 2*TipCeiling) / 2
		if tip <= 1 {
			return firstUnseen(seen)
		}
		return tip
	}
}

// closest is the minimum seen distance capped at the ceiling.
func closest(seen []int) int {
	return min(slices.Min(append([]int{TipCeiling}, seen...)), TipCeiling)
}

// firstUnseen returns the first distance from 2 upwards that was not seen,
// or the ceiling when every candidate is taken.
func firstUnseen(seen []int) int {
	for tip := 2; tip <= TipCeiling; tip++ {
		if !slices.Contains(seen, tip) {
			return tip
		}
	}
	return TipCeiling
}

func randomTip(seen []int, intn func(n int) int) int {
	for range hardSampleAttempts {
		tip := intn(TipCeiling-1) + 1
		if !slices.Contains(seen, tip) {
			return tip
		}
	}
	return firstUnseen(seen)
}
