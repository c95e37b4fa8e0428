package algo

import (
	"math"
	"sort"
)

// Apportion splits total integer units across keys in proportion to weights
// using the largest-remainder method. The result sums to exactly total when
// any weight is positive, and to 0 otherwise. Remainder ties go to the
// lexicographically smaller key.
func Apportion(weights map[string]float64, total int) map[string]int {
	out := make(map[string]int, len(weights))
	keys := make([]string, 0, len(weights))
	sum := 0.0
	for k, w := range weights {
		keys = append(keys, k)
		sum += SafeNonNegative(w)
	}
	sort.Strings(keys)

	if sum == 0 || math.IsInf(sum, 0) || total <= 0 {
		for _, k := range keys {
			out[k] = 0
		}
		return out
	}

	type share struct {
		key       string
		remainder float64
	}
	shares := make([]share, 0, len(keys))
	assigned := 0
	for _, k := range keys {
		exact := float64(total) * SafeNonNegative(weights[k]) / sum
		floor := math.Floor(exact)
		out[k] = int(floor)
		assigned += int(floor)
		if exact > 0 {
			shares = append(shares, share{key: k, remainder: exact - floor})
		}
	}

	// Stable sort keeps key order for equal remainders.
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})
	for i := 0; assigned < total && len(shares) > 0; i = (i + 1) % len(shares) {
		out[shares[i].key]++
		assigned++
	}
	return out
}
