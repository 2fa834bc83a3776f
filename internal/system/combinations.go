package system

// Binomial returns C(n, k), or 0 when k is outside [0, n].
func Binomial(n, k int) int64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := 0; i < k; i++ {
		// exact at every step: the running product of i+1 consecutive
		// integers is divisible by (i+1)!
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}

// Combinations lists every k-subset of {0..n-1} as ascending index slices,
// in lexicographic order.
func Combinations(n, k int) [][]int {
	count := Binomial(n, k)
	if count == 0 {
		return nil
	}
	out := make([][]int, 0, count)
	if k == 0 {
		return append(out, []int{})
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		combo := make([]int, k)
		copy(combo, idx)
		out = append(out, combo)

		// rightmost index that can still move
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
