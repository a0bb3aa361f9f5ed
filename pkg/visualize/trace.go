package visualize

// Traced algorithms. Each mutates s.arr in place, charges s.counters after a
// step is complete and returns ErrStopped as soon as the run is cancelled.
// Every mutation is a swap or a rotation, so s.arr is a permutation of the
// input after any step.

// quickTrace is Lomuto quicksort with the pivot at the high end.
func (s *stepper) quickTrace(lo, hi int) error {
	if lo >= hi {
		return s.check()
	}

	p, err := s.partition(lo, hi)
	if err != nil {
		return err
	}

	err = s.quickTrace(lo, p-1)
	if err != nil {
		return err
	}

	return s.quickTrace(p+1, hi)
}

func (s *stepper) partition(lo, hi int) (int, error) {
	pivot := s.arr[hi]
	i := lo - 1

	for j := lo; j < hi; j++ {
		err := s.check()
		if err != nil {
			return 0, err
		}

		s.counters.Compare()

		err = s.emit(PhaseCompare, []int{j, hi}, map[string]int{PointerI: i, PointerJ: j, PointerPivot: hi})
		if err != nil {
			return 0, err
		}

		if s.arr[j] >= pivot {
			continue
		}

		i++

		if i == j {
			continue
		}

		s.arr[i], s.arr[j] = s.arr[j], s.arr[i]
		s.counters.Swap(1)

		err = s.emit(PhaseSwap, []int{i, j}, map[string]int{PointerI: i, PointerJ: j, PointerPivot: hi})
		if err != nil {
			return 0, err
		}
	}

	p := i + 1
	if p == hi {
		return p, nil
	}

	s.arr[p], s.arr[hi] = s.arr[hi], s.arr[p]
	s.counters.Swap(1)

	err := s.emit(PhaseSwap, []int{p, hi}, map[string]int{PointerI: i, PointerPivot: p})
	if err != nil {
		return 0, err
	}

	return p, nil
}

// mergeTrace is a stable in-place merge sort over s.arr[lo:hi]. Runs are
// merged by rotating the smaller right element into place, which keeps the
// array a permutation between steps. It splits like sorting.MergeSort, so
// both charge the same comparisons.
func (s *stepper) mergeTrace(lo, hi int) error {
	n := hi - lo
	if n <= 1 {
		return s.check()
	}

	mid := lo + n/2

	err := s.mergeTrace(lo, mid)
	if err != nil {
		return err
	}

	err = s.mergeTrace(mid, hi)
	if err != nil {
		return err
	}

	return s.merge(lo, mid, hi)
}

func (s *stepper) merge(lo, mid, hi int) error {
	left, right := lo, mid

	for left < right && right < hi {
		err := s.check()
		if err != nil {
			return err
		}

		s.counters.Compare()

		err = s.emit(PhaseCompare, []int{left, right},
			map[string]int{PointerLeft: left, PointerRight: right, PointerK: left})
		if err != nil {
			return err
		}

		if s.arr[left] <= s.arr[right] {
			left++

			continue
		}

		v := s.arr[right]
		copy(s.arr[left+1:right+1], s.arr[left:right])
		s.arr[left] = v
		s.counters.Swap(1)

		err = s.emit(PhaseWrite, []int{left},
			map[string]int{PointerLeft: left + 1, PointerRight: right + 1, PointerK: left})
		if err != nil {
			return err
		}

		left++
		right++
	}

	return nil
}

// binaryTrace bisects s.arr, which must be sorted ascending.
func (s *stepper) binaryTrace(target int) (int, bool, error) {
	low, high := 0, len(s.arr)-1

	for low <= high {
		err := s.check()
		if err != nil {
			return -1, false, err
		}

		mid := (low + high) / 2
		s.counters.Compare()

		err = s.emit(PhaseBisect, []int{mid}, map[string]int{PointerLow: low, PointerMid: mid, PointerHigh: high})
		if err != nil {
			return -1, false, err
		}

		switch v := s.arr[mid]; {
		case v == target:
			return mid, true, nil
		case v < target:
			low = mid + 1
		default:
			high = mid - 1
		}
	}

	return -1, false, nil
}
