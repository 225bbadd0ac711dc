package bitmap

import "sort"

// runInsert sets lo in a run-encoded block, merging with adjacent runs so
// the list stays non-overlapping and non-adjacent.
func (b *block) runInsert(lo uint16) bool {
	i := b.runSearch(lo)
	if i >= 0 && lo <= b.runs[i].end {
		return false
	}

	joinLeft := i >= 0 && int(b.runs[i].end)+1 == int(lo)
	joinRight := i+1 < len(b.runs) && int(b.runs[i+1].start) == int(lo)+1

	switch {
	case joinLeft && joinRight:
		b.runs[i].end = b.runs[i+1].end
		b.runs = append(b.runs[:i+1], b.runs[i+2:]...)
	case joinLeft:
		b.runs[i].end = lo
	case joinRight:
		b.runs[i+1].start = lo
	default:
		b.runs = append(b.runs, interval{})
		copy(b.runs[i+2:], b.runs[i+1:])
		b.runs[i+1] = interval{lo, lo}
	}
	b.card++
	return true
}

// runRemove clears lo in a run-encoded block, splitting its run if the
// position is interior.
func (b *block) runRemove(lo uint16) bool {
	i := b.runSearch(lo)
	if i < 0 || lo > b.runs[i].end {
		return false
	}

	r := b.runs[i]
	switch {
	case r.start == lo && r.end == lo:
		b.runs = append(b.runs[:i], b.runs[i+1:]...)
	case r.start == lo:
		b.runs[i].start++
	case r.end == lo:
		b.runs[i].end--
	default:
		b.runs = append(b.runs, interval{})
		copy(b.runs[i+2:], b.runs[i+1:])
		b.runs[i] = interval{r.start, lo - 1}
		b.runs[i+1] = interval{lo + 1, r.end}
	}
	b.card--
	return true
}

// insertRange sets the inclusive range [lo, hi] and returns the number of
// previously clear positions.
func (b *block) insertRange(lo, hi uint16) int {
	span := int(hi) - int(lo) + 1

	switch b.kind {
	case typePacked:
		added := span - onesInRangePacked(b.words, lo, hi)
		setRangePacked(b.words, lo, hi)
		b.card += added
		return added

	case typeArray:
		if b.card+span > ArrayThreshold {
			b.toPacked()
			return b.insertRange(lo, hi)
		}
		i := sort.Search(len(b.array), func(k int) bool { return b.array[k] >= lo })
		j := sort.Search(len(b.array), func(k int) bool { return b.array[k] > hi })
		merged := make([]uint16, 0, i+span+len(b.array)-j)
		merged = append(merged, b.array[:i]...)
		for v := int(lo); v <= int(hi); v++ {
			merged = append(merged, uint16(v))
		}
		merged = append(merged, b.array[j:]...)
		added := span - (j - i)
		b.array = merged
		b.card += added
		return added

	default:
		// Runs overlapping or adjacent to [lo, hi] collapse into one.
		i := sort.Search(len(b.runs), func(k int) bool { return int(b.runs[k].end)+1 >= int(lo) })
		j := sort.Search(len(b.runs), func(k int) bool { return int(b.runs[k].start) > int(hi)+1 })
		if i == j {
			b.runs = append(b.runs, interval{})
			copy(b.runs[i+1:], b.runs[i:])
			b.runs[i] = interval{lo, hi}
			b.card += span
			return span
		}
		start, end := lo, hi
		old := 0
		for k := i; k < j; k++ {
			old += b.runs[k].length()
			if b.runs[k].start < start {
				start = b.runs[k].start
			}
			if b.runs[k].end > end {
				end = b.runs[k].end
			}
		}
		b.runs[i] = interval{start, end}
		b.runs = append(b.runs[:i+1], b.runs[j:]...)
		added := int(end) - int(start) + 1 - old
		b.card += added
		return added
	}
}

// removeRange clears the inclusive range [lo, hi] and returns the number of
// previously set positions.
func (b *block) removeRange(lo, hi uint16) int {
	switch b.kind {
	case typePacked:
		removed := onesInRangePacked(b.words, lo, hi)
		clearRangePacked(b.words, lo, hi)
		b.card -= removed
		return removed

	case typeArray:
		i := sort.Search(len(b.array), func(k int) bool { return b.array[k] >= lo })
		j := sort.Search(len(b.array), func(k int) bool { return b.array[k] > hi })
		b.array = append(b.array[:i], b.array[j:]...)
		removed := j - i
		b.card -= removed
		return removed

	default:
		i := sort.Search(len(b.runs), func(k int) bool { return int(b.runs[k].end) >= int(lo) })
		j := sort.Search(len(b.runs), func(k int) bool { return int(b.runs[k].start) > int(hi) })
		if i == j {
			return 0
		}
		removed := 0
		var keep []interval
		for k := i; k < j; k++ {
			removed += b.runs[k].length()
			if b.runs[k].start < lo {
				keep = append(keep, interval{b.runs[k].start, lo - 1})
				removed -= int(lo) - int(b.runs[k].start)
			}
			if b.runs[k].end > hi {
				keep = append(keep, interval{hi + 1, b.runs[k].end})
				removed -= int(b.runs[k].end) - int(hi)
			}
		}
		tail := append(keep, b.runs[j:]...)
		b.runs = append(b.runs[:i], tail...)
		b.card -= removed
		return removed
	}
}

// foldRuns sweeps the merged boundary sequences of two run lists. Each
// half-open stretch between consecutive boundaries belongs to neither, one,
// or both inputs; the stretches an operation keeps are stitched back into
// maximal inclusive runs. Linear in the total run count.
func foldRuns(op setOp, lhs, rhs []interval) (int, []interval) {
	keep := func(inL, inR bool) bool {
		switch op {
		case opAnd:
			return inL && inR
		case opOr:
			return inL || inR
		case opAndNot:
			return inL && !inR
		default:
			return inL != inR
		}
	}

	// Boundary k of a side is the open edge of run k/2 when even, and the
	// (exclusive) close edge when odd.
	edge := func(runs []interval, k int) int {
		if k%2 == 0 {
			return int(runs[k/2].start)
		}
		return int(runs[k/2].end) + 1
	}

	var (
		out        []interval
		card       int
		inL, inR   bool
		prev       int
		i, j       int
		lEnd, rEnd = 2 * len(lhs), 2 * len(rhs)
	)

	emit := func(upto int) {
		if upto <= prev || !keep(inL, inR) {
			return
		}
		card += upto - prev
		start, end := uint16(prev), uint16(upto-1)
		if n := len(out); n > 0 && int(out[n-1].end)+1 == int(start) {
			out[n-1].end = end
			return
		}
		out = append(out, interval{start, end})
	}

	for i < lEnd || j < rEnd {
		var pos int
		takeL := j >= rEnd
		if !takeL && i < lEnd {
			takeL = edge(lhs, i) <= edge(rhs, j)
		}
		if takeL {
			pos = edge(lhs, i)
			emit(pos)
			inL = i%2 == 0
			i++
		} else {
			pos = edge(rhs, j)
			emit(pos)
			inR = j%2 == 0
			j++
		}
		prev = pos
	}
	return card, out
}
