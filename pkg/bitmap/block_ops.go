package bitmap

import "math/bits"

// combineBlocks produces a new block holding the result of op over two
// blocks. Each encoding pair gets a specialized routine: same-encoding
// inputs merge directly, mixed pairs either filter the array side or widen
// the run side to the packed encoding first. The result is left in whatever
// encoding the routine produced; callers re-encode via optimize.
func combineBlocks(op setOp, a, b *block) *block {
	switch {
	case a.kind == typeArray && b.kind == typeArray:
		arr := mergeSorted(op, a.array, b.array)
		return &block{kind: typeArray, card: len(arr), array: arr}

	case a.kind == typeRuns && b.kind == typeRuns:
		card, runs := foldRuns(op, a.runs, b.runs)
		return &block{kind: typeRuns, card: card, runs: runs}

	case a.kind == typePacked && b.kind == typePacked:
		return combinePacked(op, a.words, b.words)

	case a.kind == typeArray:
		// b is packed or run-encoded; both test membership in O(log) or O(1).
		switch op {
		case opAnd:
			return filterArray(a.array, b, true)
		case opAndNot:
			return filterArray(a.array, b, false)
		default:
			return combinePacked(op, asPacked(a).words, asPacked(b).words)
		}

	case b.kind == typeArray:
		switch op {
		case opAnd:
			return filterArray(b.array, a, true)
		default:
			return combinePacked(op, asPacked(a).words, asPacked(b).words)
		}

	default:
		// Run-encoded against packed: widen the run side.
		return combinePacked(op, asPacked(a).words, asPacked(b).words)
	}
}

// asPacked returns bl itself when already packed, or a packed copy.
func asPacked(bl *block) *block {
	if bl.kind == typePacked {
		return bl
	}
	dup := bl.clone()
	dup.toPacked()
	return dup
}

// filterArray keeps the elements of arr whose membership in other matches
// want, collecting into a fresh array block.
func filterArray(arr []uint16, other *block, want bool) *block {
	out := make([]uint16, 0, len(arr))
	for _, lo := range arr {
		if other.contains(lo) == want {
			out = append(out, lo)
		}
	}
	return &block{kind: typeArray, card: len(out), array: out}
}

// combinePacked merges two packed word slices word by word, accumulating
// the population of the result.
func combinePacked(op setOp, lhs, rhs []uint64) *block {
	words := make([]uint64, PackedWords)
	card := 0
	switch op {
	case opAnd:
		for i := range words {
			words[i] = lhs[i] & rhs[i]
			card += bits.OnesCount64(words[i])
		}
	case opOr:
		for i := range words {
			words[i] = lhs[i] | rhs[i]
			card += bits.OnesCount64(words[i])
		}
	case opAndNot:
		for i := range words {
			words[i] = lhs[i] &^ rhs[i]
			card += bits.OnesCount64(words[i])
		}
	default:
		for i := range words {
			words[i] = lhs[i] ^ rhs[i]
			card += bits.OnesCount64(words[i])
		}
	}
	return &block{kind: typePacked, card: card, words: words}
}
