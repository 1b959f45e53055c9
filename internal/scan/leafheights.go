package scan

import "github.com/google/btree"

// leafHeights tracks the height of every leaf in the fork tree as a
// multiset: more than one leaf can share a height, so a plain ordered set
// of distinct heights is paired with a count per height. The btree gives
// O(log n) access to the highest and second-highest distinct heights,
// which is all the height-safety-margin check needs.
type leafHeights struct {
	counts map[int]int
	tree   *btree.BTreeG[int]
}

func newLeafHeights(seed int) *leafHeights {
	lh := newEmptyLeafHeights()
	lh.Add(seed)
	return lh
}

func newEmptyLeafHeights() *leafHeights {
	return &leafHeights{
		counts: make(map[int]int),
		tree:   btree.NewG(32, func(a, b int) bool { return a < b }),
	}
}

func (lh *leafHeights) Add(h int) {
	lh.counts[h]++
	if lh.counts[h] == 1 {
		lh.tree.ReplaceOrInsert(h)
	}
}

func (lh *leafHeights) Remove(h int) {
	lh.counts[h]--
	if lh.counts[h] <= 0 {
		delete(lh.counts, h)
		lh.tree.Delete(h)
	}
}

// Max is the highest leaf height currently present.
func (lh *leafHeights) Max() int {
	v, _ := lh.tree.Max()
	return v
}

// SecondMax is the height at logical position -2 in a list of every
// leaf's height, sorted ascending (duplicates included). If the maximum
// height has more than one leaf, that same height is its own second-
// highest entry. Otherwise it's the next distinct height down. fallback
// is used only when there is a single leaf in the whole tree.
func (lh *leafHeights) SecondMax(fallback int) int {
	maxH := lh.Max()
	if lh.counts[maxH] >= 2 {
		return maxH
	}
	seen := 0
	second := fallback
	found := false
	lh.tree.Descend(func(h int) bool {
		seen++
		if seen == 2 {
			second = h
			found = true
			return false
		}
		return true
	})
	if !found {
		return fallback
	}
	return second
}
