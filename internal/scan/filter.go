package scan

import (
	"io"

	"chainwalk/internal/chain"
)

// Range is an inclusive start / exclusive stop pair. A nil pointer leaves
// that side unbounded.
type Range struct {
	Start, Stop *int64
}

// HashRange bounds a dimension that is not linearly ordered (the chain of
// block hashes): Start and Stop, if set, must match exactly.
type HashRange struct {
	Start, Stop *chain.Hash
}

// Filter is the start/stop criteria applied to a block stream. Start is
// inclusive, Stop is exclusive. Block timestamp is only approximately
// ordered, so a time-based Start/Stop may behave surprisingly close to
// fork boundaries; height and hash based bounds do not have this problem.
type Filter struct {
	Height *Range
	Time   *Range
	Hash   *HashRange
}

// working wraps a Filter with the started/ended state needed to apply it
// across a stream of blocks.
type working struct {
	filter  Filter
	started bool
	ended   bool
}

func newWorking(f *Filter) *working {
	if f == nil {
		return nil
	}
	return &working{filter: *f}
}

// check reports whether block should be included. Once the filter has
// decided to stop, every subsequent call returns io.EOF.
func (w *working) check(block *chain.Block) (include bool, err error) {
	if w.ended {
		return false, io.EOF
	}
	include, err = w.checkOnce(block)
	if err == io.EOF {
		w.ended = true
		return false, io.EOF
	}
	if include {
		w.started = true
	}
	return include, nil
}

func (w *working) checkOnce(block *chain.Block) (bool, error) {
	f := w.filter
	if f.Height != nil {
		h := int64(block.Height())
		ok, err := checkOrdered(h, f.Height, w.started)
		if !ok || err != nil {
			return ok, err
		}
	}
	if f.Time != nil {
		ok, err := checkOrdered(int64(block.Timestamp()), f.Time, w.started)
		if !ok || err != nil {
			return ok, err
		}
	}
	if f.Hash != nil {
		ok, err := checkHash(block.BlockHash(), f.Hash, w.started)
		if !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

func checkOrdered(value int64, r *Range, started bool) (bool, error) {
	if r.Start != nil && !started {
		if value < *r.Start {
			return false, nil
		}
	}
	if r.Stop != nil {
		if value >= *r.Stop {
			return false, io.EOF
		}
	}
	return true, nil
}

func checkHash(value chain.Hash, r *HashRange, started bool) (bool, error) {
	if r.Start != nil && !started {
		if value != *r.Start {
			return false, nil
		}
	}
	if r.Stop != nil {
		if value == *r.Stop {
			return false, io.EOF
		}
	}
	return true, nil
}
