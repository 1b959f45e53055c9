// Package rawfile enumerates and reads the blk*.dat files a node writes,
// handing back whole-file buffers that downstream stages slice without
// copying.
package rawfile

import (
	"path/filepath"
	"sort"
)

// Lister enumerates a data directory's block files in the order a node
// writes them (blk00000.dat, blk00001.dat, ...), which sorts correctly as
// plain lexicographic string order.
type Lister struct {
	dir     string
	pattern string

	names []string // already-discovered names, sorted
}

// NewLister returns a Lister over dir, matching files against pattern
// (e.g. "blk*.dat").
func NewLister(dir, pattern string) *Lister {
	return &Lister{dir: dir, pattern: pattern}
}

// Rescan lists dir again and merges in any newly-appeared files, keeping
// names sorted. It returns the names that are new since the last scan.
func (l *Lister) Rescan() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, l.pattern))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	sort.Strings(names)

	known := make(map[string]bool, len(l.names))
	for _, n := range l.names {
		known[n] = true
	}
	var fresh []string
	for _, n := range names {
		if !known[n] {
			fresh = append(fresh, n)
		}
	}
	l.names = names
	return fresh, nil
}

// Names returns every name discovered so far, sorted.
func (l *Lister) Names() []string { return l.names }

// Path joins the data directory with a file name.
func (l *Lister) Path(name string) string { return filepath.Join(l.dir, name) }
