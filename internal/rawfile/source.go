package rawfile

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"chainwalk/internal/logging"
)

var log = logging.For("rawfile")

// Data is one file's full contents, ready to be sliced by the caller.
type Data struct {
	Filename string
	Blob     []byte
}

// OnFileFunc is an optional progress-reporting hook, invoked once per file
// as Source begins reading it. index is 0-based; total is the number of
// files known at that point (it can grow as Refresh rescans the
// directory). Source never renders progress itself; this is purely an
// interface point for an outer layer to drive a progress bar.
type OnFileFunc func(name string, index, total int)

// Source reads whole block files, in order, optionally memory-mapping
// them instead of copying them into a Go-managed buffer.
type Source struct {
	lister  *Lister
	useMmap bool
	refresh bool
	onFile  OnFileFunc

	pos int // index into lister.Names() of the next file to read

	// mmap handles stay open until Close: blocks parsed from a file's blob
	// borrow directly from it, so unmapping while any block from that file
	// might still be referenced would be unsafe.
	openMaps []mmap.MMap
}

// Config controls how a Source reads files.
type Config struct {
	DataDir string
	Pattern string // default "blk*.dat" if empty
	UseMmap bool
	Refresh bool // rescan DataDir for new files once the known list is exhausted
	OnFile  OnFileFunc
}

// NewSource constructs a Source from cfg.
func NewSource(cfg Config) *Source {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "blk*.dat"
	}
	return &Source{
		lister:  NewLister(cfg.DataDir, pattern),
		useMmap: cfg.UseMmap,
		refresh: cfg.Refresh,
		onFile:  cfg.OnFile,
	}
}

// Refresh reports whether this source rescans its directory for new files
// once it has read everything currently known.
func (s *Source) Refresh() bool { return s.refresh }

// Next reads the next file in order, rescanning the directory for new
// files if Refresh is enabled and the known list is exhausted. It returns
// io.EOF once there is nothing left to read.
func (s *Source) Next() (Data, error) {
	if s.pos >= len(s.lister.Names()) {
		if len(s.lister.Names()) > 0 && !s.refresh {
			return Data{}, io.EOF
		}
		if _, err := s.lister.Rescan(); err != nil {
			return Data{}, err
		}
		if s.pos >= len(s.lister.Names()) {
			return Data{}, io.EOF
		}
	}
	names := s.lister.Names()
	name := names[s.pos]
	if s.onFile != nil {
		s.onFile(name, s.pos, len(names))
	}
	s.pos++
	return s.read(name)
}

// Reread re-reads a file already yielded by Next, for when a stream
// suspects more data was appended to it since (the tail of the most
// recent blk*.dat file, while a node is actively writing to it).
func (s *Source) Reread(name string) (Data, error) {
	return s.read(name)
}

// SeekTo repositions the source so that the next call to Next() returns
// the file after name, and returns name's own data so a resuming stream
// can pick back up inside it. Used by internal/checkpoint-backed resume.
func (s *Source) SeekTo(name string) (Data, error) {
	names := s.lister.Names()
	idx := indexOf(names, name)
	if idx < 0 {
		if _, err := s.lister.Rescan(); err != nil {
			return Data{}, err
		}
		names = s.lister.Names()
		idx = indexOf(names, name)
		if idx < 0 {
			return Data{}, fmt.Errorf("rawfile: cannot resume: %q not found in %s", name, s.lister.dir)
		}
	}
	s.pos = idx + 1
	return s.read(name)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (s *Source) read(name string) (Data, error) {
	path := s.lister.Path(name)
	log.Debug().Str("file", name).Bool("mmap", s.useMmap).Msg("reading block file")
	if s.useMmap {
		f, err := os.Open(path)
		if err != nil {
			return Data{}, err
		}
		defer f.Close()
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return Data{}, err
		}
		s.openMaps = append(s.openMaps, m)
		return Data{Filename: name, Blob: []byte(m)}, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return Data{Filename: name, Blob: blob}, nil
}

// Close unmaps every mmap'd region this source has opened. Only safe to
// call once nothing parsed from those files is still in use.
func (s *Source) Close() error {
	var firstErr error
	for _, m := range s.openMaps {
		if err := m.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.openMaps = nil
	return firstErr
}
