package scan

import (
	"io"

	"chainwalk/internal/binformat"
	"chainwalk/internal/chain"
	"chainwalk/internal/logging"
	"chainwalk/internal/rawfile"
)

var log = logging.For("scan")

// blockSource is the subset of rawfile.Source that StoredBlockStream
// needs; satisfied by *rawfile.Source.
type blockSource interface {
	Next() (rawfile.Data, error)
	Reread(name string) (rawfile.Data, error)
	Refresh() bool
	SeekTo(name string) (rawfile.Data, error)
}

// StoredBlockState is a StoredBlockStream's resumable position: which
// file it was reading and how far into it.
type StoredBlockState struct {
	CurFilename string
	CurOffset   int64
}

// StoredBlockStream iterates over every block recorded in a data
// directory's blk*.dat files, in storage order (which is not necessarily
// chronological or topological order). Height is left at -1 on every
// block it yields.
type StoredBlockStream struct {
	source blockSource

	curBlob     []byte
	curOffset   int64
	curFilename string
}

// NewStoredBlockStream wraps source.
func NewStoredBlockStream(source blockSource) *StoredBlockStream {
	return &StoredBlockStream{source: source}
}

// Next returns the next stored block, or io.EOF once no more are
// available (and, if the underlying source refreshes, none appear after
// rescanning/rereading).
func (s *StoredBlockStream) Next() (*chain.StoredBlock, error) {
	for {
		if s.curOffset >= int64(len(s.curBlob)) {
			data, err := s.source.Next()
			if err != nil {
				return nil, err
			}
			s.curBlob = data.Blob
			s.curFilename = data.Filename
			s.curOffset = 0
		}

		blockOffset := s.curOffset
		payload, frameLen, ok := s.tryFrame(s.curBlob[blockOffset:])
		if !ok {
			if s.source.Refresh() {
				data, err := s.source.Reread(s.curFilename)
				if err != nil {
					return nil, err
				}
				s.curBlob = data.Blob
				payload, frameLen, ok = s.tryFrame(s.curBlob[blockOffset:])
			}
			if !ok {
				// Past the last complete block written to the last file.
				return nil, io.EOF
			}
		}

		block, err := chain.ParseBlock(payload)
		if err != nil {
			return nil, &MalformedFrameError{Filename: s.curFilename, Offset: blockOffset, Reason: err.Error()}
		}
		s.curOffset = blockOffset + frameLen
		return &chain.StoredBlock{
			Block:   block,
			FilePos: chain.FilePos{Filename: s.curFilename, Offset: blockOffset},
		}, nil
	}
}

// State returns this stream's resumable position.
func (s *StoredBlockStream) State() StoredBlockState {
	return StoredBlockState{CurFilename: s.curFilename, CurOffset: s.curOffset}
}

// Resume repositions the stream at a previously-saved state, re-reading
// the file it names (blocks already released are not re-parsed; only the
// file position is restored). Assumes the file has not been truncated or
// rewritten since the state was saved.
func (s *StoredBlockStream) Resume(st StoredBlockState) error {
	if st.CurFilename == "" {
		s.curBlob = nil
		s.curOffset = 0
		s.curFilename = ""
		return nil
	}
	data, err := s.source.SeekTo(st.CurFilename)
	if err != nil {
		return err
	}
	s.curBlob = data.Blob
	s.curFilename = st.CurFilename
	s.curOffset = st.CurOffset
	return nil
}

// tryFrame reads the frame header at the start of buf and checks that its
// full payload is present. ok is false when the frame is not yet
// completely written (the tail of a file a node is actively appending
// to), which is not an error condition.
func (s *StoredBlockStream) tryFrame(buf []byte) (payload []byte, frameLen int64, ok bool) {
	frame, ok := binformat.SplitFrame(buf)
	if !ok {
		return nil, 0, false
	}
	total := binformat.FrameHeaderSize + int(frame.PayloadSize)
	if len(buf) < total {
		return nil, 0, false
	}
	return buf[binformat.FrameHeaderSize:total], int64(total), true
}
