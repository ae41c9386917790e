package lib

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

// stubSource serves a fixed number of frames, each filled with its own
// index, then EOF or a configured error.
type stubSource struct {
	mu     sync.Mutex
	limit  int
	err    error
	served int
}

func (s *stubSource) ReadInto(im Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.served >= s.limit {
		if s.err != nil {
			return s.err
		}
		return io.EOF
	}
	for i := range im.Bytes {
		im.Bytes[i] = byte(s.served)
	}
	s.served++
	return nil
}

func TestBufferedReaderServesFramesInOrder(t *testing.T) {
	source := &stubSource{limit: 10}
	bvr := newBufferedReader(source, 2, 2, 3)

	for idx := 0; idx < 10; idx++ {
		im, eof := bvr.GetFrame(idx)
		if eof {
			t.Fatalf("GetFrame(%d) hit EOF, want frame", idx)
		}
		for i, b := range im.Bytes {
			if b != byte(idx) {
				t.Fatalf("frame %d byte %d = %d, want %d", idx, i, b, idx)
			}
		}
		bvr.Discard(idx + 1)
	}

	if _, eof := bvr.GetFrame(10); !eof {
		t.Errorf("GetFrame(10) returned a frame past the end of the stream")
	}
	if err := bvr.Err(); err != nil {
		t.Errorf("Err() = %v after clean EOF, want nil", err)
	}
}

// Ten frames through a pool of two proves consumed frames are recycled
// rather than reallocated.
func TestBufferedReaderRecyclesBuffers(t *testing.T) {
	source := &stubSource{limit: 10}
	bvr := newBufferedReader(source, 2, 2, 2)

	backing := make(map[*byte]bool)
	for idx := 0; idx < 10; idx++ {
		im, eof := bvr.GetFrame(idx)
		if eof {
			t.Fatalf("GetFrame(%d) hit EOF, want frame", idx)
		}
		backing[&im.Bytes[0]] = true
		bvr.Discard(idx + 1)
	}

	if len(backing) > 2 {
		t.Errorf("saw %d distinct frame buffers, want at most the pool size 2", len(backing))
	}
}

func TestBufferedReaderEmptyStream(t *testing.T) {
	source := &stubSource{limit: 0}
	bvr := newBufferedReader(source, 2, 2, 3)

	if _, eof := bvr.GetFrame(0); !eof {
		t.Errorf("GetFrame(0) on an empty stream returned a frame")
	}
	if err := bvr.Err(); err != nil {
		t.Errorf("Err() = %v on an empty stream, want nil", err)
	}
}

func TestBufferedReaderPropagatesError(t *testing.T) {
	source := &stubSource{
		limit: 2,
		err:   fmt.Errorf("%w: read frame: short read", ErrDecodeFailed),
	}
	bvr := newBufferedReader(source, 2, 2, 3)

	for idx := 0; idx < 2; idx++ {
		if _, eof := bvr.GetFrame(idx); eof {
			t.Fatalf("GetFrame(%d) hit EOF before the failure point", idx)
		}
		bvr.Discard(idx + 1)
	}

	if _, eof := bvr.GetFrame(2); !eof {
		t.Fatalf("GetFrame(2) returned a frame after the source failed")
	}
	if err := bvr.Err(); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Err() = %v, want ErrDecodeFailed", err)
	}
}

// Stop must unblock a consumer waiting past the prefetched window.
func TestBufferedReaderStop(t *testing.T) {
	source := &stubSource{limit: 1000}
	bvr := newBufferedReader(source, 2, 2, 2)

	if _, eof := bvr.GetFrame(0); eof {
		t.Fatalf("GetFrame(0) hit EOF, want frame")
	}
	bvr.Stop()

	if _, eof := bvr.GetFrame(500); !eof {
		t.Errorf("GetFrame(500) after Stop returned a frame, want EOF signal")
	}
}

func TestDiscardBelowOffsetIsNoop(t *testing.T) {
	source := &stubSource{limit: 5}
	bvr := newBufferedReader(source, 2, 2, 3)

	if _, eof := bvr.GetFrame(0); eof {
		t.Fatalf("GetFrame(0) hit EOF, want frame")
	}
	bvr.Discard(1)
	bvr.Discard(0)
	bvr.Discard(1)

	im, eof := bvr.GetFrame(1)
	if eof {
		t.Fatalf("GetFrame(1) hit EOF, want frame")
	}
	if im.Bytes[0] != 1 {
		t.Errorf("frame 1 byte 0 = %d, want 1", im.Bytes[0])
	}
}
