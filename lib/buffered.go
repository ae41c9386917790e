package lib

import (
	"io"
	"sync"
)

// frameSource is the part of VideoReader the prefetcher uses.
type frameSource interface {
	ReadInto(im Image) error
}

// BufferedVideoReader decodes ahead of the consumer on a background
// goroutine, keeping a bounded pool of frames in flight. Consumed
// frames go back to the pool through Discard, so a steady pipeline
// allocates nothing per frame on the read side.
type BufferedVideoReader struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buffer []Image
	offset int
	extras []Image
	done   bool
	err    error
}

func NewBufferedVideoReader(reader *VideoReader, size int) *BufferedVideoReader {
	return newBufferedReader(reader, reader.Width, reader.Height, size)
}

func newBufferedReader(source frameSource, width, height, size int) *BufferedVideoReader {
	bvr := &BufferedVideoReader{}
	bvr.cond = sync.NewCond(&bvr.mu)
	for i := 0; i < size; i++ {
		bvr.extras = append(bvr.extras, NewImage(width, height))
	}

	go func() {
		bvr.mu.Lock()
		for {
			for len(bvr.extras) == 0 && !bvr.done {
				bvr.cond.Wait()
			}
			if bvr.done {
				bvr.mu.Unlock()
				return
			}
			im := bvr.extras[len(bvr.extras)-1]
			bvr.extras = bvr.extras[0 : len(bvr.extras)-1]
			bvr.mu.Unlock()

			err := source.ReadInto(im)
			bvr.mu.Lock()
			if err != nil {
				if err != io.EOF {
					bvr.err = err
				}
				bvr.done = true
				bvr.cond.Broadcast()
				bvr.mu.Unlock()
				return
			}
			bvr.buffer = append(bvr.buffer, im)
			bvr.cond.Broadcast()
		}
	}()

	return bvr
}

// GetFrame returns (image, false), or if the stream ended before
// frameIdx then (..., true). Blocks until one or the other holds.
func (bvr *BufferedVideoReader) GetFrame(frameIdx int) (Image, bool) {
	bvr.mu.Lock()
	defer bvr.mu.Unlock()

	for !bvr.done && bvr.offset+len(bvr.buffer) <= frameIdx {
		bvr.cond.Wait()
	}

	if frameIdx < bvr.offset+len(bvr.buffer) {
		return bvr.buffer[frameIdx-bvr.offset], false
	}

	return Image{}, true
}

// Discard recycles all frames below frameIdx. Frames handed out by
// GetFrame are invalid after they are discarded.
func (bvr *BufferedVideoReader) Discard(frameIdx int) {
	bvr.mu.Lock()
	defer bvr.mu.Unlock()

	if frameIdx <= bvr.offset {
		return
	}

	pos := frameIdx - bvr.offset
	discarded := bvr.buffer[0:pos]
	bvr.extras = append(bvr.extras, discarded...)
	n := copy(bvr.buffer[0:], bvr.buffer[pos:])
	bvr.buffer = bvr.buffer[0:n]
	bvr.offset = frameIdx

	bvr.cond.Broadcast()
}

// Err reports a decode failure observed by the background goroutine.
// A clean end of stream is not an error.
func (bvr *BufferedVideoReader) Err() error {
	bvr.mu.Lock()
	defer bvr.mu.Unlock()
	return bvr.err
}

// Stop ends prefetching. The underlying reader must still be closed to
// unblock a read in flight.
func (bvr *BufferedVideoReader) Stop() {
	bvr.mu.Lock()
	bvr.done = true
	bvr.cond.Broadcast()
	bvr.mu.Unlock()
}
