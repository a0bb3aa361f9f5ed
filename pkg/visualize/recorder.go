package visualize

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxSnapshotLine bounds a single NDJSON line on replay.
const maxSnapshotLine = 16 << 20

// ErrOutOfOrder is returned by Replay when step numbers do not increase.
var ErrOutOfOrder = errors.New("snapshot out of step order")

// Recorder captures snapshots as newline-delimited JSON inside an LZ4 frame.
// Its Publish method can be passed directly as a Publisher.
type Recorder struct {
	mu    sync.Mutex
	zw    *lz4.Writer
	enc   *json.Encoder
	count int
	err   error
}

// NewRecorder writes a compressed snapshot stream to w.
func NewRecorder(w io.Writer) *Recorder {
	zw := lz4.NewWriter(w)

	return &Recorder{zw: zw, enc: json.NewEncoder(zw)}
}

// Publish appends s to the stream. The first write error is kept and
// returned by Close; later snapshots are dropped.
func (r *Recorder) Publish(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}

	err := r.enc.Encode(s)
	if err != nil {
		r.err = fmt.Errorf("record snapshot %d: %w", s.Step, err)

		return
	}

	r.count++
}

// Count returns the number of snapshots recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// Close flushes the LZ4 frame. It does not close the underlying writer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	closeErr := r.zw.Close()
	if r.err != nil {
		return r.err
	}

	if closeErr != nil {
		return fmt.Errorf("close recording: %w", closeErr)
	}

	return nil
}

// Replay decodes a recording and hands each snapshot to fn in step order.
// It stops early when ctx is done or fn returns an error.
func Replay(ctx context.Context, r io.Reader, fn func(Snapshot) error) error {
	scanner := bufio.NewScanner(lz4.NewReader(r))
	scanner.Buffer(nil, maxSnapshotLine)

	var last int64

	for scanner.Scan() {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}

		var s Snapshot

		err = json.Unmarshal(scanner.Bytes(), &s)
		if err != nil {
			return fmt.Errorf("replay: decode snapshot after step %d: %w", last, err)
		}

		if s.Step <= last {
			return fmt.Errorf("%w: step %d after %d", ErrOutOfOrder, s.Step, last)
		}

		last = s.Step

		err = fn(s)
		if err != nil {
			return err
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	return nil
}
