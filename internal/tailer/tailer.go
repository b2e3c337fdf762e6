package tailer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// defaultPassTimeout bounds one tail pass so a slow store call cannot hold
// the single-flight guard forever.
const defaultPassTimeout = 30 * time.Second

// Sink persists one batch of raw lines. A returned error means the batch
// did not fully persist and the tailer must not advance the offset.
type Sink interface {
	Persist(ctx context.Context, lines []string) error
}

// Opts holds parameters for creating a Tailer.
type Opts struct {
	Path        string
	Offsets     *OffsetStore
	Sink        Sink
	Label       string        // log prefix, e.g. "gateway"
	PassTimeout time.Duration // optional; defaults to 30s
}

// Tailer incrementally reads one watched file. At most one pass runs at a
// time; a trigger arriving while a pass is in flight is dropped, relying on
// the next change notification to re-trigger. Every pass re-reads from the
// persisted offset, so dropped triggers never skip data.
type Tailer struct {
	path    string
	offsets *OffsetStore
	sink    Sink
	label   string
	timeout time.Duration
	busy    atomic.Bool
}

// New creates a Tailer.
func New(opts Opts) (*Tailer, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("tailer: path is required")
	}
	if opts.Offsets == nil {
		return nil, fmt.Errorf("tailer: offset store is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("tailer: sink is required")
	}
	label := opts.Label
	if label == "" {
		label = opts.Path
	}
	timeout := opts.PassTimeout
	if timeout <= 0 {
		timeout = defaultPassTimeout
	}
	return &Tailer{
		path:    opts.Path,
		offsets: opts.Offsets,
		sink:    opts.Sink,
		label:   label,
		timeout: timeout,
	}, nil
}

// Label returns the tailer's log prefix.
func (t *Tailer) Label() string { return t.label }

// Process runs one tail pass: read the unread byte range, split it into
// lines, hand them to the sink, and advance the offset only after the sink
// reports success. Returns (0, nil) without work when the file is missing,
// has no new bytes, or another pass is already in flight. Returns the
// number of non-blank lines handed to the sink.
func (t *Tailer) Process(ctx context.Context) (int, error) {
	if !t.busy.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer t.busy.Store(false)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	offset, err := t.offsets.Get(t.path)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(t.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("tailer: stat %s: %w", t.path, err)
	}

	// A file smaller than the recorded offset was truncated or rotated:
	// re-read from the beginning of the new content.
	start := offset
	if info.Size() < offset {
		start = 0
	}
	if info.Size() <= start {
		return 0, nil
	}

	lines, end, err := readLines(t.path, start, info.Size())
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, t.offsets.Set(t.path, end, "")
	}

	// Persist before advancing: a failed batch must be retried from the
	// same byte range on the next pass.
	if err := t.sink.Persist(ctx, lines); err != nil {
		return 0, fmt.Errorf("tailer: persist %s batch: %w", t.label, err)
	}

	if err := t.offsets.Set(t.path, end, lines[len(lines)-1]); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// readLines reads bytes [start, end) of path and splits them into trimmed,
// non-blank lines.
func readLines(path string, start, end int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("tailer: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, 0, fmt.Errorf("tailer: read %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(buf), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, end, nil
}
