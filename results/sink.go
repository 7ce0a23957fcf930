package results

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Defaults for upload retries.
const (
	DefaultMaxRetries      = 5
	DefaultInitialInterval = 200 * time.Millisecond
)

// TableName returns the blob name of the (algorithm, instance) table.
func TableName(algorithm, instance string, codec Codec) string {
	return path.Join(algorithm, instance+".csv"+codec.Ext())
}

type tableKey struct {
	algorithm string
	instance  string
}

// table holds every record of one (algorithm, instance) pair. flushed is the
// row count of the last successful upload.
type table struct {
	rows    []Record
	flushed int
}

func (t *table) dirty() bool { return len(t.rows) != t.flushed }

// TableSink groups records into one table per (algorithm, instance) and
// uploads changed tables on Flush. It is safe for concurrent use.
type TableSink struct {
	store           BlobStore
	codec           Codec
	maxRetries      uint64
	initialInterval time.Duration
	notify          func(err error, next time.Duration)

	mu     sync.Mutex
	tables map[tableKey]*table
}

var _ Sink = (*TableSink)(nil)

// Option configures a TableSink.
type Option func(*TableSink)

// WithCodec compresses every table with c.
func WithCodec(c Codec) Option {
	return func(s *TableSink) { s.codec = c }
}

// WithRetry sets the number of upload retries and the first back-off interval.
// maxRetries == 0 disables retrying.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(s *TableSink) {
		s.maxRetries = maxRetries
		s.initialInterval = initial
	}
}

// WithRetryNotify registers fn to be called before each retry.
func WithRetryNotify(fn func(err error, next time.Duration)) Option {
	return func(s *TableSink) { s.notify = fn }
}

// NewTableSink returns a sink writing to store.
func NewTableSink(store BlobStore, opts ...Option) *TableSink {
	s := &TableSink{
		store:           store,
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialInterval,
		tables:          make(map[tableKey]*table),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Write appends r to its table.
func (s *TableSink) Write(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tableKey{algorithm: r.Algorithm, instance: r.Instance}
	t, ok := s.tables[key]
	if !ok {
		t = &table{}
		s.tables[key] = t
	}
	t.rows = append(t.rows, r)

	return nil
}

// Flush uploads every table changed since its last successful upload, in
// name order. A table counts as uploaded only once its Put succeeded, so a
// failed Flush leaves it to the next one.
func (s *TableSink) Flush(ctx context.Context) error {
	type pending struct {
		key  tableKey
		name string
		data []byte
		rows int
	}

	s.mu.Lock()
	var work []pending
	for key, t := range s.tables {
		if !t.dirty() {
			continue
		}
		data, err := encodeTable(t.rows)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		work = append(work, pending{
			key:  key,
			name: TableName(key.algorithm, key.instance, s.codec),
			data: data,
			rows: len(t.rows),
		})
	}
	s.mu.Unlock()

	slices.SortFunc(work, func(a, b pending) int { return strings.Compare(a.name, b.name) })

	for _, w := range work {
		if err := s.upload(ctx, w.name, w.data); err != nil {
			return fmt.Errorf("results: upload %s: %w", w.name, err)
		}
		s.mu.Lock()
		// Rows appended during the upload keep the table dirty.
		if t := s.tables[w.key]; w.rows > t.flushed {
			t.flushed = w.rows
		}
		s.mu.Unlock()
	}

	return nil
}

// upload compresses data and puts it with exponential back-off.
func (s *TableSink) upload(ctx context.Context, name string, data []byte) error {
	payload, err := s.codec.Encode(data)
	if err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.maxRetries), ctx)

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return s.store.Put(ctx, name, payload)
	}
	if s.notify != nil {
		return backoff.RetryNotify(op, policy, s.notify)
	}

	return backoff.Retry(op, policy)
}

// encodeTable renders rows as CSV with a header.
func encodeTable(rows []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.Row()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
