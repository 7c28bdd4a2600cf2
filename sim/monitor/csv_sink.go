// Package monitor implements the telemetry sinks: one recurring,
// coalesced-actor monitor per entity class writing CSV rows (§6), plus an
// additive live Prometheus gauge view. There is no CSV library anywhere in
// the retrieval pack this module was grounded on, so the sink below is
// built on the standard library's encoding/csv — the one ambient concern in
// this repo without an ecosystem alternative to reach for.
package monitor

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// CSVSink writes a single header row followed by one row per Write call to
// an underlying writer, flushing after every row so a crashed simulation
// still leaves readable output on disk.
type CSVSink struct {
	w       *csv.Writer
	header  []string
	wrote   bool
	closer  io.Closer
}

// NewCSVSink wraps w (typically an *os.File) with the given column header,
// writing and flushing the header row immediately.
func NewCSVSink(w io.Writer, header []string) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w), header: header}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	if err := s.w.Write(s.header); err != nil {
		logrus.WithError(err).Warn("monitor: failed writing CSV header")
	}
	s.w.Flush()
	s.wrote = true
	return s
}

// Write emits one row. row must have the same length as the sink's header.
func (s *CSVSink) Write(row []string) {
	if len(row) != len(s.header) {
		logrus.Errorf("monitor: row has %d fields, want %d (header %v)", len(row), len(s.header), s.header)
		return
	}
	if err := s.w.Write(row); err != nil {
		logrus.WithError(err).Warn("monitor: failed writing CSV row")
		return
	}
	s.w.Flush()
}

// Close flushes and closes the underlying writer, if closeable.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func f(v float64) string { return fmt.Sprintf("%.6f", v) }
func i(v int) string     { return fmt.Sprintf("%d", v) }
func b(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
