package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var errCoolingDown = errors.New("logstash: reconnect delayed")

// LogstashWriter ships newline-delimited JSON records to a Logstash TCP input.
// It holds one connection and never blocks the logger on an unreachable peer:
// records written while the connection is down are counted and discarded.
type LogstashWriter struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	backoff      time.Duration

	mu      sync.Mutex
	conn    net.Conn
	retryAt time.Time
	closed  bool
	dropped atomic.Int64
}

type Option func(*LogstashWriter)

// WithDialTimeout defaults to 2s.
func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.dialTimeout = d }
}

// WithWriteTimeout defaults to 1s.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.writeTimeout = d }
}

// WithRetryInterval sets how long to wait after a failure before dialing again. Defaults to 5s.
func WithRetryInterval(d time.Duration) Option {
	return func(w *LogstashWriter) { w.backoff = d }
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("logstash: empty address")
	}
	w := &LogstashWriter{
		addr:         addr,
		dialTimeout:  2 * time.Second,
		writeTimeout: time.Second,
		backoff:      5 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write always reports the full length unless the writer is closed.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if err := w.connectLocked(); err != nil {
		w.dropped.Add(1)
		return len(p), nil
	}
	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	if _, err := w.conn.Write(line); err != nil {
		w.dropped.Add(1)
		w.resetLocked()
	}
	return len(p), nil
}

// Dropped reports how many records were discarded since creation.
func (w *LogstashWriter) Dropped() int64 {
	return w.dropped.Load()
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) connectLocked() error {
	if w.conn != nil {
		return nil
	}
	if !w.retryAt.IsZero() && time.Now().Before(w.retryAt) {
		return errCoolingDown
	}
	conn, err := net.DialTimeout("tcp", w.addr, w.dialTimeout)
	if err != nil {
		w.resetLocked()
		return err
	}
	w.conn = conn
	w.retryAt = time.Time{}
	return nil
}

// resetLocked drops the connection and starts the backoff window.
func (w *LogstashWriter) resetLocked() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	if w.backoff > 0 {
		w.retryAt = time.Now().Add(w.backoff)
	} else {
		w.retryAt = time.Time{}
	}
}
