package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")
	logger.Debug("hidden")
	logger.Info("password reset requested", slog.String("account_id", "abc"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "password reset requested" || rec["account_id"] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLogstashWriterForwardsLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		got <- line
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	defer w.Close()
	if _, err := w.Write([]byte(`{"msg":"hello"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case line := <-got:
		if line != "{\"msg\":\"hello\"}\n" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("logstash line not received")
	}
}

func TestLogstashWriterDropsWhenUnreachable(t *testing.T) {
	w, err := NewLogstashWriter("127.0.0.1:1", WithDialTimeout(50*time.Millisecond), WithRetryInterval(time.Minute))
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	n, err := w.Write([]byte("x"))
	if err != nil || n != 1 || w.Dropped() != 1 {
		t.Fatalf("write should be dropped silently, got n=%d err=%v dropped=%d", n, err, w.Dropped())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Fatalf("write after close should fail")
	}
}

func TestNewLogstashWriterRequiresAddress(t *testing.T) {
	if _, err := NewLogstashWriter("  "); err == nil {
		t.Fatalf("expected error for blank address")
	}
}
