package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf})
	return l, &buf
}

// TestParseLevel tests level name parsing
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{" warning ", WARN, false},
		{"Error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestLevelFiltering tests that messages below the configured level are dropped
func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("Expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("Expected error line, got %q", out)
	}
}

// TestWithPrefix tests nested prefixes and shared output
func TestWithPrefix(t *testing.T) {
	l, buf := newTestLogger(DEBUG)
	child := l.WithPrefix("[session]").WithPrefix("[fusion]")

	child.Infof("frame %d fused", 7)

	if !strings.Contains(buf.String(), "[session] [fusion] frame 7 fused") {
		t.Errorf("Expected nested prefix, got %q", buf.String())
	}
}

// TestFatalExits tests that Fatalf calls the exit hook
func TestFatalExits(t *testing.T) {
	l, buf := newTestLogger(INFO)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("boom")

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "[FATAL] boom") {
		t.Errorf("Expected fatal line, got %q", buf.String())
	}
}

// TestDiscard tests that the discard logger writes nothing at any level
func TestDiscard(t *testing.T) {
	l := Discard()
	l.Errorf("should not appear")
	if l.Level() <= FATAL {
		t.Errorf("Expected discard level above FATAL, got %v", l.Level())
	}
}
