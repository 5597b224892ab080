package logx_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/katalvlaran/coreset/logx"
)

func TestDiscard_DoesNotPanic(t *testing.T) {
	d := logx.Discard()
	d.Infof("should not appear")
	d.Warnf("should not appear")
	d.Debugf("should not appear")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logx.New(logx.Config{Level: logx.LevelWarn, Output: &buf})
	l.Infof("info message")
	if buf.Len() != 0 {
		t.Fatalf("info message should be suppressed below warn level, got %q", buf.String())
	}
	l.Warnf("warn message %d", 1)
	if !strings.Contains(buf.String(), "warn message 1") {
		t.Fatalf("warn message missing from output: %q", buf.String())
	}
}

func TestNew_ZeroConfigDiscardsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := logx.New(logx.Config{})
	l.Infof("hello")
	if buf.Len() != 0 {
		t.Fatalf("unrelated buffer should stay empty: %q", buf.String())
	}
}

func TestOr_FallsBackToDiscardOnNil(t *testing.T) {
	got := logx.Or(nil)
	if got == nil {
		t.Fatal("Or(nil) returned nil")
	}
	// Must not panic.
	got.Infof("no sink configured")
}

func TestOr_PassesThroughNonNilLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logx.New(logx.Config{Level: logx.LevelInfo, Output: &buf})
	got := logx.Or(l)
	got.Infof("passthrough")
	if !strings.Contains(buf.String(), "passthrough") {
		t.Fatalf("Or should pass through the supplied logger: %q", buf.String())
	}
}
