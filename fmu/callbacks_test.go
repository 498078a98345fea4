package fmu

import (
	"runtime"
	"testing"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	fmuruntime "github.com/simbind/fmu-runtime"
)

func TestLoggerCallbackSeverity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := fmuruntime.Logger()
	fmuruntime.SetLogger(zap.New(core))
	defer fmuruntime.SetLogger(prev)

	msg := append([]byte("step rejected"), 0)
	addr := uintptr(unsafe.Pointer(&msg[0]))

	tests := []struct {
		status fmuruntime.Status
		level  zapcore.Level
	}{
		{fmuruntime.StatusOK, zapcore.InfoLevel},
		{fmuruntime.StatusWarning, zapcore.WarnLevel},
		{fmuruntime.StatusDiscard, zapcore.WarnLevel},
		{fmuruntime.StatusError, zapcore.ErrorLevel},
		{fmuruntime.StatusFatal, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		loggerCallback(0, 0, uintptr(tt.status), 0, addr)
	}
	runtime.KeepAlive(msg)

	entries := logs.All()
	if len(entries) != len(tests) {
		t.Fatalf("logged %d entries, want %d", len(entries), len(tests))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("status %v logged at %v, want %v", tt.status, entries[i].Level, tt.level)
		}
		if got := entries[i].ContextMap()["message"]; got != "step rejected" {
			t.Errorf("status %v carried message %q", tt.status, got)
		}
	}
}
