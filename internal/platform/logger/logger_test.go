package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsCredentialKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewFromCore(core)

	log.Info("opening store", "driver", "postgres", "postgres_dsn", "postgres://u:p@h/db")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["postgres_dsn"] != "[REDACTED]" {
		t.Fatalf("dsn not redacted: %v", fields["postgres_dsn"])
	}
	if fields["driver"] != "postgres" {
		t.Fatalf("driver: want=postgres got=%v", fields["driver"])
	}
}

func TestWithKeepsOddTrailingValue(t *testing.T) {
	got := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(got) != 3 || got[2] != "dangling" {
		t.Fatalf("unexpected kvs: %v", got)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Debug("ignored")
	log.Info("ignored")
	if log.With("k", "v") != nil {
		t.Fatalf("expected nil child logger")
	}
}
