package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		t.Run(env, func(t *testing.T) {
			l, err := New(Options{Env: env})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNew_UnknownEnv(t *testing.T) {
	if _, err := New(Options{Env: "staging"}); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestNew_LevelOverride(t *testing.T) {
	l, err := New(Options{Env: "prod", Level: "debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}

	if _, err := New(Options{Env: "prod", Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_DefaultLevelByEnv(t *testing.T) {
	prod, err := New(Options{Env: "prod", Version: "1.2.3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prod.Core().Enabled(zap.DebugLevel) {
		t.Error("prod should not log debug by default")
	}

	dev, err := New(Options{Env: "dev", Sample: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dev.Core().Enabled(zap.DebugLevel) {
		t.Error("dev should log debug by default")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("request_id", "abc"))
	FromContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "abc" {
		t.Errorf("expected request_id=abc, got %v", got)
	}
}

func TestFromContextOr(t *testing.T) {
	def := zap.NewExample()
	if got := FromContextOr(context.Background(), def); got != def {
		t.Error("expected fallback logger")
	}

	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	if got := FromContextOr(ctx, def); got != l {
		t.Error("expected context logger")
	}
}
