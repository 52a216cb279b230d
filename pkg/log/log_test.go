package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGlobalLoggerChaining(t *testing.T) {
	Init(Config{Level: "debug", ServiceName: "test"})

	L().Debug().Str("k", "v").Msg("chained on accessor")
	L().Info().Int("n", 1).Msg("chained on accessor")
}

func TestCtxUsesStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger)

	Ctx(ctx).Info().Str("k", "v").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) {
		t.Fatalf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("expected field in output, got %q", out)
	}
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	if Ctx(context.Background()) == nil {
		t.Fatal("expected global logger fallback, got nil")
	}
}
