package http

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerLogger(t *testing.T) {
	t.Run("prefers the request scoped logger", func(t *testing.T) {
		var scoped, fallback bytes.Buffer
		ctx := ContextWithLogger(context.Background(),
			slog.New(slog.NewTextHandler(&scoped, nil)))

		logger := handlerLogger(ctx, slog.New(slog.NewTextHandler(&fallback, nil)), "BookingHandler", "Create")
		logger.InfoContext(ctx, "handled")

		if scoped.Len() == 0 {
			t.Fatalf("expected the request scoped logger to receive the entry")
		}
		if fallback.Len() != 0 {
			t.Fatalf("expected the fallback logger to stay silent, got %q", fallback.String())
		}
		for _, want := range []string{"handler=BookingHandler", "operation=Create"} {
			if !strings.Contains(scoped.String(), want) {
				t.Fatalf("expected %s in output, got %q", want, scoped.String())
			}
		}
	})

	t.Run("falls back when the context carries no logger", func(t *testing.T) {
		var fallback bytes.Buffer
		logger := handlerLogger(context.Background(),
			slog.New(slog.NewTextHandler(&fallback, nil)), "RoomHandler", "")
		logger.Info("handled")

		if fallback.Len() == 0 {
			t.Fatalf("expected the fallback logger to receive the entry")
		}
		if strings.Contains(fallback.String(), "operation=") {
			t.Fatalf("expected no operation attribute, got %q", fallback.String())
		}
	})
}
