package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/orderflow/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "fiber error", err: fiber.NewError(fiber.StatusTeapot, "teapot"), want: fiber.StatusTeapot},
		{name: "validation", err: fmt.Errorf("%w: bad id", domain.ErrValidation), want: fiber.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("run: %w", domain.ErrNotFound), want: fiber.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StatusCode(tt.err); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorHandlerRendersJSONAndLogs(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.WarnLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.ErrNotFound })
	app.Get("/broken", func(c *fiber.Ctx) error { return errors.New("db down") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusNotFound || !strings.Contains(string(body), `"error":"not found"`) {
		t.Fatalf("GET /missing = %d %s", resp.StatusCode, body)
	}

	if _, err := app.Test(httptest.NewRequest("GET", "/broken", nil)); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	entries := recorded.FilterMessage("request error").All()
	if len(entries) != 2 {
		t.Fatalf("logged errors = %d, want 2", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("levels = %s, %s, want warn, error", entries[0].Level, entries[1].Level)
	}
}
