package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

func TestRenderOrderConfirmation(t *testing.T) {
	t.Parallel()

	s := schema.Orders()
	values := map[string]domain.Value{
		schema.OrderID:        domain.String("SO-2024-0042"),
		schema.CustomerName:   domain.String("Acme Steel"),
		schema.Weight:         domain.Number(1250.5),
		schema.TotalPrice:     domain.Number(1234.56),
		schema.Thickness:      domain.Number(12.5),
		schema.OrderStatus:    domain.String("Shipped"),
		schema.DeliveryDate:   domain.Date(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)),
		schema.ProductionLine: domain.String("Line-B2"),
	}

	names := s.ColumnNames()
	vals := make([]domain.Value, len(names))
	for i, n := range names {
		vals[i] = values[n]
	}
	rec, err := domain.NewRecord(1, s.KeyField, names, vals)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	r, err := NewRenderer(s)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	msg, err := r.Render(rec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if msg.Subject != "Steel Order Confirmation - SO-2024-0042" {
		t.Fatalf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"Dear Acme Steel,",
		"Weight: 1,250.5 kg",
		"Total Price: $1,234.56",
		"Dimensions: 12.5mm x",
		"Expected Delivery Date: 2024-02-15",
		"Your order has been shipped and is on its way to you.",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("Body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestRenderReservationFallsBackOnUnknownStatus(t *testing.T) {
	t.Parallel()

	s := schema.Reservations()
	names := s.ColumnNames()
	vals := make([]domain.Value, len(names))
	vals[0] = domain.String("ABC123")
	rec, err := domain.NewRecord(1, s.KeyField, names, vals)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	r, err := NewRenderer(s)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	msg, err := r.Render(rec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if msg.Subject != "Flight Reservation Confirmation - ABC123" {
		t.Fatalf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Please contact us for your booking status.") {
		t.Fatalf("Body missing fallback status message:\n%s", msg.Body)
	}
}

func TestNewRendererUnknownDataset(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer(schema.Schema{Name: "invoices"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("NewRenderer() error = %v, want ErrValidation", err)
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	t.Parallel()

	rec, err := domain.NewRecord(1, schema.PNR, []string{schema.PNR}, []domain.Value{domain.String("ABC123")})
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	r, err := NewRenderer(schema.Reservations())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	if _, err := r.Render(rec); err == nil {
		t.Fatal("Render() expected error for record without template fields")
	}
}
