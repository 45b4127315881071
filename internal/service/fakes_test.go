package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/ratelimit"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func orderStrings() map[string]string {
	return map[string]string{
		schema.OrderID:        "SO-2024-0001",
		schema.BatchID:        "B-000001",
		schema.CustomerName:   "Acme Steel",
		schema.SteelGrade:     "A36",
		schema.SteelType:      "Hot Rolled",
		schema.Thickness:      "10",
		schema.Width:          "1,000",
		schema.Length:         "10000",
		schema.Weight:         "785",
		schema.UnitPrice:      "$800.00",
		schema.TotalPrice:     "$628.00",
		schema.ProductionLine: "Line-A1",
		schema.Warehouse:      "WH-North",
		schema.QualityGrade:   "A",
		schema.OrderStatus:    "Pending",
		schema.OrderDate:      "2024-01-10",
		schema.ProductionDate: "2024-01-20",
		schema.DeliveryDate:   "2024-02-15",
		schema.ContactEmail:   "buyer@acme.com",
		schema.ContactPhone:   "555-0100",
	}
}

// rawOrder builds an order as it comes out of CSV ingestion: every cell is a string.
func rawOrder(t *testing.T, row int, overrides map[string]string) domain.Record {
	t.Helper()

	base := orderStrings()
	names := schema.Orders().ColumnNames()
	values := make([]domain.Value, len(names))
	for i, name := range names {
		v := base[name]
		if o, ok := overrides[name]; ok {
			v = o
		}
		values[i] = domain.String(v)
	}

	rec, err := domain.NewRecord(row, schema.OrderID, names, values)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	return rec
}

// typedOrder builds a cleaned order ready for dispatch.
func typedOrder(t *testing.T, row int, key, email string) domain.Record {
	t.Helper()

	delivery := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	base := map[string]domain.Value{
		schema.OrderID:        domain.String(key),
		schema.CustomerName:   domain.String("Acme Steel"),
		schema.Thickness:      domain.Number(10),
		schema.Width:          domain.Number(1000),
		schema.Length:         domain.Number(10000),
		schema.Weight:         domain.Number(785),
		schema.UnitPrice:      domain.Number(800),
		schema.TotalPrice:     domain.Number(628),
		schema.ProductionLine: domain.String("Line-A1"),
		schema.OrderStatus:    domain.String("Pending"),
		schema.DeliveryDate:   domain.Date(delivery),
		schema.ContactEmail:   domain.String(email),
	}
	if email == "" {
		base[schema.ContactEmail] = domain.Missing()
	}

	names := schema.Orders().ColumnNames()
	values := make([]domain.Value, len(names))
	for i, name := range names {
		values[i] = base[name]
	}

	rec, err := domain.NewRecord(row, schema.OrderID, names, values)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	return rec
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channel string) (bool, error)
	waitFn  func(ctx context.Context, channel string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, channel)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channel string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, channel)
	}
	return nil
}

var _ ratelimit.RateLimiter = (*fakeRateLimiter)(nil)

type fakeAttemptRepo struct {
	mu       sync.Mutex
	created  []domain.SendAttempt
	createFn func(ctx context.Context, a *domain.SendAttempt) error
}

func (f *fakeAttemptRepo) Create(ctx context.Context, a *domain.SendAttempt) error {
	f.mu.Lock()
	f.created = append(f.created, *a)
	f.mu.Unlock()

	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return nil
}

func (f *fakeAttemptRepo) ListByRecord(ctx context.Context, runID, key string) ([]domain.SendAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.SendAttempt
	for _, a := range f.created {
		if a.RunID == runID && a.Key == key {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ repository.AttemptRepository = (*fakeAttemptRepo)(nil)

type fakeRunRepo struct {
	createFn       func(ctx context.Context, run *domain.Run) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Run, error)
	updateStatusFn func(ctx context.Context, id string, status domain.RunStatus) error
}

func (f *fakeRunRepo) Create(ctx context.Context, run *domain.Run) error {
	if f.createFn != nil {
		return f.createFn(ctx, run)
	}
	return nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRunRepo) UpdateStatus(ctx context.Context, id string, status domain.RunStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

var _ repository.RunRepository = (*fakeRunRepo)(nil)
