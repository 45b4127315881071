package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func date(t *testing.T, s string) domain.Value {
	t.Helper()

	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", s, err)
	}
	return domain.Date(d)
}

func buildRecord(t *testing.T, keyField string, fields []string, base, overrides map[string]domain.Value) domain.Record {
	t.Helper()

	values := make([]domain.Value, len(fields))
	for i, name := range fields {
		values[i] = base[name]
		if v, ok := overrides[name]; ok {
			values[i] = v
		}
	}

	rec, err := domain.NewRecord(1, keyField, fields, values)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	return rec
}

// validOrder weighs 785 kg (10 x 1000 x 10000 mm) and costs 628 at 800/ton.
func validOrder(t *testing.T, overrides map[string]domain.Value) domain.Record {
	t.Helper()

	base := map[string]domain.Value{
		schema.OrderID:        domain.String("SO-2024-0001"),
		schema.BatchID:        domain.String("B-000001"),
		schema.CustomerName:   domain.String("Acme Steel"),
		schema.SteelGrade:     domain.String("A36"),
		schema.SteelType:      domain.String("Hot Rolled"),
		schema.Thickness:      domain.Number(10),
		schema.Width:          domain.Number(1000),
		schema.Length:         domain.Number(10000),
		schema.Weight:         domain.Number(785),
		schema.UnitPrice:      domain.Number(800),
		schema.TotalPrice:     domain.Number(628),
		schema.ProductionLine: domain.String("Line-A1"),
		schema.Warehouse:      domain.String("WH-North"),
		schema.QualityGrade:   domain.String("A"),
		schema.OrderStatus:    domain.String("Pending"),
		schema.OrderDate:      date(t, "2024-01-10"),
		schema.ProductionDate: date(t, "2024-01-20"),
		schema.DeliveryDate:   date(t, "2024-02-15"),
		schema.ContactEmail:   domain.String("buyer@acme.com"),
		schema.ContactPhone:   domain.String("555-0100"),
	}
	return buildRecord(t, schema.OrderID, schema.Orders().ColumnNames(), base, overrides)
}

func orderValidator() *RecordValidator {
	cfg := DefaultOrderRules()
	cfg.Now = func() time.Time { return fixedNow }
	return NewRecordValidator(cfg.Rules(), nil)
}

func TestValidOrderHasNoViolations(t *testing.T) {
	t.Parallel()

	if got := orderValidator().Validate(validOrder(t, nil)); len(got) != 0 {
		t.Fatalf("Validate() = %v, want none", got)
	}
}

func TestZeroWeightIsSingleRangeViolation(t *testing.T) {
	t.Parallel()

	got := orderValidator().Validate(validOrder(t, map[string]domain.Value{schema.Weight: domain.Number(0)}))
	if len(got) != 1 {
		t.Fatalf("Validate() = %v, want exactly one violation", got)
	}
	if got[0].Field != schema.Weight || got[0].Category != domain.CategoryRange {
		t.Fatalf("violation = %+v, want Weight range", got[0])
	}
	if got[0].Key != "SO-2024-0001" {
		t.Fatalf("violation key = %q", got[0].Key)
	}
}

func TestPriceToleranceBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     float64
		wantCross int
	}{
		{name: "six percent over", total: 628 * 1.06, wantCross: 1},
		{name: "six percent under", total: 628 * 0.94, wantCross: 1},
		{name: "four percent over", total: 628 * 1.04, wantCross: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := orderValidator().Validate(validOrder(t, map[string]domain.Value{schema.TotalPrice: domain.Number(tt.total)}))
			if len(got) != tt.wantCross {
				t.Fatalf("Validate() = %v, want %d violations", got, tt.wantCross)
			}
			for _, v := range got {
				if v.Category != domain.CategoryCrossField || v.Field != "TotalPrice/UnitPrice" {
					t.Fatalf("violation = %+v, want price cross-field", v)
				}
			}
		})
	}
}

func TestWeightToleranceSkipsZeroDimensions(t *testing.T) {
	t.Parallel()

	got := orderValidator().Validate(validOrder(t, map[string]domain.Value{schema.Thickness: domain.Number(0)}))
	if len(got) != 1 || got[0].Field != schema.Thickness || got[0].Category != domain.CategoryRange {
		t.Fatalf("Validate() = %v, want only the thickness range violation", got)
	}

	got = orderValidator().Validate(validOrder(t, map[string]domain.Value{schema.Weight: domain.Number(1000)}))
	if len(got) != 2 {
		t.Fatalf("Validate() = %v, want weight and price cross-field violations", got)
	}
	if got[0].Field != "Weight/Dimensions" || got[1].Field != "TotalPrice/UnitPrice" {
		t.Fatalf("Validate() fields = %s, %s", got[0].Field, got[1].Field)
	}
}

func TestValidateReportsEveryFailure(t *testing.T) {
	t.Parallel()

	rec := validOrder(t, map[string]domain.Value{
		schema.OrderID:      domain.String("SO-24-1"),
		schema.SteelGrade:   domain.String("304SS"),
		schema.QualityGrade: domain.String("Reject"),
		schema.OrderStatus:  domain.String("Shipped"),
		schema.Warehouse:    domain.String("wh-north"),
		schema.CustomerName: domain.Missing(),
		schema.DeliveryDate: date(t, "2025-06-01"),
	})

	got := orderValidator().Validate(rec)

	want := []domain.CountKey{
		{Field: schema.CustomerName, Category: domain.CategoryRequired},
		{Field: schema.OrderID, Category: domain.CategoryFormat},
		{Field: schema.Warehouse, Category: domain.CategoryMembership},
		{Field: "SteelGrade/SteelType", Category: domain.CategoryCrossField},
		{Field: schema.DeliveryDate, Category: domain.CategoryCrossField},
		{Field: "Status/QualityGrade", Category: domain.CategoryBusinessState},
	}

	seen := make(map[domain.CountKey]bool)
	for _, v := range got {
		seen[domain.CountKey{Field: v.Field, Category: v.Category}] = true
	}
	for _, k := range want {
		if !seen[k] {
			t.Fatalf("missing violation %s in %v", k, got)
		}
	}
	// Delivery both exceeds the lead time and the one year horizon.
	if len(got) != len(want)+1 {
		t.Fatalf("Validate() returned %d violations, want %d: %v", len(got), len(want)+1, got)
	}
}

func TestOrderDateSequenceAndStateConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		overrides map[string]domain.Value
		wantField string
		wantCat   domain.Category
		wantMsg   string
	}{
		{
			name:      "production before order",
			overrides: map[string]domain.Value{schema.ProductionDate: date(t, "2024-01-05")},
			wantField: schema.ProductionDate,
			wantCat:   domain.CategoryCrossField,
			wantMsg:   "production date cannot be before order date",
		},
		{
			name:      "delivery before production",
			overrides: map[string]domain.Value{schema.DeliveryDate: date(t, "2024-01-15")},
			wantField: schema.DeliveryDate,
			wantCat:   domain.CategoryCrossField,
			wantMsg:   "delivery date cannot be before production date",
		},
		{
			name: "production lead time over 30 days",
			overrides: map[string]domain.Value{
				schema.ProductionDate: date(t, "2024-02-15"),
				schema.DeliveryDate:   date(t, "2024-02-20"),
			},
			wantField: schema.ProductionDate,
			wantCat:   domain.CategoryCrossField,
			wantMsg:   "production lead time exceeds 30 days",
		},
		{
			name: "shipped rework",
			overrides: map[string]domain.Value{
				schema.OrderStatus:  domain.String("Shipped"),
				schema.QualityGrade: domain.String("Rework"),
			},
			wantField: "Status/QualityGrade",
			wantCat:   domain.CategoryBusinessState,
			wantMsg:   "status Shipped with quality grade Rework: cannot ship rework items",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := orderValidator().Validate(validOrder(t, tt.overrides))
			if len(got) != 1 {
				t.Fatalf("Validate() = %v, want one violation", got)
			}
			if got[0].Field != tt.wantField || got[0].Category != tt.wantCat || got[0].Message != tt.wantMsg {
				t.Fatalf("violation = %+v, want %s %s %q", got[0], tt.wantField, tt.wantCat, tt.wantMsg)
			}
		})
	}
}

func TestTypeErrorsBecomeViolations(t *testing.T) {
	t.Parallel()

	rec := validOrder(t, map[string]domain.Value{schema.OrderDate: domain.String("10/01/2024")})
	got := orderValidator().Validate(rec)

	if len(got) != 1 {
		t.Fatalf("Validate() = %v, want one violation", got)
	}
	if got[0].Category != domain.CategoryDataType || got[0].Field != schema.OrderDate {
		t.Fatalf("violation = %+v, want OrderDate data-type-error", got[0])
	}
}

func TestPanickingRuleIsRecovered(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{
			Name:     "explodes",
			Category: domain.CategoryCrossField,
			Check: func(domain.Record) ([]domain.Violation, error) {
				var m map[string]int
				m["x"]++
				return nil, nil
			},
		},
		Required(schema.CustomerName),
	}

	rec := validOrder(t, map[string]domain.Value{schema.CustomerName: domain.String("")})
	got := NewRecordValidator(rules, nil).Validate(rec)

	if len(got) != 2 {
		t.Fatalf("Validate() = %v, want 2 violations", got)
	}
	if got[0].Category != domain.CategoryDataType || got[0].Field != "explodes" {
		t.Fatalf("first violation = %+v", got[0])
	}
	if got[1].Category != domain.CategoryRequired {
		t.Fatalf("second violation = %+v, later rules must still run", got[1])
	}
}

func TestOrderIDPrefixIsConfigurable(t *testing.T) {
	t.Parallel()

	cfg := DefaultOrderRules()
	cfg.OrderIDPrefix = "PO"
	cfg.Now = func() time.Time { return fixedNow }
	v := NewRecordValidator(cfg.Rules(), nil)

	if got := v.Validate(validOrder(t, map[string]domain.Value{schema.OrderID: domain.String("PO-2024-0001")})); len(got) != 0 {
		t.Fatalf("Validate() = %v, want none", got)
	}
	got := v.Validate(validOrder(t, nil))
	if len(got) != 1 || !strings.Contains(got[0].Message, "PO-YYYY-NNNN") {
		t.Fatalf("Validate() = %v, want PO format violation", got)
	}
}
