package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

const (
	day               = 24 * time.Hour
	stainlessType     = "Stainless Steel"
	stainlessSuffix   = "SS"
	defaultOrderIDPfx = "SO"
)

// StateConflict is one disallowed combination of status and quality grade.
type StateConflict struct {
	Status       string
	QualityGrade string
	Reason       string
}

// OrderRules configures the steel order rule set. Build one with DefaultOrderRules
// and override fields before calling Rules; the returned rules copy what they need.
type OrderRules struct {
	OrderIDPrefix   string
	SteelGrades     []string
	SteelTypes      []string
	CarbonGrades    []string
	ProductionLines []string
	Warehouses      []string
	QualityGrades   []string
	Statuses        []string
	Conflicts       []StateConflict

	Thickness  Bounds
	Width      Bounds
	Length     Bounds
	Weight     Bounds
	UnitPrice  Bounds
	TotalPrice Bounds

	// SteelDensity is kg/m³.
	SteelDensity    float64
	WeightTolerance float64
	PriceTolerance  float64

	MaxProductionLead  time.Duration
	MaxDeliveryLead    time.Duration
	MaxDeliveryHorizon time.Duration

	Now func() time.Time
}

func DefaultOrderRules() OrderRules {
	statuses := []string{
		"Pending", "In Production", "Quality Check", "Ready", "Shipped",
		"Delivered", "Cancelled", "Hold", "Rework Required",
	}

	return OrderRules{
		OrderIDPrefix: defaultOrderIDPfx,
		SteelGrades: []string{
			"A36", "A572-50", "A992", "A514", "A588", "A242", "A709-50",
			"S355", "S275", "S235", "S420", "S460", "Q235", "Q345",
			"304SS", "316SS", "409SS", "430SS", "201SS",
		},
		SteelTypes: []string{
			"Hot Rolled", "Cold Rolled", "Galvanized", stainlessType,
			"Carbon Steel", "Alloy Steel", "Tool Steel", "Spring Steel",
		},
		CarbonGrades: []string{"A36", "A572-50", "A992"},
		ProductionLines: []string{
			"Line-A1", "Line-A2", "Line-B1", "Line-B2", "Line-C1", "Line-C2",
			"Line-D1", "Line-D2", "Line-E1", "Line-E2",
		},
		Warehouses: []string{
			"WH-North", "WH-South", "WH-East", "WH-West", "WH-Central",
			"WH-Export", "WH-Domestic", "WH-Reserve",
		},
		QualityGrades: []string{"A", "B", "C", "Reject", "Rework"},
		Statuses:      statuses,
		Conflicts:     defaultOrderConflicts(statuses),

		Thickness:  Bounds{Min: 0.1, Max: 300},
		Width:      Bounds{Min: 100, Max: 5000},
		Length:     Bounds{Min: 6000, Max: 25000},
		Weight:     Bounds{Min: 0, Max: 50000, ExclusiveMin: true},
		UnitPrice:  Bounds{Min: 0, Max: 10000, ExclusiveMin: true},
		TotalPrice: Bounds{Min: 0, Max: 1_000_000, ExclusiveMin: true},

		SteelDensity:    7850,
		WeightTolerance: 0.10,
		PriceTolerance:  0.05,

		MaxProductionLead:  30 * day,
		MaxDeliveryLead:    60 * day,
		MaxDeliveryHorizon: 365 * day,

		Now: time.Now,
	}
}

// Rejected items must be cancelled or reworked, and nothing rejected or in rework ships.
func defaultOrderConflicts(statuses []string) []StateConflict {
	var conflicts []StateConflict
	for _, status := range statuses {
		if status == "Cancelled" || status == "Rework Required" {
			continue
		}
		conflicts = append(conflicts, StateConflict{
			Status:       status,
			QualityGrade: "Reject",
			Reason:       "rejected quality items must be Cancelled or Rework Required",
		})
	}
	return append(conflicts, StateConflict{
		Status:       "Shipped",
		QualityGrade: "Rework",
		Reason:       "cannot ship rework items",
	})
}

// Rules builds the ordered rule set: required, format, membership, range, cross-field, business-state.
func (c OrderRules) Rules() []Rule {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	prefix := c.OrderIDPrefix
	if prefix == "" {
		prefix = defaultOrderIDPfx
	}
	orderID := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-\d{4}-\d{4}$`)
	batchID := regexp.MustCompile(`^B-\d{6}$`)

	return []Rule{
		Required(
			schema.OrderID, schema.BatchID, schema.CustomerName, schema.SteelGrade, schema.SteelType,
			schema.Thickness, schema.Width, schema.Length, schema.Weight, schema.UnitPrice, schema.TotalPrice,
			schema.ProductionLine, schema.Warehouse, schema.QualityGrade, schema.OrderStatus,
			schema.OrderDate, schema.ProductionDate, schema.DeliveryDate,
		),

		Pattern(schema.OrderID, orderID, prefix+"-YYYY-NNNN"),
		Pattern(schema.BatchID, batchID, "B-NNNNNN"),
		Format(schema.ContactEmail, IsEmail, "name@domain.tld"),
		Format(schema.ContactPhone, IsPhone, "digits, spaces, dashes, parentheses, plus or x"),

		Membership(schema.SteelGrade, c.SteelGrades),
		Membership(schema.SteelType, c.SteelTypes),
		Membership(schema.ProductionLine, c.ProductionLines),
		Membership(schema.Warehouse, c.Warehouses),
		Membership(schema.QualityGrade, c.QualityGrades),
		Membership(schema.OrderStatus, c.Statuses),

		Range(schema.Thickness, "mm", c.Thickness),
		Range(schema.Width, "mm", c.Width),
		Range(schema.Length, "mm", c.Length),
		Range(schema.Weight, "kg", c.Weight),
		Range(schema.UnitPrice, "/ton", c.UnitPrice),
		Range(schema.TotalPrice, "", c.TotalPrice),

		Tolerance("Weight/Dimensions", schema.Weight, c.WeightTolerance, c.expectedWeight),
		Tolerance("TotalPrice/UnitPrice", schema.TotalPrice, c.PriceTolerance, expectedTotalPrice),
		gradeTypeRule(toSet(c.CarbonGrades)),
		orderDatesRule(c.MaxProductionLead, c.MaxDeliveryLead, c.MaxDeliveryHorizon, now),

		stateConflictRule(schema.OrderStatus, schema.QualityGrade, c.Conflicts),
	}
}

// expectedWeight converts mm dimensions to metres and multiplies by density.
func (c OrderRules) expectedWeight(r domain.Record) (float64, bool, error) {
	dims, ok, err := positiveNumbers(r, schema.Thickness, schema.Width, schema.Length)
	if err != nil || !ok {
		return 0, false, err
	}
	return dims[0] / 1000 * dims[1] / 1000 * dims[2] / 1000 * c.SteelDensity, true, nil
}

// expectedTotalPrice prices the weight in tons.
func expectedTotalPrice(r domain.Record) (float64, bool, error) {
	in, ok, err := positiveNumbers(r, schema.Weight, schema.UnitPrice)
	if err != nil || !ok {
		return 0, false, err
	}
	return in[0] / 1000 * in[1], true, nil
}

func gradeTypeRule(carbon map[string]struct{}) Rule {
	const field = "SteelGrade/SteelType"

	return Rule{
		Name:     field,
		Category: domain.CategoryCrossField,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			grade, okGrade, err := r.Text(schema.SteelGrade)
			if err != nil {
				return nil, err
			}
			steelType, okType, err := r.Text(schema.SteelType)
			if err != nil || !okGrade || !okType {
				return nil, err
			}

			var out []domain.Violation
			if strings.HasSuffix(grade, stainlessSuffix) && steelType != stainlessType {
				out = append(out, violation(field, "steel grade %s should be %s type, not %s", grade, stainlessType, steelType))
			}
			if InSet(carbon, grade) && steelType == stainlessType {
				out = append(out, violation(field, "carbon steel grade %s cannot be %s type", grade, stainlessType))
			}
			return out, nil
		},
	}
}

func orderDatesRule(maxProduction, maxDelivery, horizon time.Duration, now func() time.Time) Rule {
	return Rule{
		Name:     "OrderDate/ProductionDate/DeliveryDate",
		Category: domain.CategoryCrossField,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			ordered, okOrder, err := r.Date(schema.OrderDate)
			if err != nil {
				return nil, err
			}
			produced, okProd, err := r.Date(schema.ProductionDate)
			if err != nil {
				return nil, err
			}
			delivered, okDel, err := r.Date(schema.DeliveryDate)
			if err != nil {
				return nil, err
			}

			var out []domain.Violation
			if okOrder && okProd {
				if produced.Before(ordered) {
					out = append(out, violation(schema.ProductionDate, "production date cannot be before order date"))
				} else if maxProduction > 0 && produced.Sub(ordered) > maxProduction {
					out = append(out, violation(schema.ProductionDate, "production lead time exceeds %d days", int(maxProduction/day)))
				}
			}
			if okProd && okDel {
				if delivered.Before(produced) {
					out = append(out, violation(schema.DeliveryDate, "delivery date cannot be before production date"))
				} else if maxDelivery > 0 && delivered.Sub(produced) > maxDelivery {
					out = append(out, violation(schema.DeliveryDate, "delivery lead time exceeds %d days", int(maxDelivery/day)))
				}
			}
			if okDel && horizon > 0 && delivered.After(now().Add(horizon)) {
				out = append(out, violation(schema.DeliveryDate, "delivery date more than %d days in the future", int(horizon/day)))
			}
			return out, nil
		},
	}
}

func stateConflictRule(statusField, gradeField string, conflicts []StateConflict) Rule {
	type pair struct{ status, grade string }
	table := make(map[pair]string, len(conflicts))
	for _, c := range conflicts {
		table[pair{c.Status, c.QualityGrade}] = c.Reason
	}
	field := statusField + "/" + gradeField

	return Rule{
		Name:     field,
		Category: domain.CategoryBusinessState,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			status, okStatus, err := r.Text(statusField)
			if err != nil {
				return nil, err
			}
			grade, okGrade, err := r.Text(gradeField)
			if err != nil || !okStatus || !okGrade {
				return nil, err
			}
			if reason, bad := table[pair{status, grade}]; bad {
				return []domain.Violation{violation(field, "status %s with quality grade %s: %s", status, grade, reason)}, nil
			}
			return nil, nil
		},
	}
}
