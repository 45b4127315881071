package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

func validReservation(t *testing.T, overrides map[string]domain.Value) domain.Record {
	t.Helper()

	base := map[string]domain.Value{
		schema.PNR:               domain.String("ABC123"),
		schema.Passenger:         domain.String("Jane Doe"),
		schema.Origin:            domain.String("LAX"),
		schema.Destination:       domain.String("JFK"),
		schema.Fare:              domain.Number(412.5),
		schema.ReservationStatus: domain.String("Confirmed"),
		schema.BookingDate:       date(t, "2024-02-01"),
		schema.TravelDate:        date(t, "2024-04-01"),
		schema.Email:             domain.String("jane@example.com"),
		schema.Phone:             domain.Missing(),
	}
	return buildRecord(t, schema.PNR, schema.Reservations().ColumnNames(), base, overrides)
}

func reservationValidator() *RecordValidator {
	cfg := DefaultReservationRules()
	cfg.Now = func() time.Time { return fixedNow }
	return NewRecordValidator(cfg.Rules(), nil)
}

func TestReservationRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		overrides map[string]domain.Value
		want      []domain.CountKey
	}{
		{name: "valid"},
		{
			name:      "lowercase pnr",
			overrides: map[string]domain.Value{schema.PNR: domain.String("abc123")},
			want:      []domain.CountKey{{Field: schema.PNR, Category: domain.CategoryFormat}},
		},
		{
			name:      "same airport",
			overrides: map[string]domain.Value{schema.Destination: domain.String("LAX")},
			want:      []domain.CountKey{{Field: "Origin/Destination", Category: domain.CategoryCrossField}},
		},
		{
			name:      "unknown airport",
			overrides: map[string]domain.Value{schema.Origin: domain.String("XXX")},
			want:      []domain.CountKey{{Field: schema.Origin, Category: domain.CategoryMembership}},
		},
		{
			name:      "zero fare",
			overrides: map[string]domain.Value{schema.Fare: domain.Number(0)},
			want:      []domain.CountKey{{Field: schema.Fare, Category: domain.CategoryRange}},
		},
		{
			name:      "short passenger name",
			overrides: map[string]domain.Value{schema.Passenger: domain.String("J")},
			want:      []domain.CountKey{{Field: schema.Passenger, Category: domain.CategoryFormat}},
		},
		{
			name:      "travel before booking",
			overrides: map[string]domain.Value{schema.TravelDate: date(t, "2024-01-15")},
			want:      []domain.CountKey{{Field: schema.TravelDate, Category: domain.CategoryCrossField}},
		},
		{
			name:      "completed trip in the future",
			overrides: map[string]domain.Value{schema.ReservationStatus: domain.String("Completed")},
			want:      []domain.CountKey{{Field: "Status/TravelDate", Category: domain.CategoryBusinessState}},
		},
		{
			name:      "missing passenger",
			overrides: map[string]domain.Value{schema.Passenger: domain.Missing()},
			want:      []domain.CountKey{{Field: schema.Passenger, Category: domain.CategoryRequired}},
		},
		{
			name:      "empty email is allowed",
			overrides: map[string]domain.Value{schema.Email: domain.Missing()},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := reservationValidator().Validate(validReservation(t, tt.overrides))
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for i, v := range got {
				if v.Field != tt.want[i].Field || v.Category != tt.want[i].Category {
					t.Fatalf("violation[%d] = %+v, want %s", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestRulesFor(t *testing.T) {
	t.Parallel()

	rules, err := RulesFor(schema.ReservationsName, DefaultOrderRules(), DefaultReservationRules())
	if err != nil || len(rules) == 0 {
		t.Fatalf("RulesFor(reservations) = %d rules, %v", len(rules), err)
	}

	if _, err := RulesFor("invoices", DefaultOrderRules(), DefaultReservationRules()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("RulesFor(invoices) error = %v, want ErrValidation", err)
	}
}
