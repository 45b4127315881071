package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

var pnrPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ReservationRules configures the flight reservation rule set.
type ReservationRules struct {
	Airports          []string
	Statuses          []string
	MinPassengerName  int
	Fare              Bounds
	CompletedStatuses []string
	// CompletionGrace is how far in the future a completed trip may still be dated.
	CompletionGrace time.Duration

	Now func() time.Time
}

func DefaultReservationRules() ReservationRules {
	return ReservationRules{
		Airports: []string{
			"LAX", "JFK", "ORD", "DFW", "DEN", "ATL", "SFO", "SEA", "LAS", "MCO",
			"EWR", "CLT", "PHX", "IAH", "MIA", "BOS", "MSP", "FLL", "DTW", "PHL",
			"LGA", "BWI", "MDW", "TPA", "IAD", "SAN", "HNL", "PDX", "STL", "AUS",
		},
		Statuses:          []string{"Confirmed", "Cancelled", "Pending", "Checked-in", "Completed"},
		MinPassengerName:  2,
		Fare:              Bounds{Min: 0, Max: 50000, ExclusiveMin: true},
		CompletedStatuses: []string{"Completed", "Checked-in"},
		CompletionGrace:   day,
		Now:               time.Now,
	}
}

func (c ReservationRules) Rules() []Rule {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	minName := c.MinPassengerName

	return []Rule{
		Required(schema.PNR, schema.Passenger, schema.Origin, schema.Destination, schema.ReservationStatus),

		Pattern(schema.PNR, pnrPattern, "6 uppercase letters or digits"),
		Format(schema.Passenger, func(s string) bool {
			return utf8.RuneCountInString(strings.TrimSpace(s)) >= minName
		}, fmt.Sprintf("a name of at least %d characters", minName)),
		Format(schema.Email, IsEmail, "name@domain.tld"),
		Format(schema.Phone, IsPhone, "digits, spaces, dashes, parentheses, plus or x"),

		Membership(schema.Origin, c.Airports),
		Membership(schema.Destination, c.Airports),
		Membership(schema.ReservationStatus, c.Statuses),

		Range(schema.Fare, "", c.Fare),

		routeRule(),
		travelDatesRule(),

		completedTripRule(toSet(c.CompletedStatuses), c.CompletionGrace, now),
	}
}

// RulesFor selects the rule set for a dataset.
func RulesFor(dataset string, orders OrderRules, reservations ReservationRules) ([]Rule, error) {
	switch dataset {
	case schema.OrdersName:
		return orders.Rules(), nil
	case schema.ReservationsName:
		return reservations.Rules(), nil
	}
	return nil, fmt.Errorf("%w: no rules for dataset %q", domain.ErrValidation, dataset)
}

func routeRule() Rule {
	const field = "Origin/Destination"

	return Rule{
		Name:     field,
		Category: domain.CategoryCrossField,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			origin, okOrigin, err := r.Text(schema.Origin)
			if err != nil {
				return nil, err
			}
			dest, okDest, err := r.Text(schema.Destination)
			if err != nil || !okOrigin || !okDest {
				return nil, err
			}
			if origin == dest {
				return []domain.Violation{violation(field, "origin and destination cannot both be %s", origin)}, nil
			}
			return nil, nil
		},
	}
}

func travelDatesRule() Rule {
	return Rule{
		Name:     "BookingDate/TravelDate",
		Category: domain.CategoryCrossField,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			booked, okBooked, err := r.Date(schema.BookingDate)
			if err != nil {
				return nil, err
			}
			travel, okTravel, err := r.Date(schema.TravelDate)
			if err != nil || !okBooked || !okTravel {
				return nil, err
			}
			if travel.Before(booked) {
				return []domain.Violation{violation(schema.TravelDate, "travel date cannot be before booking date")}, nil
			}
			return nil, nil
		},
	}
}

func completedTripRule(completed map[string]struct{}, grace time.Duration, now func() time.Time) Rule {
	field := schema.ReservationStatus + "/" + schema.TravelDate

	return Rule{
		Name:     field,
		Category: domain.CategoryBusinessState,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			status, okStatus, err := r.Text(schema.ReservationStatus)
			if err != nil {
				return nil, err
			}
			travel, okTravel, err := r.Date(schema.TravelDate)
			if err != nil || !okStatus || !okTravel {
				return nil, err
			}
			if InSet(completed, status) && travel.After(now().Add(grace)) {
				return []domain.Violation{violation(field, "status %s is not possible for travel on %s", status, travel.Format(time.DateOnly))}, nil
			}
			return nil, nil
		},
	}
}
