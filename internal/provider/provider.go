package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

// Transport is the outbound notification delivery port.
type Transport interface {
	Send(ctx context.Context, destination, subject, body string) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, destination, subject, body string) error

func (f TransportFunc) Send(ctx context.Context, destination, subject, body string) error {
	return f(ctx, destination, subject, body)
}

// Channel names the transport in metrics and rate limiter keys.
func Channel(t Transport) string {
	if named, ok := t.(interface{ Channel() string }); ok {
		return named.Channel()
	}
	return "email"
}

func requireDestination(destination string) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: empty destination", domain.ErrNoDestination)
	}
	return nil
}
