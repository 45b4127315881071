package provider

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SimulatedTransport stands in for a mail server: it waits a random latency and
// fails a fraction of sends.
type SimulatedTransport struct {
	minLatency  time.Duration
	maxLatency  time.Duration
	failureRate float64
	logger      *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// SimulatedOption customises a SimulatedTransport.
type SimulatedOption func(*SimulatedTransport)

// WithLatency sets a fixed latency.
func WithLatency(d time.Duration) SimulatedOption {
	return WithLatencyRange(d, d)
}

// WithLatencyRange picks each latency uniformly from [min, max].
func WithLatencyRange(min, max time.Duration) SimulatedOption {
	return func(t *SimulatedTransport) {
		if min < 0 {
			min = 0
		}
		if max < min {
			max = min
		}
		t.minLatency, t.maxLatency = min, max
	}
}

// WithFailureRate sets the probability in [0,1] that a send fails.
func WithFailureRate(rate float64) SimulatedOption {
	return func(t *SimulatedTransport) {
		switch {
		case rate < 0:
			rate = 0
		case rate > 1:
			rate = 1
		}
		t.failureRate = rate
	}
}

// WithSeed makes the simulation reproducible.
func WithSeed(seed int64) SimulatedOption {
	return func(t *SimulatedTransport) {
		t.rnd = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation only.
	}
}

func WithLogger(logger *zap.Logger) SimulatedOption {
	return func(t *SimulatedTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func NewSimulatedTransport(opts ...SimulatedOption) *SimulatedTransport {
	t := &SimulatedTransport{
		minLatency:  100 * time.Millisecond,
		maxLatency:  100 * time.Millisecond,
		failureRate: 0.02,
		logger:      zap.NewNop(),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- simulation only.
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *SimulatedTransport) Channel() string { return "email" }

func (t *SimulatedTransport) Send(ctx context.Context, destination, subject, body string) error {
	if err := requireDestination(destination); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	latency, fail := t.roll()
	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if fail {
		t.logger.Debug("simulated send failed", zap.String("destination", destination))
		return transientError("simulated smtp connection failure", nil)
	}

	t.logger.Debug("simulated send",
		zap.String("destination", destination),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(body)),
		zap.Duration("latency", latency),
	)
	return nil
}

func (t *SimulatedTransport) roll() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latency := t.minLatency
	if spread := t.maxLatency - t.minLatency; spread > 0 {
		latency += time.Duration(t.rnd.Int63n(int64(spread) + 1))
	}
	return latency, t.failureRate > 0 && t.rnd.Float64() < t.failureRate
}
