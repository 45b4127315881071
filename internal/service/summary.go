package service

import (
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

// Summary aggregates dispatch results for reporting.
type Summary struct {
	Total        int
	Sent         int
	Failed       int
	Skipped      int
	SuccessRate  float64
	MeanLatency  time.Duration
	MeanAttempts float64
}

// Summarize is pure: the same results always give the same summary, whatever their order.
// Rates and means cover attempted (sent or failed) results only.
func Summarize(results []domain.DispatchResult) Summary {
	s := Summary{Total: len(results)}

	var (
		elapsed  time.Duration
		attempts int
	)
	for _, r := range results {
		switch r.State {
		case domain.TaskSent:
			s.Sent++
		case domain.TaskFailed:
			s.Failed++
		case domain.TaskSkipped:
			s.Skipped++
			continue
		default:
			continue
		}
		elapsed += r.Elapsed
		attempts += r.Attempts
	}

	attempted := s.Sent + s.Failed
	if attempted == 0 {
		return s
	}
	s.SuccessRate = float64(s.Sent) / float64(attempted)
	s.MeanLatency = elapsed / time.Duration(attempted)
	s.MeanAttempts = float64(attempts) / float64(attempted)
	return s
}
