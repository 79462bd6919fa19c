package jobs

import (
	"context"
	"log/slog"
	"time"

	"busenjoyer/internal/metrics"
	"busenjoyer/internal/repository"
)

const auditInterval = 1 * time.Minute

// CapacityAuditJob periodically verifies that no trip has more active tickets
// than its bus has seats. Remaining seats are always derived from the ticket
// table, so a violation here means the booking transaction guard was bypassed.
type CapacityAuditJob struct {
	ticketRepo *repository.TicketRepository
	ticker     *time.Ticker
	done       chan bool
}

// NewCapacityAuditJob creates a new capacity audit job
func NewCapacityAuditJob(ticketRepo *repository.TicketRepository) *CapacityAuditJob {
	return &CapacityAuditJob{
		ticketRepo: ticketRepo,
		done:       make(chan bool),
	}
}

// Start begins the background job that audits capacity every minute
func (j *CapacityAuditJob) Start(ctx context.Context) {
	slog.Info("Starting capacity audit job", "interval", auditInterval.String())

	j.ticker = time.NewTicker(auditInterval)

	// Run initial check immediately
	go j.audit(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.audit(ctx)
			case <-j.done:
				slog.Info("Capacity audit job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *CapacityAuditJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *CapacityAuditJob) audit(ctx context.Context) {
	overbooked, err := j.ticketRepo.FindOverbooked(ctx)
	if err != nil {
		slog.Error("Capacity audit query failed", "error", err)
		return
	}

	metrics.CapacityViolations.Set(float64(len(overbooked)))

	if len(overbooked) == 0 {
		slog.Debug("Capacity audit passed")
		return
	}

	for _, trip := range overbooked {
		slog.Error("Trip is overbooked",
			"trip_id", trip.ID,
			"departure", trip.Departure,
			"seats", trip.Seats)
	}
}
