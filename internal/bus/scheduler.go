package bus

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

// InternalJobPrefix marks jobs handled in-process instead of producing
// envelopes.
const InternalJobPrefix = "internal:"

// Job is one cron-driven synthetic event producer. Jobs with an internal:
// event type run an in-process handler on each tick.
type Job struct {
	Name      string
	Cron      string
	EventType string
	Payload   map[string]any
	TenantID  string
}

// DefaultJobs is the compile-time job set. Names are part of the contract.
func DefaultJobs() []Job {
	return []Job{
		{Name: "lot-expiry-check", Cron: "0 0 * * *", EventType: "Scheduled.ExpiryCheck"},
		{Name: "abc-xyz-analysis", Cron: "0 2 1 * *", EventType: "Scheduled.AbcXyzAnalysis"},
		{Name: "safety-stock-recalc", Cron: "0 3 * * 0", EventType: "Scheduled.SafetyStockRecalc"},
		{Name: "demand-forecast", Cron: "0 4 * * 0", EventType: "Scheduled.DemandForecast"},
		{Name: "outbox-cleanup", Cron: "0 5 * * *", EventType: InternalJobPrefix + "outbox-cleanup"},
	}
}

// Directory enumerates the tenants and warehouses a job fans out over.
type Directory interface {
	ActiveTenants(ctx context.Context) ([]string, error)
	ActiveWarehouses(ctx context.Context, tenantID string) ([]string, error)
}

// Scheduler fabricates synthetic envelopes on cron expressions (UTC), one
// per (tenant, warehouse), entering the bus through the outbox like any
// command-emitted event.
type Scheduler struct {
	Jobs      []Job
	Directory Directory
	Events    eventstore.Store
	Outbox    outbox.Store
	Internal  map[string]func(ctx context.Context) error
	Clock     Clock
	Logger    *slog.Logger

	cron *cron.Cron
}

// Start registers every job and begins ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(time.UTC))
	for _, job := range s.Jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Cron, func() {
			if err := s.RunJob(ctx, job); err != nil {
				s.logger().Error("scheduled job failed",
					"event", "scheduled_job_failed",
					"module", "internal/bus",
					"layer", "worker",
					"job", job.Name,
					"error", err.Error(),
				)
			}
		}); err != nil {
			return err
		}
		s.logger().Info("scheduled job registered",
			"event", "scheduled_job_registered",
			"module", "internal/bus",
			"layer", "worker",
			"job", job.Name,
			"cron", job.Cron,
		)
	}
	s.cron.Start()
	return nil
}

// Stop halts ticking and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunJob executes one tick of a job. Exported so ticks are testable and
// operators can force a run.
func (s *Scheduler) RunJob(ctx context.Context, job Job) error {
	if strings.HasPrefix(job.EventType, InternalJobPrefix) {
		handler, ok := s.Internal[job.EventType]
		if !ok {
			s.logger().Warn("internal job has no handler",
				"event", "internal_job_unhandled",
				"module", "internal/bus",
				"layer", "worker",
				"job", job.Name,
			)
			return nil
		}
		return handler(ctx)
	}

	tenants, err := s.tenants(ctx, job)
	if err != nil {
		return err
	}

	emitted := 0
	for _, tenantID := range tenants {
		warehouses, err := s.Directory.ActiveWarehouses(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, warehouseID := range warehouses {
			if err := s.emit(ctx, job, tenantID, warehouseID); err != nil {
				return err
			}
			emitted++
		}
	}

	s.logger().Info("scheduled job ran",
		"event", "scheduled_job_ran",
		"module", "internal/bus",
		"layer", "worker",
		"job", job.Name,
		"emitted", emitted,
	)
	return nil
}

func (s *Scheduler) emit(ctx context.Context, job Job, tenantID, warehouseID string) error {
	payload := make(map[string]any, len(job.Payload)+3)
	for k, v := range job.Payload {
		payload[k] = v
	}
	payload["warehouse_id"] = warehouseID
	payload["triggered_by"] = "scheduler"
	payload["job_name"] = job.Name

	env, err := events.New(job.EventType, payload, events.Context{
		CorrelationID: uuid.NewString(),
		Actor:         events.Actor{Type: events.ActorSystem, ID: "scheduler"},
		TenantID:      tenantID,
		WarehouseID:   warehouseID,
	}, s.now())
	if err != nil {
		return err
	}

	if _, err := s.Events.Append(ctx, env); err != nil {
		return err
	}
	entry, err := outbox.NewEntry(env, ScheduledRoutingKey(job.Name), s.now())
	if err != nil {
		return err
	}
	return s.Outbox.Enqueue(ctx, entry)
}

func (s *Scheduler) tenants(ctx context.Context, job Job) ([]string, error) {
	if job.TenantID != "" {
		return []string{job.TenantID}, nil
	}
	return s.Directory.ActiveTenants(ctx)
}

// ScheduledRoutingKey maps a job name to its routing key, e.g.
// lot-expiry-check -> scheduled.lot.expiry.check.
func ScheduledRoutingKey(jobName string) string {
	return "scheduled." + strings.ReplaceAll(jobName, "-", ".")
}

func (s *Scheduler) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
