// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/common/observability"
)

// HandlerFunc is the job handler signature the per-task workers expose.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerManager tracks open job workers so shutdown can close them all.
type WorkerManager struct {
	client  zbc.Client
	obs     *observability.Observability
	logger  *zap.Logger
	workers []worker.JobWorker
}

func NewWorkerManager(client zbc.Client, obs *observability.Observability, logger *zap.Logger) *WorkerManager {
	return &WorkerManager{client: client, obs: obs, logger: logger}
}

// Start opens a job worker for taskType and registers it for shutdown.
// Every handler invocation is instrumented with the active-jobs gauge and
// the duration histogram.
func (m *WorkerManager) Start(taskType string, handler HandlerFunc, maxJobsActive int, timeout time.Duration) {
	instrumented := m.instrument(taskType, handler)

	jw := m.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(instrumented)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	m.workers = append(m.workers, jw)
	m.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)
}

func (m *WorkerManager) instrument(taskType string, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()
		defer func() {
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

			ctx := context.Background()
			m.obs.RecordJobProcessed(ctx, taskType)
			m.obs.RecordJobDuration(ctx, taskType, elapsed)
		}()

		handler(client, job)
	}
}

// Close stops all registered workers. The Zeebe client itself is owned by
// the caller and closed separately.
func (m *WorkerManager) Close() {
	for _, jw := range m.workers {
		jw.Close()
	}
	m.logger.Info("all workers stopped", zap.Int("count", len(m.workers)))
}
