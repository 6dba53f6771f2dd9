package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/events"
	"basket-backend/internal/metrics"

	"github.com/sirupsen/logrus"
)

// snapshotJob is one queued backup: a registry name and the full catalog
// captured at enqueue time.
type snapshotJob struct {
	registry string
	payload  interface{}
}

// SnapshotService writes timestamped JSON snapshots of each registry to the
// backup directory. It is an asynchronous, bounded work queue: Enqueue
// never blocks the mutation that triggered it, and a failed or dropped
// snapshot is reported to the operator channel instead of failing the call.
//
// Snapshots are whole-catalog writes, so write amplification grows with
// catalog size. Accepted while catalogs stay small.
type SnapshotService struct {
	dir    string
	queue  chan snapshotJob
	events *events.Publisher
	logger *logrus.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSnapshotService creates the service. Call Start before Enqueue.
func NewSnapshotService(cfg config.BackupConfig, publisher *events.Publisher, logger *logrus.Logger) *SnapshotService {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SnapshotService{
		dir:    cfg.ResolveDir(),
		queue:  make(chan snapshotJob, queueSize),
		events: publisher,
		logger: logger,
	}
}

// Start launches the snapshot worker.
func (s *SnapshotService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for job := range s.queue {
			s.write(job)
		}
	}()
	s.logger.WithField("dir", s.dir).Info("snapshot service started")
}

// Stop drains the queue and stops the worker.
func (s *SnapshotService) Stop() {
	s.stopOnce.Do(func() {
		close(s.queue)
		s.wg.Wait()
	})
}

// Enqueue queues a snapshot of one registry. Never blocks: when the queue
// is full the snapshot is dropped and reported.
func (s *SnapshotService) Enqueue(registry string, payload interface{}) {
	select {
	case s.queue <- snapshotJob{registry: registry, payload: payload}:
	default:
		s.logger.WithField("registry", registry).Warn("snapshot queue full, backup dropped")
		metrics.SnapshotFailures.WithLabelValues(registry, "queue_full").Inc()
		s.events.Publish(events.SubjectBackupFailed, events.BackupFailureEvent{
			Registry:  registry,
			Reason:    "queue_full",
			Timestamp: time.Now(),
		})
	}
}

func (s *SnapshotService) write(job snapshotJob) {
	if err := s.writeFile(job); err != nil {
		s.logger.WithField("registry", job.registry).WithError(err).Error("failed to write backup snapshot")
		metrics.SnapshotFailures.WithLabelValues(job.registry, "write_error").Inc()
		s.events.Publish(events.SubjectBackupFailed, events.BackupFailureEvent{
			Registry:  job.registry,
			Reason:    err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	metrics.SnapshotsWritten.WithLabelValues(job.registry).Inc()
}

func (s *SnapshotService) writeFile(job snapshotJob) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	data, err := json.MarshalIndent(job.payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", job.registry, time.Now().UTC().Format("20060102T150405.000000000Z"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	s.logger.WithFields(logrus.Fields{
		"registry": job.registry,
		"path":     path,
	}).Debug("backup snapshot written")
	return nil
}
