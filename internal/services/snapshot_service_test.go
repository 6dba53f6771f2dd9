package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/events"

	"github.com/stretchr/testify/require"
)

func TestSnapshotService_WritesTimestampedFiles(t *testing.T) {
	dir := t.TempDir()
	logger := testLogger()
	s := NewSnapshotService(config.BackupConfig{Dir: dir, QueueSize: 4}, events.NewPublisher(nil, logger), logger)
	s.Start()

	s.Enqueue("chains", []string{"alpha", "beta"})
	s.Enqueue("chains", []string{"alpha", "beta", "gamma"})
	s.Stop() // drains the queue

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "each enqueue produces its own timestamped file")

	for _, entry := range entries {
		require.True(t, strings.HasPrefix(entry.Name(), "chains-"))
		require.True(t, strings.HasSuffix(entry.Name(), ".json"))

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		var payload []string
		require.NoError(t, json.Unmarshal(data, &payload))
		require.Contains(t, payload, "alpha")
	}
}

func TestSnapshotService_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	logger := testLogger()
	s := NewSnapshotService(config.BackupConfig{Dir: t.TempDir(), QueueSize: 1}, events.NewPublisher(nil, logger), logger)
	// worker not started, so the queue fills after one job

	s.Enqueue("chains", "a")
	done := make(chan struct{})
	go func() {
		s.Enqueue("chains", "b") // must not block
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	s.Start()
	s.Stop()
}
