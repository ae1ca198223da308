package jobs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(nil, nil, testLogger())

	err := s.Start("not a cron spec", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reconcile schedule")

	err = NewScheduler(nil, nil, testLogger()).Start("", "also bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid expiry schedule")
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil, nil, testLogger())

	// Hourly specs: entries register but never fire during the test.
	require.NoError(t, s.Start("0 * * * *", "30 * * * *"))
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestScheduler_EmptySpecsDisableJobs(t *testing.T) {
	s := NewScheduler(nil, nil, testLogger())

	require.NoError(t, s.Start("", ""))
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}
