package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)
	now := time.Now()

	require.NoError(t, l.Record("schema apply", now.Add(-2*time.Minute), now.Add(-1*time.Minute), "head=backfill-crop-slugs", nil))
	require.NoError(t, l.Record("seed load", now.Add(-30*time.Second), now, "crops=12", errors.New("connection refused")))

	runs, err := l.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	assert.Equal(t, "seed load", runs[0].Command)
	assert.Equal(t, "connection refused", runs[0].Error)
	assert.Equal(t, "schema apply", runs[1].Command)
	assert.Empty(t, runs[1].Error)
	assert.Equal(t, "head=backfill-crop-slugs", runs[1].Detail)
}

func TestRecent_Limit(t *testing.T) {
	l := openTestLedger(t)
	now := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record("status", now.Add(time.Duration(i)*time.Second), now.Add(time.Duration(i)*time.Second), "", nil))
	}

	runs, err := l.Recent(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = l.Recent(0) // defaulted
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestRecent_EmptyLedger(t *testing.T) {
	l := openTestLedger(t)
	runs, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, l.Record("schema apply", now, now, "", nil))
	require.NoError(t, l.Close())

	l2, err := Open(dir)
	require.NoError(t, err)
	defer l2.Close()
	runs, err := l2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
