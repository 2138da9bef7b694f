package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/testutil"
)

func faultCache(t *testing.T) (*TieredCache, *testutil.FakeStore, *monitor.Monitor) {
	fs := testutil.NewFakeStore()
	mon := monitor.New(monitor.Config{}, zap.NewNop())
	tc, err := New(DefaultConfig(), fs, mon, zap.NewNop())
	require.NoError(t, err)
	return tc, fs, mon
}

func TestGetStoreReadError(t *testing.T) {
	tc, fs, mon := faultCache(t)
	ctx := testutil.TestContext(t)

	require.NoError(t, tc.Set(ctx, "text", "summarize", nil, Entry{"result": "x"}, ""))
	tc.InvalidateMemory("test")

	fs.GetErr = errors.New("read timeout")

	_, ok := tc.Get(ctx, "text", "summarize", nil, "")
	assert.False(t, ok)
	assert.Equal(t, int64(1), mon.PerformanceStats().CacheMisses)
}

func TestSetStoreWriteErrorStillServesFromMemory(t *testing.T) {
	tc, fs, _ := faultCache(t)
	ctx := testutil.TestContext(t)

	fs.SetErr = errors.New("write refused")

	require.NoError(t, tc.Set(ctx, "text", "summarize", nil, Entry{"result": "x"}, ""))
	assert.Equal(t, 0, fs.Len())

	// the write failure must not break reads, the memory tier has the entry
	entry, ok := tc.Get(ctx, "text", "summarize", nil, "")
	require.True(t, ok)
	assert.Equal(t, "x", entry["result"])
}

func TestInvalidateScanError(t *testing.T) {
	tc, fs, mon := faultCache(t)
	ctx := testutil.TestContext(t)

	require.NoError(t, tc.Set(ctx, "text", "summarize", nil, Entry{"result": "x"}, ""))
	fs.ScanErr = errors.New("scan refused")

	tc.InvalidateAll(ctx, "test")

	stats := mon.PerformanceStats()
	assert.Equal(t, int64(1), stats.TotalInvalidations)
	assert.Equal(t, int64(0), stats.TotalKeysInvalidated)
	assert.Equal(t, 1, fs.Len())
}

func TestInvalidateDeleteError(t *testing.T) {
	tc, fs, mon := faultCache(t)
	ctx := testutil.TestContext(t)

	require.NoError(t, tc.Set(ctx, "text", "summarize", nil, Entry{"result": "x"}, ""))
	fs.DeleteErr = errors.New("delete refused")

	tc.InvalidateAll(ctx, "test")

	stats := mon.PerformanceStats()
	assert.Equal(t, int64(0), stats.TotalKeysInvalidated)
	assert.Equal(t, 1, fs.Len())
}

func TestGetDisconnectedStoreFallsThrough(t *testing.T) {
	tc, fs, _ := faultCache(t)
	ctx := testutil.TestContext(t)

	require.NoError(t, tc.Set(ctx, "text", "summarize", nil, Entry{"result": "x"}, ""))
	tc.InvalidateMemory("test")
	fs.Disconnected = true

	_, ok := tc.Get(ctx, "text", "summarize", nil, "")
	assert.False(t, ok)

	// reconnect and the tier-2 copy is intact
	fs.Disconnected = false
	entry, ok := tc.Get(ctx, "text", "summarize", nil, "")
	require.True(t, ok)
	assert.Equal(t, "x", entry["result"])
}
