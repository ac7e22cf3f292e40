package texture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestManager(t *testing.T, exec *fakeExec, cfg Config) (*Manager, *fakeProvider) {
	t.Helper()
	p := newFakeProvider()
	m := NewManager(exec, p, Options{Config: cfg})
	m.Start()
	t.Cleanup(m.Close)
	return m, p
}

func preload(t *testing.T, m *Manager, id string, mips int) *ManagedTexture {
	t.Helper()
	tex, err := m.PreloadTexture(context.Background(), fakeAsset{id: id, mips: mips}, ColorSpaceSRGB, nil, false)
	require.NoError(t, err)
	require.NotNil(t, tex)
	return tex
}

func waitEntered(t *testing.T, e *fakeExec) Key {
	t.Helper()
	select {
	case k := <-e.entered:
		return k
	case <-time.After(waitFor):
		t.Fatal("upload never started")
		return InvalidKey
	}
}

func TestManager_ScheduleAndSynchronize(t *testing.T) {
	exec := newFakeExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())

	a := preload(t, m, "a", 6)
	b := preload(t, m, "b", 6)
	c := preload(t, m, "c", 6)

	m.Synchronize(false)

	for _, tex := range []*ManagedTexture{a, b, c} {
		assert.Equal(t, StateResident, tex.State(), tex.Asset().AssetID())
		assert.True(t, exec.isResident(tex.Key()))
		assert.NoError(t, tex.Err())
	}
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, []string{"a", "b", "c"}, exec.uploadOrder())
}

func TestManager_FIFOOrder(t *testing.T) {
	exec := newFakeExec(0)
	cfg := DefaultConfig()
	cfg.WaitForKickoff = true
	m, _ := newTestManager(t, exec, cfg)

	want := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("tex-%d", i)
		preload(t, m, id, 3)
		want = append(want, id)
	}
	assert.Equal(t, 8, m.Stats().Queued)

	m.Synchronize(false)

	assert.Equal(t, want, exec.uploadOrder())
}

func TestManager_SynchronizeDropRequests(t *testing.T) {
	exec := newGatedExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())

	x := preload(t, m, "x", 4)
	assert.Equal(t, x.Key(), waitEntered(t, exec))

	a := preload(t, m, "a", 4)
	b := preload(t, m, "b", 4)
	assert.Equal(t, StateQueued, a.State())
	assert.Equal(t, 3, m.Pending())

	done := make(chan struct{})
	go func() {
		m.Synchronize(true)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Stats().Queued == 0 }, waitFor, tick)
	assert.Equal(t, StateNotLoaded, a.State())
	assert.Equal(t, StateNotLoaded, b.State())
	assert.Equal(t, StateUploading, x.State())

	select {
	case <-done:
		t.Fatal("synchronize returned before the in-flight upload completed")
	default:
	}

	close(exec.gate)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("synchronize did not return")
	}

	assert.Equal(t, StateResident, x.State())
	assert.Equal(t, StateNotLoaded, a.State())
	assert.Equal(t, StateNotLoaded, b.State())
	assert.Equal(t, 0, m.Pending())
	assert.Len(t, exec.uploadOrder(), 1)

	// The worker accepts work again after the drop.
	require.NoError(t, m.ScheduleTextureUpload(context.Background(), RefOf(a), nil, true))
	m.Synchronize(false)
	assert.Equal(t, StateResident, a.State())
	assert.Equal(t, "running", m.Stats().Worker)
}

func TestManager_PreloadDeduplicates(t *testing.T) {
	m, _ := newTestManager(t, newFakeExec(0), DefaultConfig())
	ctx := context.Background()
	asset := fakeAsset{id: "stone", mips: 8}

	first, err := m.PreloadTexture(ctx, asset, ColorSpaceSRGB, nil, false)
	require.NoError(t, err)
	second, err := m.PreloadTexture(ctx, asset, ColorSpaceSRGB, nil, false)
	require.NoError(t, err)
	linear, err := m.PreloadTexture(ctx, asset, ColorSpaceLinear, nil, false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.Key(), second.Key())
	assert.NotEqual(t, first.Key(), linear.Key())
	assert.Equal(t, 3, first.RefCount())
	assert.Equal(t, 2, m.Stats().Registered)
	assert.Equal(t, PreloadMipCount, first.PreloadMips())
}

func TestManager_ConcurrentPreloadSameAsset(t *testing.T) {
	m, _ := newTestManager(t, newFakeExec(0), DefaultConfig())

	const n = 16
	keys := make(chan Key, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tex, err := m.PreloadTexture(context.Background(), fakeAsset{id: "shared", mips: 5}, ColorSpaceSRGB, nil, false)
			if assert.NoError(t, err) {
				keys <- tex.Key()
			}
		}()
	}
	wg.Wait()
	close(keys)

	var first Key
	for k := range keys {
		if first == InvalidKey {
			first = k
		}
		assert.Equal(t, first, k)
	}
	assert.Equal(t, 1, m.Stats().Registered)
}

func TestManager_DemoteAndReschedule(t *testing.T) {
	exec := newFakeExec(0)
	m, _ := newTestManager(t, exec, Config{})

	idle := preload(t, m, "idle", 5)
	held := preload(t, m, "held", 5)
	m.Synchronize(false)
	require.Equal(t, StateResident, idle.State())

	// Only the registry references idle now.
	assert.False(t, idle.Release())

	m.DemoteTexturesFromVidmem()

	assert.Equal(t, StateDemoted, idle.State())
	assert.False(t, exec.isResident(idle.Key()))
	assert.Zero(t, idle.ResidentBytes())
	assert.Equal(t, StateResident, held.State())
	assert.True(t, exec.isResident(held.Key()))

	require.NoError(t, m.ScheduleTextureUpload(context.Background(), RefOf(idle), nil, true))
	m.Synchronize(false)

	assert.Equal(t, StateResident, idle.State())
	assert.True(t, exec.isResident(idle.Key()))
}

func TestManager_DemotionPolicyOrder(t *testing.T) {
	exec := newFakeExec(0)
	p := newFakeProvider()

	var got []DemotionCandidate
	policy := DemotionPolicyFunc(func(c []DemotionCandidate, _ MemoryStats) []Key {
		got = append(got, c...)
		return nil
	})
	m := NewManager(exec, p, Options{Config: DefaultConfig(), Policy: policy})
	t.Cleanup(m.Close)

	ctx := context.Background()
	for _, id := range []string{"one", "two"} {
		tex, err := m.PreloadTexture(ctx, fakeAsset{id: id, mips: 3}, ColorSpaceSRGB, nil, true)
		require.NoError(t, err)
		tex.Release()
	}
	one, _ := m.PreloadTexture(ctx, fakeAsset{id: "one", mips: 3}, ColorSpaceSRGB, nil, true)
	one.Release()

	m.DemoteTexturesFromVidmem()

	require.Len(t, got, 2)
	byID := map[string]DemotionCandidate{}
	for _, c := range got {
		byID[c.AssetID] = c
	}
	assert.Greater(t, byID["one"].LastUse, byID["two"].LastUse, "reuse refreshes recency")
	assert.Equal(t, StateResident, one.State())
}

func TestManager_FailedUpload(t *testing.T) {
	exec := newFakeExec(0)
	m, p := newTestManager(t, exec, DefaultConfig())
	errCorrupt := errors.New("corrupt header")
	p.fail("b", errCorrupt)

	a := preload(t, m, "a", 4)
	b := preload(t, m, "b", 4)
	c := preload(t, m, "c", 4)
	m.Synchronize(false)

	assert.Equal(t, StateResident, a.State())
	assert.Equal(t, StateResident, c.State())
	assert.Equal(t, StateNotLoaded, b.State())
	assert.ErrorIs(t, b.Err(), errCorrupt)
	assert.False(t, exec.isResident(b.Key()))

	p.fail("b", nil)
	require.NoError(t, m.ScheduleTextureUpload(context.Background(), RefOf(b), nil, true))
	m.Synchronize(false)

	assert.Equal(t, StateResident, b.State())
	assert.NoError(t, b.Err())
}

func TestManager_UploadPanicBecomesError(t *testing.T) {
	m, p := newTestManager(t, newFakeExec(0), DefaultConfig())
	p.panics["boom"] = true

	tex, err := m.PreloadTexture(context.Background(), fakeAsset{id: "boom", mips: 2}, ColorSpaceSRGB, nil, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	require.NotNil(t, tex)
	assert.Equal(t, StateNotLoaded, tex.State())
}

func TestManager_BudgetFailureSetsErr(t *testing.T) {
	exec := newFakeExec(16)
	m, _ := newTestManager(t, exec, DefaultConfig())

	tex, err := m.PreloadTexture(context.Background(), fakeAsset{id: "big", mips: 6}, ColorSpaceSRGB, nil, true)

	assert.ErrorIs(t, err, errBudget)
	assert.ErrorIs(t, tex.Err(), errBudget)
	assert.Equal(t, StateNotLoaded, tex.State())
}

func TestManager_InlineWithoutWorker(t *testing.T) {
	exec := newFakeExec(0)
	m := NewManager(exec, newFakeProvider(), Options{Config: DefaultConfig()})
	t.Cleanup(m.Close)
	ctx := context.Background()

	forced, err := m.PreloadTexture(ctx, fakeAsset{id: "forced", mips: 4}, ColorSpaceLinear, nil, true)
	require.NoError(t, err)
	assert.Equal(t, StateResident, forced.State())
	assert.Equal(t, ColorSpaceLinear.Format(), exec.lastUpload().Format)

	lazy, err := m.PreloadTexture(ctx, fakeAsset{id: "lazy", mips: 4}, ColorSpaceSRGB, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StateNotLoaded, lazy.State(), "nothing queues while the worker is idle")
	assert.Equal(t, 0, m.Pending())

	// allowAsync falls back to an inline upload when no worker runs.
	require.NoError(t, m.ScheduleTextureUpload(ctx, RefOf(lazy), nil, true))
	assert.Equal(t, StateResident, lazy.State())
}

func TestManager_ExplicitExecutionContext(t *testing.T) {
	def := newFakeExec(0)
	other := newFakeExec(0)
	m, _ := newTestManager(t, def, DefaultConfig())
	ctx := context.Background()

	tex, err := m.PreloadTexture(ctx, fakeAsset{id: "aux", mips: 3}, ColorSpaceSRGB, other, true)
	require.NoError(t, err)

	assert.True(t, other.isResident(tex.Key()))
	assert.False(t, def.isResident(tex.Key()))

	tex.Release()
	m.UnloadTexture(tex)
	assert.False(t, other.isResident(tex.Key()), "memory is returned to the context that holds it")
}

func TestManager_InlineWaitsForWorkerUpload(t *testing.T) {
	exec := newGatedExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())

	tex := preload(t, m, "shared", 4)
	waitEntered(t, exec)

	errc := make(chan error, 1)
	go func() {
		errc <- m.ScheduleTextureUpload(context.Background(), RefOf(tex), nil, false)
	}()

	close(exec.gate)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("inline schedule did not return")
	}

	assert.Equal(t, StateResident, tex.State())
	assert.Len(t, exec.uploadOrder(), 1)
}

func TestManager_WaitForKickoff(t *testing.T) {
	exec := newFakeExec(0)
	cfg := DefaultConfig()
	cfg.WaitForKickoff = true
	m, _ := newTestManager(t, exec, cfg)

	a := preload(t, m, "a", 3)
	b := preload(t, m, "b", 3)

	assert.Never(t, func() bool { return len(exec.uploadOrder()) > 0 }, 100*time.Millisecond, tick)
	assert.Equal(t, StateQueued, a.State())

	m.Kickoff()

	assert.Eventually(t, func() bool {
		return a.State() == StateResident && b.State() == StateResident
	}, waitFor, tick)
	assert.Equal(t, 0, m.Pending())
}

func TestManager_UnloadQueued(t *testing.T) {
	exec := newFakeExec(0)
	cfg := DefaultConfig()
	cfg.WaitForKickoff = true
	m, _ := newTestManager(t, exec, cfg)
	ctx := context.Background()

	tex := preload(t, m, "a", 3)
	require.Equal(t, 1, m.Pending())

	m.UnloadTexture(tex)

	assert.Equal(t, StateRetired, tex.State())
	assert.Equal(t, 0, m.Pending())
	assert.ErrorIs(t, m.ScheduleTextureUpload(ctx, RefOf(tex), nil, true), ErrTextureRetired)

	revived := preload(t, m, "a", 3)
	assert.Equal(t, tex.Key(), revived.Key())
	assert.Equal(t, StateQueued, revived.State())

	m.Synchronize(false)
	assert.Equal(t, StateResident, revived.State())
}

func TestManager_UnloadResident(t *testing.T) {
	exec := newFakeExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())
	ctx := context.Background()

	free, err := m.PreloadTexture(ctx, fakeAsset{id: "free", mips: 3}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)
	held, err := m.PreloadTexture(ctx, fakeAsset{id: "held", mips: 3}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)

	free.Release()
	m.UnloadTexture(free)
	assert.False(t, exec.isResident(free.Key()))

	m.UnloadTexture(held)
	assert.True(t, exec.isResident(held.Key()), "a caller still holds the texture")
	assert.Equal(t, StateRetired, held.State())

	held.Release()
	assert.False(t, exec.isResident(held.Key()))
	_, ok := m.Lookup(held.Key())
	assert.True(t, ok, "unload keeps the registry record")
}

func TestManager_ReleaseTexture(t *testing.T) {
	exec := newFakeExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())
	ctx := context.Background()

	tex, err := m.PreloadTexture(ctx, fakeAsset{id: "a", mips: 3}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)
	key := tex.Key()

	m.ReleaseTexture(tex)

	_, ok := m.Lookup(key)
	assert.False(t, ok)
	assert.Equal(t, StateRetired, tex.State())
	assert.True(t, exec.isResident(key), "the caller's share keeps the memory")
	assert.ErrorIs(t, m.ScheduleTextureUpload(ctx, TextureRef{Key: key}, nil, true), ErrTextureNotFound)

	assert.True(t, tex.Release())
	assert.False(t, exec.isResident(key))
	assert.Panics(t, func() { tex.Release() })

	again, err := m.PreloadTexture(ctx, fakeAsset{id: "a", mips: 3}, ColorSpaceSRGB, nil, false)
	require.NoError(t, err)
	assert.NotEqual(t, key, again.Key())
}

func TestManager_MipSkipLevel(t *testing.T) {
	const budget = 16 << 20
	exec := newFakeExec(budget)
	m, _ := newTestManager(t, exec, DefaultConfig())
	ctx := context.Background()

	exec.setUsage(budget * 95 / 100)
	assert.Equal(t, 1, m.UpdateMipMapSkipLevel(nil))
	assert.Equal(t, 1, m.MinimumMipLevel())

	tex, err := m.PreloadTexture(ctx, fakeAsset{id: "wall", mips: 8}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, tex.ResidentMip())
	req := exec.lastUpload()
	assert.Equal(t, 1, req.BaseMip)
	assert.Len(t, req.Levels, 7)
	assert.Equal(t, uint32(64), req.Extent.Width)

	for i := 0; i < 10; i++ {
		m.UpdateMipMapSkipLevel(nil)
	}
	assert.Equal(t, DefaultMaxMipSkip, m.MinimumMipLevel())

	small, err := m.PreloadTexture(ctx, fakeAsset{id: "decal", mips: 5}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, small.ResidentMip(), "the placeholder levels are never skipped")

	exec.setUsage(0)
	assert.Equal(t, DefaultMaxMipSkip-1, m.UpdateMipMapSkipLevel(nil))
}

func TestManager_Close(t *testing.T) {
	exec := newFakeExec(0)
	cfg := DefaultConfig()
	cfg.WaitForKickoff = true
	m, _ := newTestManager(t, exec, cfg)
	ctx := context.Background()

	resident, err := m.PreloadTexture(ctx, fakeAsset{id: "resident", mips: 3}, ColorSpaceSRGB, nil, true)
	require.NoError(t, err)
	resident.Release()
	queued := preload(t, m, "queued", 3)

	m.Close()

	assert.Equal(t, StateNotLoaded, queued.State())
	assert.False(t, exec.isResident(resident.Key()))
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, "stopped", m.Stats().Worker)

	m.Synchronize(false)
	m.Close()

	_, err = m.PreloadTexture(ctx, fakeAsset{id: "late", mips: 3}, ColorSpaceSRGB, nil, false)
	assert.ErrorIs(t, err, ErrManagerStopped)
	assert.ErrorIs(t, m.ScheduleTextureUpload(ctx, RefOf(queued), nil, true), ErrManagerStopped)
}

func TestManager_CloseReleasesSynchronize(t *testing.T) {
	exec := newGatedExec(0)
	m, _ := newTestManager(t, exec, DefaultConfig())

	preload(t, m, "a", 3)
	waitEntered(t, exec)
	b := preload(t, m, "b", 3)

	synced := make(chan struct{})
	go func() {
		m.Synchronize(false)
		close(synced)
	}()
	closed := make(chan struct{})
	go func() {
		m.Close()
		close(closed)
	}()

	assert.Eventually(t, func() bool { return b.State() == StateNotLoaded }, waitFor, tick)
	select {
	case <-synced:
		t.Fatal("synchronize returned while an upload was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(exec.gate)
	for _, done := range []chan struct{}{synced, closed} {
		select {
		case <-done:
		case <-time.After(waitFor):
			t.Fatal("close left a caller blocked")
		}
	}
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, "stopped", m.Stats().Worker)
	assert.Equal(t, []string{"a"}, exec.uploadOrder())
}

func TestManager_ReviveDuringUpload(t *testing.T) {
	t.Run("ForceLoad", func(t *testing.T) {
		exec := newGatedExec(0)
		m, _ := newTestManager(t, exec, DefaultConfig())

		tex := preload(t, m, "x", 4)
		waitEntered(t, exec)
		m.UnloadTexture(tex)
		assert.Equal(t, StateRetired, tex.State())

		type result struct {
			tex *ManagedTexture
			err error
		}
		res := make(chan result, 1)
		go func() {
			revived, err := m.PreloadTexture(context.Background(), fakeAsset{id: "x", mips: 4}, ColorSpaceSRGB, nil, true)
			res <- result{revived, err}
		}()
		// The revived record reports the worker's upload instead of starting its own.
		assert.Eventually(t, func() bool { return tex.State() == StateUploading }, waitFor, tick)

		close(exec.gate)
		var r result
		select {
		case r = <-res:
		case <-time.After(waitFor):
			t.Fatal("forced preload did not return")
		}
		require.NoError(t, r.err)
		assert.Same(t, tex, r.tex)
		assert.Equal(t, StateResident, tex.State())
		assert.True(t, exec.isResident(tex.Key()))
		assert.Len(t, exec.uploadOrder(), 1)
	})

	t.Run("Async", func(t *testing.T) {
		exec := newGatedExec(0)
		m, _ := newTestManager(t, exec, DefaultConfig())

		tex := preload(t, m, "x", 4)
		waitEntered(t, exec)
		m.UnloadTexture(tex)

		revived := preload(t, m, "x", 4)
		assert.Same(t, tex, revived)
		assert.Equal(t, StateUploading, tex.State())
		assert.Equal(t, 0, m.Stats().Queued)
		assert.Equal(t, 1, m.Pending())

		close(exec.gate)
		m.Synchronize(false)

		assert.Equal(t, StateResident, tex.State())
		assert.Equal(t, 0, m.Pending())
		assert.Len(t, exec.uploadOrder(), 1)
	})
}

func TestManager_SnapshotAndStats(t *testing.T) {
	exec := newFakeExec(1 << 20)
	m, _ := newTestManager(t, exec, DefaultConfig())

	preload(t, m, "b", 2)
	preload(t, m, "a", 2)
	m.Synchronize(false)

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].AssetID)
	assert.Equal(t, "resident", snap[0].State)
	assert.Equal(t, 2, snap[0].RefCount)
	assert.Equal(t, uint64(20), snap[0].ResidentBytes)

	stats := m.Stats()
	assert.Equal(t, 2, stats.Registered)
	assert.Equal(t, uint64(40), stats.Memory.UsedBytes)
	assert.Equal(t, 2, stats.Memory.TextureCount)
}
