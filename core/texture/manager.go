package texture

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// workerState is the lifecycle of the upload worker. It is read and written under Manager.mu
// so callers never observe an inconsistent stop/drop combination.
type workerState uint8

const (
	workerIdle workerState = iota
	workerRunning
	workerDraining
	workerStopped
)

func (s workerState) String() string {
	switch s {
	case workerIdle:
		return "idle"
	case workerRunning:
		return "running"
	case workerDraining:
		return "draining"
	case workerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type registryKey struct {
	assetID    string
	colorSpace ColorSpace
}

// ManagerStats is a point-in-time view of the manager.
type ManagerStats struct {
	Worker          string      `json:"worker"`
	Pending         int         `json:"pending"`
	Queued          int         `json:"queued"`
	Registered      int         `json:"registered"`
	MinimumMipLevel int         `json:"minimum_mip_level"`
	Memory          MemoryStats `json:"memory"`
}

// Manager owns the texture registry, the upload queue and the upload worker.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	onAdd  *sync.Cond // work queued, kickoff, drop or stop
	onSync *sync.Cond // an upload finished or the queue drained

	exec     ExecutionContext
	provider Provider
	cfg      Config
	logger   *zap.Logger
	metrics  Metrics
	policy   DemotionPolicy
	keys     *KeyGenerator

	state      workerState
	drainers   int
	kicked     bool
	queue      *uploadQueue
	pending    int
	useTick    uint64
	minimumMip int

	textures map[registryKey]*ManagedTexture
	byKey    map[Key]*ManagedTexture

	done   chan struct{}
	cancel context.CancelFunc
}

// NewManager creates a manager that uploads through exec (the default execution context,
// also used by the worker) and decodes through provider. Call Start to run the worker.
func NewManager(exec ExecutionContext, provider Provider, opts Options) *Manager {
	cfg := opts.Config.normalized()

	m := &Manager{
		exec:     exec,
		provider: provider,
		cfg:      cfg,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		policy:   opts.Policy,
		keys:     opts.Keys,
		queue:    newUploadQueue(),
		textures: make(map[registryKey]*ManagedTexture),
		byKey:    make(map[Key]*ManagedTexture),
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.metrics == nil {
		m.metrics = nopMetrics{}
	}
	if m.policy == nil {
		m.policy = LRUPolicy{Target: cfg.DemotionTarget}
	}
	if m.keys == nil {
		m.keys = NewKeyGenerator()
	}
	m.onAdd = sync.NewCond(&m.mu)
	m.onSync = sync.NewCond(&m.mu)
	return m
}

// Start launches the upload worker. It is a no-op if the worker already runs or the
// manager was closed.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != workerIdle {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state = workerRunning

	go m.run(ctx, m.done)

	m.logger.Info("Texture upload worker started",
		zap.Bool("wait_for_kickoff", m.cfg.WaitForKickoff))
}

// Close stops the worker, discards queued uploads (they return to NotLoaded), waits for an
// in-flight upload to finish and drops the registry's share of every texture.
// Blocked Synchronize callers return. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == workerStopped {
		m.mu.Unlock()
		return
	}
	wasRunning := m.state != workerIdle
	m.state = workerStopped
	discarded := m.discardQueueLocked()
	m.onAdd.Broadcast()

	registered := make([]*ManagedTexture, 0, len(m.byKey))
	for _, t := range m.byKey {
		t.registered = false
		registered = append(registered, t)
	}
	m.textures = make(map[registryKey]*ManagedTexture)
	m.byKey = make(map[Key]*ManagedTexture)
	done, cancel := m.done, m.cancel
	m.mu.Unlock()

	if wasRunning {
		<-done
		cancel()
	}
	for _, t := range registered {
		t.Release()
	}

	m.logger.Info("Texture manager closed",
		zap.Int("discarded", discarded),
		zap.Int("released", len(registered)))
}

// PreloadTexture returns the registry record for (asset, colorSpace), creating it on first
// use. The returned texture carries a share owned by the caller, who must Release it.
//
// With forceLoad the texture is uploaded on the calling goroutine through exec (nil means the
// manager's default context) and any failure is returned alongside the texture, which is then
// NotLoaded. Otherwise, if the worker runs, the texture is queued and the call returns at once.
// A record retired by UnloadTexture is revived.
func (m *Manager) PreloadTexture(ctx context.Context, asset AssetData, colorSpace ColorSpace, exec ExecutionContext, forceLoad bool) (*ManagedTexture, error) {
	if asset == nil {
		return nil, ErrTextureNotFound
	}

	m.mu.Lock()
	if m.state == workerStopped {
		m.mu.Unlock()
		return nil, ErrManagerStopped
	}

	rk := registryKey{assetID: asset.AssetID(), colorSpace: colorSpace}
	t, ok := m.textures[rk]
	if !ok {
		t = m.newTextureLocked(asset, colorSpace)
		m.textures[rk] = t
		m.byKey[t.key] = t
		m.logger.Debug("Texture registered",
			zap.Stringer("key", t.key),
			zap.String("asset", rk.assetID),
			zap.Stringer("color_space", colorSpace),
			zap.Int("preload_mips", t.preloadMips))
	}
	if t.state == StateRetired {
		t.state = StateNotLoaded
		if t.inFlight {
			t.state = StateUploading
		}
		t.err = nil
	}
	t.Retain()

	if forceLoad {
		m.mu.Unlock()
		return t, m.uploadInline(ctx, t, exec)
	}
	if m.acceptsAsyncLocked() {
		m.enqueueLocked(t)
	}
	m.mu.Unlock()
	return t, nil
}

// ScheduleTextureUpload requests that the referenced texture become resident.
//
// With allowAsync and a running worker the texture is queued (unless it is already queued,
// uploading or resident) and the call does not block. Otherwise the upload runs on the
// calling goroutine through exec (nil means the default context). Scheduling a resident
// texture records a use for demotion ordering.
func (m *Manager) ScheduleTextureUpload(ctx context.Context, ref TextureRef, exec ExecutionContext, allowAsync bool) error {
	m.mu.Lock()
	if m.state == workerStopped {
		m.mu.Unlock()
		return ErrManagerStopped
	}
	t, ok := m.byKey[ref.Key]
	if !ok {
		m.mu.Unlock()
		return ErrTextureNotFound
	}

	switch t.state {
	case StateRetired:
		m.mu.Unlock()
		return ErrTextureRetired
	case StateResident:
		m.touchLocked(t)
		m.mu.Unlock()
		return nil
	case StateQueued, StateUploading:
		if allowAsync {
			m.mu.Unlock()
			return nil
		}
	}

	if allowAsync && m.acceptsAsyncLocked() {
		m.enqueueLocked(t)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.uploadInline(ctx, t, exec)
}

// UnloadTexture retires t: it leaves the upload queue and stops being schedulable until a
// later PreloadTexture revives it. Its video memory is freed now if nothing outside the
// registry holds it, otherwise when the last share is released.
func (m *Manager) UnloadTexture(t *ManagedTexture) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queue.remove(t) {
		m.finishLocked()
		m.metrics.ObserveDiscard(1)
	}
	t.state = StateRetired
	if !t.inFlight && m.unreferencedLocked(t) {
		m.freeLocked(t)
	}
}

// ReleaseTexture removes t from the registry and drops the registry's share. A later
// PreloadTexture for the same asset creates a new record with a new key.
func (m *Manager) ReleaseTexture(t *ManagedTexture) {
	if t == nil {
		return
	}
	m.mu.Lock()
	wasRegistered := t.registered
	if wasRegistered {
		delete(m.textures, registryKey{assetID: t.asset.AssetID(), colorSpace: t.colorSpace})
		delete(m.byKey, t.key)
		t.registered = false
	}
	if m.queue.remove(t) {
		m.finishLocked()
		m.metrics.ObserveDiscard(1)
	}
	t.state = StateRetired
	m.mu.Unlock()

	if wasRegistered {
		t.Release()
	}
}

// Synchronize blocks until no upload is queued or in flight on the worker. Every texture
// queued before the call is then Resident or NotLoaded with Err set. Inline uploads
// (forceLoad, or allowAsync false) are not pending work; another goroutine may still be
// inside one when Synchronize returns.
//
// With dropRequests, queued uploads are discarded instead (they return to NotLoaded) and
// the call returns once an in-flight upload, which is never preempted, completes.
func (m *Manager) Synchronize(dropRequests bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dropRequests {
		if m.state == workerRunning {
			m.state = workerDraining
		}
		m.drainers++
		if n := m.discardQueueLocked(); n > 0 {
			m.logger.Debug("Dropped queued texture uploads", zap.Int("count", n))
		}
		m.onAdd.Broadcast()
		defer func() {
			m.drainers--
			if m.drainers == 0 && m.state == workerDraining {
				m.state = workerRunning
			}
		}()
	} else if m.cfg.WaitForKickoff && m.queue.len() > 0 {
		m.kicked = true
		m.onAdd.Signal()
	}

	for m.pending > 0 {
		m.onSync.Wait()
	}
}

// Kickoff wakes the worker without waiting. In WaitForKickoff mode it releases the queued
// batch for upload.
func (m *Manager) Kickoff() {
	m.mu.Lock()
	m.kicked = true
	m.onAdd.Signal()
	m.mu.Unlock()
}

// DemoteTexturesFromVidmem releases the video memory of resident textures chosen by the
// demotion policy among those nothing outside the registry references. Demoted textures
// keep their record and return to Resident through ScheduleTextureUpload.
func (m *Manager) DemoteTexturesFromVidmem() {
	stats := m.memoryStats(nil)

	m.mu.Lock()
	candidates := make([]DemotionCandidate, 0, len(m.byKey))
	for _, t := range m.byKey {
		if t.state == StateResident && m.unreferencedLocked(t) {
			candidates = append(candidates, DemotionCandidate{
				Key:     t.key,
				AssetID: t.asset.AssetID(),
				Bytes:   t.residentBytes,
				LastUse: t.lastUse,
			})
		}
	}

	var demoted int
	var freed uint64
	for _, key := range m.policy.SelectForDemotion(candidates, stats) {
		t, ok := m.byKey[key]
		if !ok || t.state != StateResident || !m.unreferencedLocked(t) {
			continue
		}
		freed += t.residentBytes
		m.freeLocked(t)
		t.state = StateDemoted
		demoted++
	}
	m.mu.Unlock()

	m.metrics.ObserveDemotion(demoted)
	m.logger.Info("Demoted textures from video memory",
		zap.Int("candidates", len(candidates)),
		zap.Int("demoted", demoted),
		zap.Uint64("freed_bytes", freed))
}

// UpdateMipMapSkipLevel recomputes the global minimum mip level from the memory telemetry
// of exec (nil means the default context) and returns it. Subsequent uploads skip that many
// of the finest levels, never touching the preload placeholder.
func (m *Manager) UpdateMipMapSkipLevel(exec ExecutionContext) int {
	stats := m.memoryStats(exec)

	m.mu.Lock()
	prev := m.minimumMip
	m.minimumMip = nextMipSkipLevel(prev, stats, m.cfg)
	level := m.minimumMip
	m.mu.Unlock()

	m.metrics.SetMipSkipLevel(level)
	if level != prev {
		m.logger.Info("Mip skip level changed",
			zap.Int("from", prev),
			zap.Int("to", level),
			zap.Float64("utilization", stats.Utilization()))
	}
	return level
}

// MinimumMipLevel returns the current global mip-skip level.
func (m *Manager) MinimumMipLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minimumMip
}

// Lookup returns the registered texture for key without taking a share.
func (m *Manager) Lookup(key Key) (*ManagedTexture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byKey[key]
	return t, ok
}

// Pending returns the number of uploads queued or in flight on the worker.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Snapshot returns the residency of every registered texture ordered by asset id.
func (m *Manager) Snapshot() []TextureInfo {
	m.mu.Lock()
	infos := make([]TextureInfo, 0, len(m.byKey))
	for _, t := range m.byKey {
		infos = append(infos, t.infoLocked())
	}
	m.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].AssetID != infos[j].AssetID {
			return infos[i].AssetID < infos[j].AssetID
		}
		return infos[i].ColorSpace < infos[j].ColorSpace
	})
	return infos
}

// Stats returns a summary of the manager and its default execution context.
func (m *Manager) Stats() ManagerStats {
	mem := m.memoryStats(nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	return ManagerStats{
		Worker:          m.state.String(),
		Pending:         m.pending,
		Queued:          m.queue.len(),
		Registered:      len(m.byKey),
		MinimumMipLevel: m.minimumMip,
		Memory:          mem,
	}
}

func (m *Manager) newTextureLocked(asset AssetData, colorSpace ColorSpace) *ManagedTexture {
	key := m.keys.Next()
	for {
		if _, taken := m.byKey[key]; !taken {
			break
		}
		key = m.keys.Next()
	}

	t := &ManagedTexture{
		key:         key,
		asset:       asset,
		colorSpace:  colorSpace,
		preloadMips: CalcPreloadMips(asset.MipLevels()),
		lock:        &m.mu,
		onRelease:   m.released,
		registered:  true,
	}
	t.refs.Store(1)
	return t
}

// released runs after a share of t is dropped. A retired texture left with only the
// registry's share frees its memory; the last share destroys it.
func (m *Manager) released(t *ManagedTexture, remaining int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if remaining > 0 {
		if t.state == StateRetired && m.unreferencedLocked(t) {
			m.freeLocked(t)
		}
		return
	}
	if m.queue.remove(t) {
		m.finishLocked()
	}
	t.state = StateRetired
	if !t.inFlight {
		m.freeLocked(t)
	}
}

func (m *Manager) acceptsAsyncLocked() bool {
	return m.state == workerRunning || m.state == workerDraining
}

// enqueueLocked queues t unless it is already queued, uploading or resident.
func (m *Manager) enqueueLocked(t *ManagedTexture) bool {
	if t.inFlight {
		return false
	}
	switch t.state {
	case StateQueued, StateUploading, StateResident, StateRetired:
		return false
	}
	if !m.queue.push(t) {
		return false
	}
	t.state = StateQueued
	m.pending++
	m.metrics.SetPending(m.pending)
	m.onAdd.Signal()
	return true
}

// finishLocked accounts for one queued upload leaving the pipeline.
func (m *Manager) finishLocked() {
	m.pending--
	m.metrics.SetPending(m.pending)
	if m.pending == 0 {
		m.onSync.Broadcast()
	}
}

// discardQueueLocked empties the queue, returning every entry to NotLoaded.
func (m *Manager) discardQueueLocked() int {
	dropped := m.queue.drain()
	for _, t := range dropped {
		t.state = StateNotLoaded
		m.finishLocked()
	}
	if len(dropped) > 0 {
		m.metrics.ObserveDiscard(len(dropped))
	}
	return len(dropped)
}

// unreferencedLocked reports whether only the registry (or nobody) holds t.
func (m *Manager) unreferencedLocked(t *ManagedTexture) bool {
	others := t.refs.Load()
	if t.registered {
		others--
	}
	return others <= 0
}

func (m *Manager) freeLocked(t *ManagedTexture) {
	if t.exec != nil {
		t.exec.ReleaseTexture(t.key)
	}
	t.exec = nil
	t.residentBytes = 0
}

func (m *Manager) touchLocked(t *ManagedTexture) {
	m.useTick++
	t.lastUse = m.useTick
}

func (m *Manager) memoryStats(exec ExecutionContext) MemoryStats {
	if exec == nil {
		exec = m.exec
	}
	if exec == nil {
		return MemoryStats{}
	}
	return exec.MemoryStats()
}
