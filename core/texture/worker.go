package texture

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"
)

// run is the upload worker loop. It owns a dequeued texture exclusively until its upload
// completes.
func (m *Manager) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		m.mu.Lock()
		for m.state != workerStopped && !m.readyLocked() {
			m.onAdd.Wait()
		}
		if m.state == workerStopped {
			m.mu.Unlock()
			return
		}

		t := m.queue.pop()
		if m.queue.len() == 0 {
			m.kicked = false
		}
		if m.state == workerDraining {
			t.state = StateNotLoaded
			m.finishLocked()
			m.metrics.ObserveDiscard(1)
			m.mu.Unlock()
			continue
		}
		t.state = StateUploading
		t.inFlight = true
		exec, minMip := m.exec, m.minimumMip
		m.mu.Unlock()

		start := time.Now()
		bytes, base, err := m.upload(ctx, t, exec, minMip)
		m.metrics.ObserveUpload(ModeAsync, time.Since(start), bytes, err)

		m.mu.Lock()
		m.completeLocked(t, exec, bytes, base, err)
		m.finishLocked()
		m.onSync.Broadcast()
		m.mu.Unlock()
	}
}

func (m *Manager) readyLocked() bool {
	if m.queue.len() == 0 {
		return false
	}
	return !m.cfg.WaitForKickoff || m.kicked || m.state == workerDraining
}

// uploadInline uploads t on the calling goroutine. If the worker is uploading t, it waits
// for that upload instead of starting another.
func (m *Manager) uploadInline(ctx context.Context, t *ManagedTexture, exec ExecutionContext) error {
	m.mu.Lock()
	for t.inFlight {
		m.onSync.Wait()
	}

	switch t.state {
	case StateResident:
		m.touchLocked(t)
		m.mu.Unlock()
		return nil
	case StateRetired:
		m.mu.Unlock()
		return ErrTextureRetired
	case StateQueued:
		m.queue.remove(t)
		m.finishLocked()
	}

	if exec == nil {
		exec = m.exec
	}
	if exec == nil {
		t.state = StateNotLoaded
		t.err = ErrNoExecutionContext
		m.mu.Unlock()
		return ErrNoExecutionContext
	}
	t.state = StateUploading
	t.inFlight = true
	minMip := m.minimumMip
	m.mu.Unlock()

	start := time.Now()
	bytes, base, err := m.upload(ctx, t, exec, minMip)
	m.metrics.ObserveUpload(ModeInline, time.Since(start), bytes, err)

	m.mu.Lock()
	m.completeLocked(t, exec, bytes, base, err)
	m.onSync.Broadcast()
	m.mu.Unlock()
	return err
}

// upload decodes t and hands its levels to exec. It returns the resident byte count and the
// base mip uploaded. Panics from collaborators are converted into errors.
func (m *Manager) upload(ctx context.Context, t *ManagedTexture, exec ExecutionContext, minMip int) (bytes uint64, base int, err error) {
	defer func() {
		if r := recover(); r != nil {
			bytes, base = 0, 0
			err = fmt.Errorf("texture: upload %s panicked: %v", t.asset.AssetID(), r)
		}
	}()

	if exec == nil {
		return 0, 0, ErrNoExecutionContext
	}

	chain, err := m.provider.Decode(ctx, t.asset, t.colorSpace)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", t.asset.AssetID(), err)
	}
	if chain == nil || len(chain.Levels) == 0 {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", t.asset.AssetID(), ErrEmptyMipChain)
	}

	preload := min(t.preloadMips, len(chain.Levels))
	if preload == 0 {
		preload = CalcPreloadMips(len(chain.Levels))
	}
	base = mipSkipFor(minMip, len(chain.Levels), preload)
	levels := chain.Levels[base:]

	format := chain.Format
	if format == gputypes.TextureFormatUndefined {
		format = t.colorSpace.Format()
	}

	//nolint:gosec // G115: decoded dimensions are bounded by the image decoders
	req := UploadRequest{
		Key:     t.key,
		Label:   t.asset.AssetID(),
		Format:  format,
		Extent:  gputypes.NewExtent2D(uint32(levels[0].Width), uint32(levels[0].Height)),
		BaseMip: base,
		Levels:  levels,
	}

	bytes, err = exec.UploadTexture(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: upload %s: %w", t.asset.AssetID(), err)
	}
	return bytes, base, nil
}

// completeLocked applies the outcome of an upload to t. A record revived while the upload
// ran is still Uploading here and takes the result like any other.
func (m *Manager) completeLocked(t *ManagedTexture, exec ExecutionContext, bytes uint64, base int, err error) {
	t.inFlight = false
	if t.state == StateRetired {
		// Unloaded or released while uploading.
		if err == nil {
			t.exec = exec
			t.residentMip = base
			t.residentBytes = bytes
			if m.unreferencedLocked(t) {
				m.freeLocked(t)
			}
		}
		return
	}

	if err != nil {
		t.state = StateNotLoaded
		t.err = err
		t.residentBytes = 0
		m.logger.Warn("Texture upload failed",
			zap.Stringer("key", t.key),
			zap.String("asset", t.asset.AssetID()),
			zap.Error(err))
		return
	}

	t.state = StateResident
	t.err = nil
	t.exec = exec
	t.residentMip = base
	t.residentBytes = bytes
	m.touchLocked(t)
	m.logger.Debug("Texture resident",
		zap.Stringer("key", t.key),
		zap.String("asset", t.asset.AssetID()),
		zap.Int("base_mip", base),
		zap.Uint64("bytes", bytes))
}
