package texture

import (
	"context"
	"errors"
	"sync"
)

type fakeAsset struct {
	id   string
	mips int
}

func (a fakeAsset) AssetID() string { return a.id }
func (a fakeAsset) MipLevels() int  { return a.mips }

// fakeProvider decodes a square chain of a.mips levels, the coarsest being 1x1.
type fakeProvider struct {
	mu       sync.Mutex
	failures map[string]error
	panics   map[string]bool
	decoded  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{failures: map[string]error{}, panics: map[string]bool{}}
}

func (p *fakeProvider) fail(id string, err error) {
	p.mu.Lock()
	p.failures[id] = err
	p.mu.Unlock()
}

func (p *fakeProvider) Decode(_ context.Context, asset AssetData, cs ColorSpace) (*MipChain, error) {
	p.mu.Lock()
	p.decoded = append(p.decoded, asset.AssetID())
	err := p.failures[asset.AssetID()]
	panics := p.panics[asset.AssetID()]
	p.mu.Unlock()

	if panics {
		panic("decoder exploded")
	}
	if err != nil {
		return nil, err
	}

	n := max(asset.MipLevels(), 1)
	chain := &MipChain{Format: cs.Format()}
	for i := 0; i < n; i++ {
		size := 1 << (n - 1 - i)
		chain.Levels = append(chain.Levels, MipLevel{
			Width:  size,
			Height: size,
			Pixels: make([]byte, size*size*4),
		})
	}
	return chain, nil
}

var errBudget = errors.New("fake: budget exceeded")

// fakeExec records uploads. When gate is non-nil every upload signals entered and then
// blocks until gate yields.
type fakeExec struct {
	mu       sync.Mutex
	budget   uint64
	used     uint64
	resident map[Key]uint64
	uploads  []UploadRequest
	released []Key

	gate    chan struct{}
	entered chan Key
}

func newFakeExec(budget uint64) *fakeExec {
	return &fakeExec{budget: budget, resident: map[Key]uint64{}}
}

func newGatedExec(budget uint64) *fakeExec {
	e := newFakeExec(budget)
	e.gate = make(chan struct{})
	e.entered = make(chan Key, 16)
	return e
}

func (e *fakeExec) UploadTexture(_ context.Context, req UploadRequest) (uint64, error) {
	if e.gate != nil {
		e.entered <- req.Key
		<-e.gate
	}

	var n uint64
	for _, l := range req.Levels {
		n += uint64(len(l.Pixels))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.budget > 0 && e.used-e.resident[req.Key]+n > e.budget {
		return 0, errBudget
	}
	e.used -= e.resident[req.Key]
	e.resident[req.Key] = n
	e.used += n
	e.uploads = append(e.uploads, req)
	return n, nil
}

func (e *fakeExec) ReleaseTexture(key Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.used -= e.resident[key]
	delete(e.resident, key)
	e.released = append(e.released, key)
}

func (e *fakeExec) MemoryStats() MemoryStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MemoryStats{BudgetBytes: e.budget, UsedBytes: e.used, TextureCount: len(e.resident)}
}

func (e *fakeExec) setUsage(used uint64) {
	e.mu.Lock()
	e.used = used
	e.mu.Unlock()
}

func (e *fakeExec) uploadOrder() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.uploads))
	for _, u := range e.uploads {
		out = append(out, u.Label)
	}
	return out
}

func (e *fakeExec) lastUpload() UploadRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uploads[len(e.uploads)-1]
}

func (e *fakeExec) isResident(key Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.resident[key]
	return ok
}
