package devhost

import (
	"sort"
	"sync"

	"github.com/teranos/spritegen/host"
)

type registeredTap struct {
	tap host.Tap
	fn  func() error
}

// compilation is one build of a Host. Taps run in stage order, ties broken
// by registration order.
type compilation struct {
	id string

	mu     sync.Mutex
	deps   []string
	taps   []registeredTap
	assets map[string][]byte
}

func newCompilation(id string) *compilation {
	return &compilation{
		id:     id,
		assets: make(map[string][]byte),
	}
}

func (c *compilation) ID() string {
	return c.id
}

func (c *compilation) AddContextDependency(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.deps {
		if d == dir {
			return
		}
	}
	c.deps = append(c.deps, dir)
}

func (c *compilation) ContextDependencies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deps...)
}

func (c *compilation) OnProcessAssets(tap host.Tap, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taps = append(c.taps, registeredTap{tap: tap, fn: fn})
}

func (c *compilation) EmitAsset(name string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[name] = content
}

func (c *compilation) Assets() map[string][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]byte, len(c.assets))
	for k, v := range c.assets {
		out[k] = v
	}
	return out
}

// orderedTaps returns the registered taps sorted by stage
func (c *compilation) orderedTaps() []registeredTap {
	c.mu.Lock()
	taps := append([]registeredTap(nil), c.taps...)
	c.mu.Unlock()

	sort.SliceStable(taps, func(i, j int) bool {
		return taps[i].tap.Stage < taps[j].tap.Stage
	})
	return taps
}

// assetNames returns emitted asset names in sorted order
func (c *compilation) assetNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.assets))
	for name := range c.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
