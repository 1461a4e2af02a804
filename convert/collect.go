package convert

import (
	"context"
	"sort"
	"sync"
)

// Collect is a Sink that keeps every frame in memory.
type Collect struct {
	mu      sync.Mutex
	outputs []*Output
}

func (c *Collect) Emit(ctx context.Context, out *Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = append(c.outputs, out)
	return nil
}

// Outputs returns the collected frames sorted by file, then by frame index.
func (c *Collect) Outputs() []*Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	outs := append([]*Output(nil), c.outputs...)
	sort.SliceStable(outs, func(i, j int) bool {
		if outs[i].Path != outs[j].Path {
			return outs[i].Path < outs[j].Path
		}
		return outs[i].Index < outs[j].Index
	})
	return outs
}
