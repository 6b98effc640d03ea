package fx

import "github.com/oliverbestmann/postfx/render"

// pingPong holds two targets. One is read while the other one is written.
type pingPong struct {
	targets [2]render.RenderTarget
	read    int
}

func (p *pingPong) Input() render.RenderTarget {
	return p.targets[p.read]
}

func (p *pingPong) Output() render.RenderTarget {
	return p.targets[1-p.read]
}

// Swap turns the output into the input of the next pass.
func (p *pingPong) Swap() {
	p.read = 1 - p.read
}

func (p *pingPong) acquire(cache *RenderTargetCache) {
	p.targets[0] = cache.Allocate(0)
	p.targets[1] = cache.Allocate(0)
	p.read = 0
}

func (p *pingPong) release(cache *RenderTargetCache) {
	for idx, target := range p.targets {
		if target != nil {
			cache.Release(target, 0)
			p.targets[idx] = nil
		}
	}
}
