package granular

import "github.com/cwbudde/algo-grain/dsp/core"

// grainPool is a fixed-capacity slot arena. Finished grains are returned to
// a free list during compaction and their slots are reused in place, so the
// pool never allocates after construction.
type grainPool struct {
	slots   []Grain
	inUse   []bool
	free    []int
	dropped int
}

func newGrainPool(capacity int) grainPool {
	p := grainPool{
		slots: make([]Grain, capacity),
		inUse: make([]bool, capacity),
		free:  make([]int, capacity),
	}
	// Hand out low slots first.
	for i := range p.free {
		p.free[i] = capacity - 1 - i
	}
	return p
}

func (p *grainPool) capacity() int { return len(p.slots) }

func (p *grainPool) active() int { return len(p.slots) - len(p.free) }

// spawn places g in a free slot. It reports false, and counts the grain as
// dropped, when every slot is busy.
func (p *grainPool) spawn(g Grain) bool {
	n := len(p.free)
	if n == 0 {
		p.dropped++
		return false
	}

	idx := p.free[n-1]
	p.free = p.free[:n-1]
	p.slots[idx] = g
	p.inUse[idx] = true

	return true
}

// compact releases the slots of finished grains.
func (p *grainPool) compact() {
	for i := range p.slots {
		if p.inUse[i] && p.slots[i].finished {
			p.inUse[i] = false
			p.free = append(p.free, i)
		}
	}
}

// sum reads every live grain once and returns the total.
func (p *grainPool) sum(buf []core.StereoFrame) core.StereoFrame {
	var out core.StereoFrame
	for i := range p.slots {
		if p.inUse[i] {
			out = out.Add(p.slots[i].Read(buf))
		}
	}
	return out
}

func (p *grainPool) reset() {
	p.free = p.free[:0]
	for i := len(p.slots) - 1; i >= 0; i-- {
		p.inUse[i] = false
		p.free = append(p.free, i)
	}
}
