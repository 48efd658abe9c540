package hosttest

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/EggFine/neosched/pkg/host"
)

// GlobalRegion is the name CurrentRegion reports while coordinator
// entries fire.
const GlobalRegion = "global"

// Partitioned simulates a region-partitioned host. Regions tick in
// lockstep: each Advance tick fires due coordinator entries first,
// then each region's due target entries in region creation order, and
// finally due async entries, with the simulated wall clock moved by
// host.TickDuration per tick.
//
// The plain Host methods reject all work, as they would on a real
// partitioned host.
type Partitioned struct {
	mu           sync.Mutex
	now          host.Ticks
	clock        time.Duration
	seq          uint64
	coord        entryHeap
	async        entryHeap
	regions      []string
	objects      []*Object
	firingRegion string
	firingAsync  bool
}

// NewPartitioned returns a simulated partitioned host at tick zero.
// Regions come into being on first reference.
func NewPartitioned() *Partitioned { return &Partitioned{} }

// Run implements host.Host.
func (p *Partitioned) Run(func()) (host.Task, error) {
	return nil, errUnsupported("Run")
}

// RunAsync implements host.Host.
func (p *Partitioned) RunAsync(func()) (host.Task, error) {
	return nil, errUnsupported("RunAsync")
}

// RunLater implements host.Host.
func (p *Partitioned) RunLater(func(), host.Ticks) (host.Task, error) {
	return nil, errUnsupported("RunLater")
}

// RunLaterAsync implements host.Host.
func (p *Partitioned) RunLaterAsync(func(), host.Ticks) (host.Task, error) {
	return nil, errUnsupported("RunLaterAsync")
}

// RunTimerAsync implements host.Host.
func (p *Partitioned) RunTimerAsync(func(), host.Ticks, host.Ticks) (host.Task, error) {
	return nil, errUnsupported("RunTimerAsync")
}

func errUnsupported(op string) error {
	return fmt.Errorf("hosttest: %s on a partitioned host: %w", op, errors.ErrUnsupported)
}

// Coordinator implements host.Partitioned.
func (p *Partitioned) Coordinator() host.Coordinator { return coordinator{p} }

// AsyncScheduler implements host.Partitioned.
func (p *Partitioned) AsyncScheduler() host.AsyncScheduler { return asyncScheduler{p} }

type coordinator struct{ p *Partitioned }

func (c coordinator) Run(fn func()) (host.Task, error) {
	return c.p.addCoord(fn, 0)
}

func (c coordinator) RunDelayed(fn func(), delay host.Ticks) (host.Task, error) {
	return c.p.addCoord(fn, delay)
}

func (p *Partitioned) addCoord(fn func(), delay host.Ticks) (host.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if delay < 1 {
		delay = 1
	}
	e := &entry{due: int64(p.now + delay), seq: p.seq, fn: fn}
	p.seq++
	heap.Push(&p.coord, e)
	return &simTask{mu: &p.mu, e: e}, nil
}

type asyncScheduler struct{ p *Partitioned }

func (a asyncScheduler) RunNow(fn func()) (host.Task, error) {
	return a.p.addAsync(fn, 0, 0)
}

func (a asyncScheduler) RunDelayed(fn func(), delay time.Duration) (host.Task, error) {
	return a.p.addAsync(fn, delay, 0)
}

func (a asyncScheduler) RunAtFixedRate(fn func(), initial, period time.Duration) (host.Task, error) {
	if period <= 0 {
		return nil, fmt.Errorf("hosttest: fixed-rate period must be positive, got %v", period)
	}
	return a.p.addAsync(fn, initial, period)
}

func (p *Partitioned) addAsync(fn func(), delay, period time.Duration) (host.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if delay < 0 {
		delay = 0
	}
	e := &entry{due: int64(p.clock + delay), seq: p.seq, period: int64(period), fn: fn}
	p.seq++
	heap.Push(&p.async, e)
	return &simTask{mu: &p.mu, e: e}, nil
}

// Advance processes the next n ticks, firing due coordinator, region,
// and async work on the caller's goroutine. Async entries with a
// period shorter than one tick fire as often within a tick as the
// moving wall clock allows.
func (p *Partitioned) Advance(n host.Ticks) {
	for ; n > 0; n-- {
		p.mu.Lock()
		p.now++
		p.clock += host.TickDuration

		p.fireHeap(&p.coord, int64(p.now), GlobalRegion, false)
		for i := 0; i < len(p.regions); i++ {
			p.fireRegion(p.regions[i])
		}
		p.fireHeap(&p.async, int64(p.clock), "", true)
		p.mu.Unlock()
	}
}

// fireHeap pops and runs every entry due at or before limit. The mutex
// is held on entry and released around each callback.
func (p *Partitioned) fireHeap(h *entryHeap, limit int64, region string, async bool) {
	for {
		e := h.peek()
		if e == nil || e.due > limit {
			return
		}
		heap.Pop(h)
		if e.cancelled {
			continue
		}
		if e.period > 0 {
			e.due += e.period
			heap.Push(h, e)
		}
		p.firingRegion, p.firingAsync = region, async
		p.mu.Unlock()
		e.fn()
		p.mu.Lock()
		p.firingRegion, p.firingAsync = "", false
	}
}

// fireRegion runs the due entries of every object the region owns,
// earliest (due, seq) first, rescanning after each callback so that
// mid-tick moves and invalidations take effect immediately. The mutex
// is held on entry.
func (p *Partitioned) fireRegion(name string) {
	for {
		var (
			best    *entry
			owner   *Object
			bestIdx int
		)
		for _, o := range p.objects {
			if o.region != name || !o.valid {
				continue
			}
			for i, e := range o.entries {
				if e.due > int64(p.now) {
					continue
				}
				if best == nil || e.due < best.due || (e.due == best.due && e.seq < best.seq) {
					best, owner, bestIdx = e, o, i
				}
			}
		}
		if best == nil {
			return
		}
		owner.entries = append(owner.entries[:bestIdx], owner.entries[bestIdx+1:]...)
		p.firingRegion = name
		p.mu.Unlock()
		best.fn()
		p.mu.Lock()
		p.firingRegion = ""
	}
}

// Now returns the last tick processed by Advance.
func (p *Partitioned) Now() host.Ticks {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// Clock returns the simulated wall-clock offset from tick zero.
func (p *Partitioned) Clock() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock
}

// CurrentRegion returns the name of the region whose entry is firing
// on the caller's goroutine, GlobalRegion for coordinator entries, or
// "" while idle or inside async work.
func (p *Partitioned) CurrentRegion() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firingRegion
}

// InAsync reports whether the caller is inside an async firing.
func (p *Partitioned) InAsync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firingAsync
}

// Object is a movable, invalidatable unit of simulated host state that
// work can be bound to. It implements host.ScheduledTarget.
type Object struct {
	p       *Partitioned
	region  string
	valid   bool
	entries []*entry
}

// NewObject creates a valid Object owned by the named region, creating
// the region on first use.
func (p *Partitioned) NewObject(region string) *Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensureRegion(region)
	o := &Object{p: p, region: region, valid: true}
	p.objects = append(p.objects, o)
	return o
}

func (p *Partitioned) ensureRegion(name string) {
	for _, r := range p.regions {
		if r == name {
			return
		}
	}
	p.regions = append(p.regions, name)
}

// Valid implements host.Target.
func (o *Object) Valid() bool {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	return o.valid
}

// Scheduler implements host.ScheduledTarget.
func (o *Object) Scheduler() host.TargetScheduler { return targetScheduler{o} }

// Region returns the name of the region that currently owns the object.
func (o *Object) Region() string {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	return o.region
}

// MoveTo hands the object to another region. Pending work moves with
// it and keeps its due ticks.
func (o *Object) MoveTo(region string) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	o.p.ensureRegion(region)
	o.region = region
}

// Invalidate retires the object. Pending work is dropped and each
// entry's retired callback runs once, in submission order, before
// Invalidate returns. Invalidating twice is a no-op.
func (o *Object) Invalidate() {
	o.p.mu.Lock()
	if !o.valid {
		o.p.mu.Unlock()
		return
	}
	o.valid = false
	pending := o.entries
	o.entries = nil
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	o.p.mu.Unlock()
	for _, e := range pending {
		if e.retired != nil {
			e.retired()
		}
	}
}

type targetScheduler struct{ o *Object }

// Execute implements host.TargetScheduler.
func (s targetScheduler) Execute(run, retired func(), delay host.Ticks) bool {
	o := s.o
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if !o.valid {
		return false
	}
	if delay < 1 {
		delay = 1
	}
	e := &entry{due: int64(o.p.now + delay), seq: o.p.seq, fn: run, retired: retired}
	o.p.seq++
	o.entries = append(o.entries, e)
	return true
}
