package eventloop

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPumpInterval is how often platform window messages are drained.
const DefaultPumpInterval = 5 * time.Millisecond

// PumpFunc drains pending platform UI messages without blocking. It returns
// false once the platform asked the application to quit.
type PumpFunc func() bool

// Loop is the single-threaded UI coordinator. Every piece of overlay state is
// touched only from the goroutine executing Run; other goroutines (hotkeys,
// tray menu, timers) hand work over with Post.
type Loop struct {
	tasks        chan func()
	pump         PumpFunc
	pumpInterval time.Duration

	done     chan struct{} // closed when Run returns
	stopOnce sync.Once
}

// New creates a loop with a bounded task queue.
func New() *Loop {
	return &Loop{
		tasks:        make(chan func(), 64),
		pumpInterval: DefaultPumpInterval,
		done:         make(chan struct{}),
	}
}

// SetPump installs the platform message pump. It must be called before Run.
func (l *Loop) SetPump(pump PumpFunc, interval time.Duration) {
	l.pump = pump
	if interval > 0 {
		l.pumpInterval = interval
	}
}

// Post queues fn for execution on the loop goroutine. It never blocks; when
// the queue is full the task is dropped and false is returned.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	default:
		log.Printf("EVENTLOOP: Task queue full, dropping task")
		return false
	}
}

// AfterFunc runs fn once on the loop goroutine after d. The timer goroutine
// only posts; fn itself never runs off the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.deliver(fn) })
}

// deliver hands a timer callback to the loop. Unlike Post it waits for queue
// space, since a one-shot timer must not be lost, but gives up once Run has
// returned.
func (l *Loop) deliver(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		log.Printf("EVENTLOOP: Loop stopped, dropping timer task")
		return false
	}
}

// Run processes posted tasks and pumps platform messages until ctx is
// cancelled or the pump reports quit. It must run on the goroutine that
// created the platform windows.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })

	var tick <-chan time.Time
	if l.pump != nil {
		ticker := time.NewTicker(l.pumpInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.runTask(fn)
		case <-tick:
			if !l.pump() {
				log.Printf("EVENTLOOP: Platform requested quit")
				return nil
			}
		}
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in event loop task: %v", r)
		}
	}()
	fn()
}
