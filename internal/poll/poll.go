// Package poll schedules the periodic refresh of the dashboard.
//
// A Poller hands out tick commands tagged with a generation. Stop and Start
// bump the generation, so ticks scheduled before a restart are dropped by
// Accept instead of doubling the refresh rate.
package poll

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/specboard/internal/log"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 2 * time.Second

// TickMsg is delivered once per interval while the poller runs.
type TickMsg struct {
	Gen  uint64
	Time time.Time
}

// Poller is a value type; store it on the model and reassign after each call.
type Poller struct {
	interval time.Duration
	gen      uint64
	running  bool
}

// New returns a stopped poller. A non-positive interval uses DefaultInterval.
func New(interval time.Duration) Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Poller{interval: interval}
}

// Interval returns the refresh period.
func (p Poller) Interval() time.Duration { return p.interval }

// Running reports whether ticks are being scheduled.
func (p Poller) Running() bool { return p.running }

// Start begins polling. Starting a running poller is a no-op.
func (p Poller) Start() (Poller, tea.Cmd) {
	if p.running {
		return p, nil
	}
	p.gen++
	p.running = true
	log.Debug(log.CatPoll, "poller started", "interval", p.interval, "gen", p.gen)
	return p, p.schedule()
}

// Stop halts polling. Ticks already in flight are rejected by Accept.
func (p Poller) Stop() Poller {
	if !p.running {
		return p
	}
	p.gen++
	p.running = false
	log.Debug(log.CatPoll, "poller stopped", "gen", p.gen)
	return p
}

// Accept reports whether msg belongs to the current run and, if so,
// returns the command for the next tick.
func (p Poller) Accept(msg TickMsg) (bool, tea.Cmd) {
	if !p.running || msg.Gen != p.gen {
		return false, nil
	}
	return true, p.schedule()
}

func (p Poller) schedule() tea.Cmd {
	gen := p.gen
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, Time: t}
	})
}
