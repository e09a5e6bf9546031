package vm

import (
	"github.com/kristofer/corevm/internal/opcode"
	"github.com/rs/zerolog"
)

// Debugger provides interactive step/breakpoint debugging over the
// executor's block dispatch — adapted from the teacher's instruction-
// level Debugger (pkg/vm/debugger.go), generalized from "pause at
// instruction ip" to "pause at function name + block id" since this
// executor dispatches whole basic blocks rather than single
// instructions one at a time.
type Debugger struct {
	breakpoints map[string]map[int]bool
	stepMode    bool
	enabled     bool
	log         zerolog.Logger
	onPause     func(fnName string, blockID int)
}

// NewDebugger builds a disabled Debugger. onPause, if non-nil, is
// called every time execution pauses (breakpoint hit or step mode).
func NewDebugger(log zerolog.Logger, onPause func(fnName string, blockID int)) *Debugger {
	return &Debugger{
		breakpoints: make(map[string]map[int]bool),
		log:         log,
		onPause:     onPause,
	}
}

func (d *Debugger) Enable()  { d.enabled = true }
func (d *Debugger) Disable() { d.enabled = false }

// SetStepMode enables or disables pausing before every block.
func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }

// AddBreakpoint pauses execution just before fnName's blockID runs.
func (d *Debugger) AddBreakpoint(fnName string, blockID int) {
	if d.breakpoints[fnName] == nil {
		d.breakpoints[fnName] = make(map[int]bool)
	}
	d.breakpoints[fnName][blockID] = true
}

func (d *Debugger) RemoveBreakpoint(fnName string, blockID int) {
	delete(d.breakpoints[fnName], blockID)
}

func (d *Debugger) ClearBreakpoints() {
	d.breakpoints = make(map[string]map[int]bool)
}

// onBlock is called by RunFunction just before dispatching blockID.
func (d *Debugger) onBlock(fn *opcode.Function, blockID int) {
	if !d.enabled {
		return
	}
	paused := d.stepMode || d.breakpoints[fn.Name][blockID]
	if !paused {
		return
	}
	d.log.Debug().Str("function", fn.Name).Int("block", blockID).Msg("debugger_pause")
	if d.onPause != nil {
		d.onPause(fn.Name, blockID)
	}
}
