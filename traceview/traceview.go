// Package traceview is a tview/tcell text UI that steps a compiled
// Vera image pass by pass over rv32.VM, showing the live register
// vector and how many rules have fired so far. It plays the same role as the reference
// debugger's TUI register/source panels, narrowed to Vera's coarser
// "one trap per pass" execution model (spec.md §6).
package traceview

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/max22/vera/rv32"
)

// TUI is the traceview application.
type TUI struct {
	VM       *rv32.VM
	Names    []string // register index -> display name, "" if none
	MaxPass  int
	MaxSteps int

	App          *tview.Application
	Layout       *tview.Flex
	RegisterView *tview.TextView
	StatusView   *tview.TextView

	pass   int
	fired  int
	halted bool
}

// New creates a traceview TUI over vm, using names (from the register
// names the caller tracked during interning) to label the register
// panel. A "" entry in names leaves that register unlabeled.
func New(vm *rv32.VM, names []string, maxPass, maxSteps int) *TUI {
	t := &TUI{
		VM:       vm,
		Names:    names,
		MaxPass:  maxPass,
		MaxSteps: maxSteps,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StatusView = tview.NewTextView().SetDynamicColors(true)
	t.StatusView.SetBorder(true).SetTitle(" Status ")
}

func (t *TUI) buildLayout() {
	t.Layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 4, false).
		AddItem(t.StatusView, 4, 0, false)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyEnter, tcell.KeyRune:
			t.stepPass()
			return nil
		}
		return event
	})
}

// stepPass runs one pass of the VM and refreshes the panels. When a
// pass fires nothing (a0 == 0 at the break), the application stops,
// matching spec.md §6's termination condition.
func (t *TUI) stepPass() {
	t.VM.CPU.PC = 0
	if err := t.VM.Run(t.MaxSteps); err != nil {
		t.StatusView.SetText(fmt.Sprintf("[red]error:[white] %v", err))
		t.halted = true
		t.App.Stop()
		return
	}
	t.pass++
	firedThisPass := int(t.VM.CPU.Get(10)) // RegA0
	t.VM.CPU.Set(10, 0)
	t.fired += firedThisPass

	t.refresh()

	if firedThisPass == 0 || t.pass >= t.MaxPass {
		t.halted = true
		t.App.Stop()
	}
}

func (t *TUI) refresh() {
	regs, err := t.VM.Mem.Registers(len(t.Names))
	if err != nil {
		t.RegisterView.SetText(fmt.Sprintf("[red]error reading registers:[white] %v", err))
		t.StatusView.SetText(fmt.Sprintf("pass %d, %d rule(s) fired so far\npress enter to step, ctrl-c to quit", t.pass, t.fired))
		return
	}

	var sb strings.Builder
	for j, v := range regs {
		label := ""
		if t.Names[j] != "" {
			label = " (" + t.Names[j] + ")"
		}
		fmt.Fprintf(&sb, "r%-2d = %-10d%s\n", j, v, label)
	}
	t.RegisterView.SetText(sb.String())
	t.StatusView.SetText(fmt.Sprintf("pass %d, %d rule(s) fired so far\npress enter to step, ctrl-c to quit", t.pass, t.fired))
}

// Run starts the application event loop, which the -tui CLI mode
// uses: each Enter or key press runs one pass, and the application
// stops once a pass fires nothing (spec.md §6) or MaxPass passes have
// run. RunAuto drives the passes without waiting for input.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.SetRoot(t.Layout, true).EnableMouse(false).Run()
}

// RunAuto drives every pass without waiting for input, updating the
// screen after each one, and stops automatically once a pass fires no
// rule. It returns the number of passes executed.
func (t *TUI) RunAuto() (int, error) {
	t.refresh()
	go func() {
		for !t.halted && t.pass < t.MaxPass {
			time.Sleep(100 * time.Millisecond)
			t.App.QueueUpdateDraw(func() {
				t.stepPass()
			})
		}
	}()
	if err := t.App.SetRoot(t.Layout, true).Run(); err != nil {
		return t.pass, err
	}
	return t.pass, nil
}
