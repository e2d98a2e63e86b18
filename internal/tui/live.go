package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/phaselab/internal/automation"
	"github.com/san-kum/phaselab/internal/render"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the latest results after every scenario step,
// holding each frame for at least Delay.
type LiveRenderer struct {
	out       io.Writer
	term      *render.Terminal
	delay     time.Duration
	lastFrame time.Time
	clear     bool
}

func NewLiveRenderer(out io.Writer, term *render.Terminal, delay time.Duration, clear bool) *LiveRenderer {
	return &LiveRenderer{out: out, term: term, delay: delay, clear: clear}
}

func (r *LiveRenderer) OnStep(res automation.StepResult) {
	if wait := r.delay - time.Since(r.lastFrame); wait > 0 && !r.lastFrame.IsZero() {
		time.Sleep(wait)
	}
	r.lastFrame = time.Now()
	fmt.Fprint(r.out, r.frame(res))
}

func (r *LiveRenderer) frame(res automation.StepResult) string {
	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(render.TitleStyle.Render(fmt.Sprintf("step %d: %s", res.Index+1, res.Action)) + "\n")

	switch {
	case res.Err != nil:
		b.WriteString(render.ErrorStyle.Render("error: "+res.Err.Error()) + "\n")
	case len(res.RunIDs) > 0:
		b.WriteString(render.Subtle.Render("exported "+strings.Join(res.RunIDs, ", ")) + "\n")
	}

	if res.Linear != nil {
		b.WriteString(r.term.Scene(res.Linear.Scene) + "\n")
	}
	if fn := res.Function; fn != nil {
		b.WriteString(r.term.Curve(fn.Y, fn.Input.YLim, fn.Title) + "\n")
		b.WriteString(render.TextBox.Render(fn.Classes.Summary()) + "\n")
	}
	return b.String()
}

func (r *LiveRenderer) Start() {
	if r.clear {
		fmt.Fprint(r.out, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.clear {
		fmt.Fprint(r.out, showCursor)
	}
}
