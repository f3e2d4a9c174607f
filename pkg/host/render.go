package host

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/userint/pkg/scene"
	"github.com/odvcencio/userint/pkg/ui/backend"
	"github.com/odvcencio/userint/pkg/userint"
)

var (
	styleBase    = backend.DefaultStyle()
	styleFrame   = backend.DefaultStyle().Dim(true)
	styleEntered = backend.DefaultStyle().Bold(true).Underline(true)
	styleGrabbed = backend.DefaultStyle().Reverse(true)
	styleStatus  = backend.DefaultStyle().Reverse(true).Dim(true)
)

// styleFor picks the highlight for an element: grabbed wins over entered.
func styleFor(entered, grabbed bool) backend.Style {
	switch {
	case grabbed:
		return styleGrabbed
	case entered:
		return styleEntered
	default:
		return styleBase
	}
}

// draw is the update callback. Widgets are updated back to front, so later draws cover
// earlier ones the same way the signal test finds the frontmost widget first.
func (h *Host) draw(w *userint.Widget) {
	n, ok := h.scene.Node(w)
	if !ok {
		return
	}
	r := n.Rect()
	if r.Empty() {
		return
	}
	target := backend.NewSubTarget(h.backend, r.X, r.Y, r.Width, r.Height)
	backend.Fill(target, ' ', styleFrame)

	if rng, ok := w.Range(); ok {
		drawRange(target, n, rng)
		return
	}

	label := n.Spec.Label
	if label == "" {
		label = n.Spec.Tag
	}
	drawText(target, 0, 0, r.Width, label, styleFor(w.IsEntered(), w.IsGrabbed()))

	for i, p := range n.Parts {
		pr := n.PartRect(i)
		if pr.Empty() {
			continue
		}
		st := styleFor(p.IsEntered(), p.IsGrabbed())
		sub := backend.NewSubTarget(h.backend, pr.X, pr.Y, pr.Width, pr.Height)
		backend.Fill(sub, ' ', st)
		drawText(sub, 0, 0, pr.Width, n.Spec.Parts[i].Name, st)
	}
}

func drawRange(target backend.RenderTarget, n *scene.Node, r *userint.Range) {
	entered, hasEntered := r.EnteredItem()
	grabbed, hasGrabbed := r.GrabbedItem()
	width, height := target.Size()
	rowHeight := max(n.Spec.ItemHeight, 1)

	for i := 0; i < r.ItemCount() && i*rowHeight < height; i++ {
		st := styleFor(r.IsEntered() && hasEntered && entered == i, r.IsGrabbed() && hasGrabbed && grabbed == i)
		text := fmt.Sprintf("%s %d", itemLabel(n), i)
		if ctx, ok := r.ItemContext(i); ok && ctx != 0 {
			text += fmt.Sprintf(" (%d)", ctx)
		}
		for y := 0; y < rowHeight; y++ {
			for x := 0; x < width; x++ {
				target.SetContent(x, i*rowHeight+y, ' ', nil, st)
			}
		}
		drawText(target, 0, i*rowHeight, width, text, st)
	}
}

func itemLabel(n *scene.Node) string {
	if n.Spec.Label != "" {
		return n.Spec.Label
	}
	return "item"
}

// drawText writes s at (x, y), truncated to width display cells.
func drawText(t backend.RenderTarget, x, y, width int, s string, style backend.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	col := x
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		t.SetContent(col, y, r, nil, style)
		col += rw
	}
}

func (h *Host) drawStatus() {
	w, ht := h.backend.Size()
	if ht == 0 {
		return
	}
	line := h.status
	if line == "" {
		choice := "none"
		if c := h.State().Choice(); c != nil {
			if tag, ok := c.Tag(); ok {
				choice = tag
			} else {
				choice = c.Kind().String()
			}
		}
		line = "choice=" + choice
		if len(h.recent) > 0 {
			line += " | " + strings.Join(h.recent, " ")
		}
	}
	status := backend.NewSubTarget(h.backend, 0, ht-1, w, 1)
	backend.Fill(status, ' ', styleStatus)
	drawText(status, 0, 0, w, line, styleStatus)
}
