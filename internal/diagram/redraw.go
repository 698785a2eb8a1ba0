package diagram

import "slices"

// RedrawKind says how much of the picture a Notice invalidates.
type RedrawKind string

const (
	// RedrawCanvas covers the canvas outline and the grid.
	RedrawCanvas RedrawKind = "canvas"
	// RedrawItems covers every item but not the canvas.
	RedrawItems RedrawKind = "items"
	// RedrawAll covers the canvas and every item.
	RedrawAll RedrawKind = "all"
	// RedrawItem covers the single item named by ItemID. The item may have
	// been removed, in which case the renderer should drop it.
	RedrawItem RedrawKind = "item"
)

// Notice is delivered to redraw hooks after every observable mutation.
type Notice struct {
	Kind   RedrawKind `json:"kind"`
	ItemID string     `json:"itemId,omitempty"`
}

type hook struct {
	id int
	fn func(Notice)
}

// OnRedraw registers fn to be called synchronously after each mutation.
// The returned function unregisters it.
func (d *Diagram) OnRedraw(fn func(Notice)) (remove func()) {
	d.nextHookID++
	id := d.nextHookID
	d.hooks = append(d.hooks, hook{id: id, fn: fn})

	// notify may be ranging over d.hooks; never shift it in place.
	return func() {
		d.hooks = slices.DeleteFunc(slices.Clone(d.hooks), func(h hook) bool {
			return h.id == id
		})
	}
}

func (d *Diagram) notify(n Notice) {
	for _, h := range d.hooks {
		h.fn(n)
	}
}

// Draw notifies the hooks that the whole diagram needs redrawing.
func (d *Diagram) Draw() {
	d.notify(Notice{Kind: RedrawAll})
}
