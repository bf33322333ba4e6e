package window

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Registry owns every live window: lookup by id/type/(type,num), stable id
// assignment, and the refresh flag (spec §4.1).
type Registry struct {
	windows []*Window // ordered list; nil entries are "compacted away" immediately
	byID    map[uint16]*Window
	nextID  uint16

	active int // index into windows of the active window, or -1

	refresh bool

	rows, cols int
}

// New returns an empty Registry sized to the given terminal dimensions.
func New(rows, cols int) *Registry {
	return &Registry{byID: make(map[uint16]*Window), active: -1, rows: rows, cols: cols}
}

// Resize updates the tracked terminal dimensions, used by AddWindow's
// size-floor check.
func (r *Registry) Resize(rows, cols int) { r.rows, r.cols = rows, cols }

// lowestUnusedID scans byID for the smallest free 16-bit id, satisfying
// spec §3's "id is unique across the live set and is re-used only after
// deletion" invariant.
func (r *Registry) lowestUnusedID() uint16 {
	for id := uint16(0); ; id++ {
		if _, ok := r.byID[id]; !ok {
			return id
		}
		if id == 0xFFFF {
			break
		}
	}
	return 0xFFFF
}

// AddWindow assigns the lowest unused id, appends w to the ordered list,
// and calls its init callback.
func (r *Registry) AddWindow(w *Window) (uint16, error) {
	if r.rows < MinRows || r.cols < MinCols {
		return 0, ErrTerminalTooSmall
	}
	if len(r.byID) >= 0xFFFF {
		return 0, ErrWindowLimit
	}
	w.ID = r.lowestUnusedID()
	w.SessionID = uuid.New()
	r.byID[w.ID] = w
	r.windows = append(r.windows, w)
	if w.Sink != nil {
		w.Sink.Init(w)
	}
	if r.active == -1 {
		r.active = len(r.windows) - 1
	}
	r.SetRefresh()
	log.Printf("[window] opened id=%d session=%s kind=%d", w.ID, w.SessionID, w.Kind)
	return w.ID, nil
}

// DelWindow releases sub-resources via the window's cleanup callback,
// compacts the list, and if the active cursor landed on the friend-list
// kind after deletion, jumps back to the prompt window.
func (r *Registry) DelWindow(id uint16) {
	w, ok := r.byID[id]
	if !ok {
		return
	}
	log.Printf("[window] closed id=%d session=%s kind=%d", w.ID, w.SessionID, w.Kind)
	if w.Sink != nil {
		w.Sink.Close(w)
	}
	idx := -1
	for i, cand := range r.windows {
		if cand.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	r.windows = append(r.windows[:idx], r.windows[idx+1:]...)
	delete(r.byID, id)

	switch {
	case len(r.windows) == 0:
		r.active = -1
	case r.active == idx:
		if r.active >= len(r.windows) {
			r.active = len(r.windows) - 1
		}
		if r.windows[r.active].Kind == KindFriendList {
			r.jumpToPrompt()
		}
	case r.active > idx:
		r.active--
	}
	r.SetRefresh()
}

func (r *Registry) jumpToPrompt() {
	for i, w := range r.windows {
		if w.Kind == KindPrompt {
			r.active = i
			return
		}
	}
}

// ByID returns the window with id, or nil.
func (r *Registry) ByID(id uint16) *Window { return r.byID[id] }

// ByNum returns the first window of kind k whose Num matches num, or nil.
func (r *Registry) ByNum(k Kind, num uint32) *Window {
	for _, w := range r.windows {
		if w.Kind == k && w.Num == num {
			return w
		}
	}
	return nil
}

// ByKind returns every window of kind k, in registry order.
func (r *Registry) ByKind(k Kind) []*Window {
	var out []*Window
	for _, w := range r.windows {
		if w.Kind == k {
			out = append(out, w)
		}
	}
	return out
}

// Active returns the currently active window, or nil if none.
func (r *Registry) Active() *Window {
	if r.active < 0 || r.active >= len(r.windows) {
		return nil
	}
	return r.windows[r.active]
}

// SetActiveID activates the window with id; a missing id is a no-op (a
// warning is the caller's responsibility to log, per spec §4.1).
func (r *Registry) SetActiveID(id uint16) error {
	for i, w := range r.windows {
		if w.ID == id {
			r.active = i
			w.Activate()
			r.SetRefresh()
			return nil
		}
	}
	return fmt.Errorf("window: set_active: no window with id %d", id)
}

// NextActive cycles forward through the list, modulo its length.
func (r *Registry) NextActive() {
	if len(r.windows) == 0 {
		return
	}
	r.active = (r.active + 1) % len(r.windows)
	r.windows[r.active].Activate()
	r.SetRefresh()
}

// PrevActive cycles backward through the list, modulo its length.
func (r *Registry) PrevActive() {
	if len(r.windows) == 0 {
		return
	}
	r.active = (r.active - 1 + len(r.windows)) % len(r.windows)
	r.windows[r.active].Activate()
	r.SetRefresh()
}

// All returns the live window list in registry order.
func (r *Registry) All() []*Window { return append([]*Window{}, r.windows...) }

// SetRefresh raises the single shared refresh flag (spec §4.1): the draw
// loop runs only when this is set.
func (r *Registry) SetRefresh() { r.refresh = true }

// ConsumeRefresh reports and clears the refresh flag, to be called once
// per draw iteration.
func (r *Registry) ConsumeRefresh() bool {
	v := r.refresh
	r.refresh = false
	return v
}
