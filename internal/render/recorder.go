// Package render records surface draw calls as serializable ops. The remote
// host streams one batch per frame to the browser, which replays it on a
// canvas.
package render

import "sync"

const (
	OpClear = "clear"
	OpRect  = "rect"
	OpImage = "image"
	OpText  = "text"
)

// Op is one draw call. Unused fields are omitted on the wire.
type Op struct {
	Op    string  `json:"op"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Color string  `json:"color,omitempty"`
	Name  string  `json:"name,omitempty"`
	Text  string  `json:"text,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// Recorder is a match.Surface that buffers ops until Flush.
type Recorder struct {
	mu  sync.Mutex
	w   float64
	h   float64
	ops []Op
}

func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h}
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w, r.h
}

// Resize changes the reported surface size for subsequent layouts.
func (r *Recorder) Resize(w, h float64) {
	r.mu.Lock()
	r.w, r.h = w, h
	r.mu.Unlock()
}

// Clear drops any ops recorded since the last flush; a clear repaints everything.
func (r *Recorder) Clear(color string) {
	r.mu.Lock()
	r.ops = append(r.ops[:0], Op{Op: OpClear, Color: color})
	r.mu.Unlock()
}

func (r *Recorder) FillRect(x, y, w, h float64, color string) {
	r.add(Op{Op: OpRect, X: x, Y: y, W: w, H: h, Color: color})
}

func (r *Recorder) DrawImage(name string, x, y, w, h float64) {
	r.add(Op{Op: OpImage, Name: name, X: x, Y: y, W: w, H: h})
}

func (r *Recorder) DrawText(text string, x, y, size float64, color string) {
	r.add(Op{Op: OpText, Text: text, X: x, Y: y, Size: size, Color: color})
}

func (r *Recorder) add(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Ops returns a copy of the buffered ops.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Flush returns the buffered ops and empties the buffer.
func (r *Recorder) Flush() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.ops
	r.ops = nil
	return out
}
