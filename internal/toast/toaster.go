package toast

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast holds the text as given; sinks that produce markup go through
// Config.Render.
type Toast struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	IconClass string
}

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Sink displays toasts.
type Sink interface {
	Show(Toast)
	Hide(Toast)
}

type entry struct {
	toast Toast
	timer Timer
	// gen changes whenever the timer is stopped or replaced.
	gen uint64
}

type Toaster struct {
	cfg   Config
	sink  Sink
	clock Clock

	mu     sync.Mutex
	active map[string]*entry
	order  []string
}

// NewToaster uses the wall clock when clock is nil.
func NewToaster(cfg Config, sink Sink, clock Clock) *Toaster {
	if clock == nil {
		clock = realClock{}
	}
	return &Toaster{
		cfg:    cfg,
		sink:   sink,
		clock:  clock,
		active: make(map[string]*entry),
	}
}

func (t *Toaster) Config() Config {
	return t.cfg
}

func (t *Toaster) Error(title, message string) Toast {
	return t.Show(LevelError, title, message)
}

func (t *Toaster) Info(title, message string) Toast {
	return t.Show(LevelInfo, title, message)
}

func (t *Toaster) Success(title, message string) Toast {
	return t.Show(LevelSuccess, title, message)
}

func (t *Toaster) Warning(title, message string) Toast {
	return t.Show(LevelWarning, title, message)
}

func (t *Toaster) Show(level Level, title, message string) Toast {
	toast := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		IconClass: t.cfg.IconClasses[level],
	}

	t.mu.Lock()
	e := &entry{toast: toast}
	t.active[toast.ID] = e
	t.order = append(t.order, toast.ID)
	t.arm(e, t.cfg.Timeout)
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Show(toast)
	}
	if t.cfg.OnShown != nil {
		t.cfg.OnShown(toast)
	}
	return toast
}

// disarm must be called with t.mu held.
func (e *entry) disarm() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// arm must be called with t.mu held.
func (t *Toaster) arm(e *entry, d time.Duration) {
	e.disarm()
	if d <= 0 {
		return
	}
	id, gen := e.toast.ID, e.gen
	e.timer = t.clock.AfterFunc(d, func() { t.dismiss(id, gen) })
}

// Hover pauses the auto-dismiss timer while the user interacts with a toast.
func (t *Toaster) Hover(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.active[id]; ok {
		e.disarm()
	}
}

// Leave re-arms the timer with the extended timeout.
func (t *Toaster) Leave(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.active[id]; ok && t.cfg.Timeout > 0 {
		t.arm(e, t.cfg.ExtendedTimeout)
	}
}

func (t *Toaster) Tap(id string) {
	t.mu.Lock()
	e, ok := t.active[id]
	t.mu.Unlock()
	if !ok {
		return
	}
	if t.cfg.OnTap != nil {
		t.cfg.OnTap(e.toast)
	}
	if t.cfg.TapToDismiss {
		t.Dismiss(id)
	}
}

// Dismiss hides a toast. It reports false when the toast is already gone.
func (t *Toaster) Dismiss(id string) bool {
	return t.dismiss(id, 0)
}

// dismiss removes id; a non-zero gen only removes it while its timer is
// still the current one.
func (t *Toaster) dismiss(id string, gen uint64) bool {
	t.mu.Lock()
	e, ok := t.active[id]
	if !ok || (gen != 0 && e.gen != gen) {
		t.mu.Unlock()
		return false
	}
	e.disarm()
	delete(t.active, id)
	for i, other := range t.order {
		if other == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Hide(e.toast)
	}
	if t.cfg.OnHidden != nil {
		t.cfg.OnHidden(e.toast)
	}
	return true
}

// Active lists visible toasts, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.active[id].toast)
	}
	return out
}

// WriterSink prints toasts as single lines, e.g. for a terminal.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Show(toast Toast) {
	if toast.Title == "" {
		fmt.Fprintf(s.W, "[%s] %s\n", toast.Level, toast.Message)
		return
	}
	fmt.Fprintf(s.W, "[%s] %s: %s\n", toast.Level, toast.Title, toast.Message)
}

func (s WriterSink) Hide(Toast) {}
