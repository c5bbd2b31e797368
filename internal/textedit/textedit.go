// Package textedit holds editing behaviour for the panel's plain multi-line
// text boxes.
package textedit

const (
	KeyTab = 9

	// TabValue is what a Tab key press inserts.
	TabValue = "    "
)

// KeyEvent is a key press delivered to a text box. Browsers report the key in
// either KeyCode or Which.
type KeyEvent struct {
	KeyCode int
	Which   int

	defaultPrevented bool
}

func (e *KeyEvent) Key() int {
	if e.KeyCode != 0 {
		return e.KeyCode
	}
	return e.Which
}

func (e *KeyEvent) PreventDefault() {
	e.defaultPrevented = true
}

func (e *KeyEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// TextArea is the editable state of a text box. Selection offsets count runes;
// an empty selection is the caret.
type TextArea struct {
	Value          string
	SelectionStart int
	SelectionEnd   int
}

func (a *TextArea) clampedSelection(length int) (int, int) {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		if n > length {
			return length
		}
		return n
	}
	start, end := clamp(a.SelectionStart), clamp(a.SelectionEnd)
	if start > end {
		start, end = end, start
	}
	return start, end
}

// Insert replaces the selection with text and puts the caret right after it.
func (a *TextArea) Insert(text string) {
	runes := []rune(a.Value)
	start, end := a.clampedSelection(len(runes))

	inserted := []rune(text)
	out := make([]rune, 0, len(runes)-(end-start)+len(inserted))
	out = append(out, runes[:start]...)
	out = append(out, inserted...)
	out = append(out, runes[end:]...)

	a.Value = string(out)
	a.SelectionStart = start + len(inserted)
	a.SelectionEnd = a.SelectionStart
}

// AllowTabs keeps Tab inside the text box: instead of moving focus it inserts
// TabValue at the caret. It reports whether the event was handled.
func AllowTabs(area *TextArea, e *KeyEvent) bool {
	if e.Key() != KeyTab {
		return false
	}
	e.PreventDefault()
	area.Insert(TabValue)
	return true
}
