// Package toast shows transient, non-blocking notifications.
package toast

import (
	"encoding/json"
	"html"
	"strings"
	"time"

	"github.com/AndreyChufelin/kbpanel/internal/content"
)

type Level string

const (
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

type Templates struct {
	Toast       string `json:"toast"`
	ProgressBar string `json:"progressbar"`
}

// Config controls how toasts look and when they go away. A zero Timeout keeps
// a toast until it is dismissed.
type Config struct {
	Target          string
	AllowHTML       bool
	CloseButton     bool
	CloseHTML       string
	ExtendedTimeout time.Duration
	IconClasses     map[Level]string
	MessageClass    string
	ProgressBar     bool
	TapToDismiss    bool
	Templates       Templates
	Timeout         time.Duration
	TitleClass      string
	ToastClass      string

	OnShown  func(Toast)
	OnHidden func(Toast)
	OnTap    func(Toast)
}

func DefaultConfig(c content.Resolver) Config {
	return Config{
		Target:          "body",
		AllowHTML:       false,
		CloseButton:     false,
		CloseHTML:       "<button>&times;</button>",
		ExtendedTimeout: time.Second,
		IconClasses: map[Level]string{
			LevelError:   "toast-error",
			LevelInfo:    "toast-info",
			LevelSuccess: "toast-success",
			LevelWarning: "toast-warning",
		},
		MessageClass: "toast-message",
		ProgressBar:  false,
		TapToDismiss: true,
		Templates: Templates{
			Toast:       c.URL("angular/directives/toast/toast.html"),
			ProgressBar: c.URL("angular/directives/toast/progressbar.html"),
		},
		Timeout:    5 * time.Second,
		TitleClass: "toast-title",
		ToastClass: "toast",
	}
}

// MarshalJSON uses the option names browser toast libraries expect, with
// timeouts in milliseconds.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target          string           `json:"target"`
		AllowHTML       bool             `json:"allowHtml"`
		CloseButton     bool             `json:"closeButton"`
		CloseHTML       string           `json:"closeHtml"`
		ExtendedTimeout int64            `json:"extendedTimeOut"`
		IconClasses     map[Level]string `json:"iconClasses"`
		MessageClass    string           `json:"messageClass"`
		ProgressBar     bool             `json:"progressBar"`
		TapToDismiss    bool             `json:"tapToDismiss"`
		Templates       Templates        `json:"templates"`
		Timeout         int64            `json:"timeOut"`
		TitleClass      string           `json:"titleClass"`
		ToastClass      string           `json:"toastClass"`
	}{
		Target:          c.Target,
		AllowHTML:       c.AllowHTML,
		CloseButton:     c.CloseButton,
		CloseHTML:       c.CloseHTML,
		ExtendedTimeout: c.ExtendedTimeout.Milliseconds(),
		IconClasses:     c.IconClasses,
		MessageClass:    c.MessageClass,
		ProgressBar:     c.ProgressBar,
		TapToDismiss:    c.TapToDismiss,
		Templates:       c.Templates,
		Timeout:         c.Timeout.Milliseconds(),
		TitleClass:      c.TitleClass,
		ToastClass:      c.ToastClass,
	})
}

// Render returns the markup of t. Title and message are escaped unless
// AllowHTML is set.
func (c Config) Render(t Toast) string {
	title, message := t.Title, t.Message
	if !c.AllowHTML {
		title = html.EscapeString(title)
		message = html.EscapeString(message)
	}

	var b strings.Builder
	b.WriteString(`<div class="`)
	b.WriteString(strings.TrimSpace(c.ToastClass + " " + t.IconClass))
	b.WriteString(`">`)
	if c.CloseButton {
		b.WriteString(c.CloseHTML)
	}
	if title != "" {
		b.WriteString(`<div class="` + c.TitleClass + `">` + title + `</div>`)
	}
	b.WriteString(`<div class="` + c.MessageClass + `">` + message + `</div>`)
	b.WriteString(`</div>`)
	return b.String()
}
