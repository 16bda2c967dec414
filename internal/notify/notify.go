// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package notify renders short-lived toast notifications in the terminal.
//
// A toast is printed once and dismissed after the configured duration. On an
// interactive terminal the dismissed toast is erased again when nothing else
// has been printed by the toaster since; on any other writer the toast simply
// stays in the output.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Theme selects how a toast is drawn.
type Theme string

const (
	// ThemeBubble draws the toast inside a box.
	ThemeBubble Theme = "bubble"
	// ThemePlain draws the toast as a single styled line.
	ThemePlain Theme = "plain"
)

// Position selects where a toast is placed horizontally.
type Position string

const (
	PositionTopLeft   Position = "top-left"
	PositionTopCenter Position = "top-center"
	PositionTopRight  Position = "top-right"
)

// IconPackMaterial maps levels to glyphs resembling the material icon set.
const IconPackMaterial = "material"

// Level is the severity of a toast.
type Level int

const (
	LevelDefault Level = iota
	LevelSuccess
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "default"
	}
}

// Action is a labelled handler attached to every toast.
type Action struct {
	Text    string
	OnClick func(*Toast)
}

// Options configure a Toaster.
type Options struct {
	Theme    Theme
	Position Position
	Duration time.Duration
	IconPack string
	Action   *Action
}

// DefaultOptions is the configuration the application uses: bubble theme,
// top-center, three seconds, material icons and a Cancel action that
// dismisses the toast right away.
func DefaultOptions() Options {
	return Options{
		Theme:    ThemeBubble,
		Position: PositionTopCenter,
		Duration: 3000 * time.Millisecond,
		IconPack: IconPackMaterial,
		Action: &Action{
			Text: "Cancel",
			OnClick: func(t *Toast) {
				t.GoAway(0)
			},
		},
	}
}

// Toaster prints toasts to a writer and tracks the ones still showing.
type Toaster struct {
	w           io.Writer
	opts        Options
	interactive bool

	mu     sync.Mutex
	active map[string]*Toast
	last   *Toast
	wg     sync.WaitGroup
}

// New creates a Toaster writing to w. Erasing dismissed toasts is only
// attempted when w is the process's stdout and stdout is a terminal.
func New(w io.Writer, opts Options) *Toaster {
	if w == nil {
		w = os.Stdout
	}
	interactive := false
	if f, ok := w.(*os.File); ok && f == os.Stdout && term.IsTerminal(int(f.Fd())) {
		interactive = true
	}
	return &Toaster{
		w:           w,
		opts:        opts,
		interactive: interactive,
		active:      make(map[string]*Toast),
	}
}

// Writer returns a writer to the toaster's output for regular command
// output. Anything written through it means the latest toast is no longer
// the last thing on screen and will not be erased.
func (t *Toaster) Writer() io.Writer { return outputWriter{t} }

type outputWriter struct{ t *Toaster }

func (o outputWriter) Write(p []byte) (int, error) {
	o.t.mu.Lock()
	defer o.t.mu.Unlock()
	o.t.last = nil
	return o.t.w.Write(p)
}

// Options returns the toaster configuration.
func (t *Toaster) Options() Options { return t.opts }

// Show prints a toast with the default level.
func (t *Toaster) Show(msg string) *Toast { return t.show(LevelDefault, msg) }

// Success prints a success toast.
func (t *Toaster) Success(msg string) *Toast { return t.show(LevelSuccess, msg) }

// Info prints an informational toast.
func (t *Toaster) Info(msg string) *Toast { return t.show(LevelInfo, msg) }

// Error prints an error toast.
func (t *Toaster) Error(msg string) *Toast { return t.show(LevelError, msg) }

// Successf, Infof and Errorf format their message with fmt.Sprintf.
func (t *Toaster) Successf(format string, a ...any) *Toast { return t.Success(fmt.Sprintf(format, a...)) }
func (t *Toaster) Infof(format string, a ...any) *Toast    { return t.Info(fmt.Sprintf(format, a...)) }
func (t *Toaster) Errorf(format string, a ...any) *Toast   { return t.Error(fmt.Sprintf(format, a...)) }

func (t *Toaster) show(level Level, msg string) *Toast {
	out := t.render(level, msg)

	toast := &Toast{
		ID:      uuid.NewString(),
		Message: msg,
		Level:   level,
		toaster: t,
		lines:   strings.Count(out, "\n"),
		done:    make(chan struct{}),
	}

	t.mu.Lock()
	fmt.Fprint(t.w, out)
	t.active[toast.ID] = toast
	t.last = toast
	t.wg.Add(1)
	t.mu.Unlock()

	if t.opts.Duration > 0 {
		toast.GoAway(t.opts.Duration)
	}
	return toast
}

// Active returns the number of toasts not yet dismissed.
func (t *Toaster) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Wait blocks until every toast shown so far has been dismissed.
func (t *Toaster) Wait() {
	t.wg.Wait()
}

// Close stops all pending dismiss timers. Toasts already on screen are left
// in place since the process is about to exit.
func (t *Toaster) Close() {
	t.mu.Lock()
	pending := make([]*Toast, 0, len(t.active))
	for _, toast := range t.active {
		pending = append(pending, toast)
	}
	t.last = nil
	t.mu.Unlock()

	for _, toast := range pending {
		toast.finish(false)
	}
}

// render builds the full text of a toast including the trailing newline.
func (t *Toaster) render(level Level, msg string) string {
	text := msg
	if icon := iconFor(t.opts.IconPack, level); icon != "" {
		text = icon + " " + text
	}
	text = levelStyle(level).Sprint(text)

	var out string
	switch t.opts.Theme {
	case ThemeBubble:
		box := pterm.DefaultBox.WithPadding(1)
		if t.opts.Action != nil && t.opts.Action.Text != "" {
			box = box.WithTitle(pterm.Gray("[" + t.opts.Action.Text + "]")).WithTitleBottomRight()
		}
		out = box.Sprint(text)
	default:
		out = text
		if t.opts.Action != nil && t.opts.Action.Text != "" {
			out += "  " + pterm.Gray("["+t.opts.Action.Text+"]")
		}
	}

	if t.opts.Position == PositionTopCenter {
		out = pterm.DefaultCenter.Sprint(out)
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func iconFor(pack string, level Level) string {
	if pack != IconPackMaterial {
		return ""
	}
	switch level {
	case LevelSuccess:
		return "✔"
	case LevelInfo:
		return "ℹ"
	case LevelError:
		return "✖"
	default:
		return "•"
	}
}

func levelStyle(level Level) *pterm.Style {
	switch level {
	case LevelSuccess:
		return pterm.NewStyle(pterm.FgGreen)
	case LevelInfo:
		return pterm.NewStyle(pterm.FgCyan)
	case LevelError:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgDefault)
	}
}

// Toast is a single notification.
type Toast struct {
	ID      string
	Message string
	Level   Level

	toaster *Toaster
	lines   int

	mu    sync.Mutex
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
}

// GoAway dismisses the toast after delay; zero or negative dismisses it now.
// Calling it again replaces a pending delay. Dismissing twice is a no-op.
func (t *Toast) GoAway(delay time.Duration) {
	if t.Dismissed() {
		return
	}
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if delay > 0 {
		t.timer = time.AfterFunc(delay, func() { t.finish(true) })
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.finish(true)
}

// Cancel runs the toaster's action handler for this toast.
func (t *Toast) Cancel() {
	if a := t.toaster.opts.Action; a != nil && a.OnClick != nil {
		a.OnClick(t)
	}
}

// Done is closed once the toast has been dismissed.
func (t *Toast) Done() <-chan struct{} { return t.done }

// Dismissed reports whether the toast is gone.
func (t *Toast) Dismissed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Toast) finish(erase bool) {
	t.once.Do(func() {
		t.mu.Lock()
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
		t.mu.Unlock()

		tt := t.toaster
		tt.mu.Lock()
		if erase && tt.interactive && tt.last == t {
			eraseLines(t.lines)
		}
		if tt.last == t {
			tt.last = nil
		}
		delete(tt.active, t.ID)
		tt.mu.Unlock()

		close(t.done)
		tt.wg.Done()
	})
}

func eraseLines(n int) {
	for i := 0; i < n; i++ {
		cursor.Up(1)
		cursor.ClearLine()
	}
	cursor.StartOfLine()
}
