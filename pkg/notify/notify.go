// Package notify delivers short-lived operator notifications, the terminal
// equivalent of a toast.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

const (
	SuccessDuration = 2 * time.Second
	ErrorDuration   = 3 * time.Second
)

// Notification is one message shown to the operator for Duration.
type Notification struct {
	Status   Status
	Title    string
	Duration time.Duration
}

func Success(title string) Notification {
	return Notification{Status: StatusSuccess, Title: title, Duration: SuccessDuration}
}

func Error(title string) Notification {
	return Notification{Status: StatusError, Title: title, Duration: ErrorDuration}
}

func Info(title string) Notification {
	return Notification{Status: StatusInfo, Title: title, Duration: SuccessDuration}
}

// Notifier shows notifications. Implementations must not block on the
// notification's duration.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// WriterNotifier prints notifications as single lines.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", note.Status.Marker(), note.Title)
}

// Marker is the terminal prefix for the status.
func (s Status) Marker() string {
	switch s {
	case StatusSuccess:
		return "[ok]"
	case StatusError:
		return "[erro]"
	default:
		return "[info]"
	}
}

// LogNotifier records notifications in the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) {
	if n == nil || n.logg == nil {
		return
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"notification_status": string(note.Status),
		"notification_ttl_ms": note.Duration.Milliseconds(),
	})
	if note.Status == StatusError {
		n.logg.Warn(ctx, note.Title)
		return
	}
	n.logg.Info(ctx, note.Title)
}

// Multi fans a notification out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(ctx context.Context, n Notification) {
		for _, notifier := range notifiers {
			if notifier != nil {
				notifier.Notify(ctx, n)
			}
		}
	})
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}
