package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VietCH57/What-to-watch/models"
)

// Sink observes toasts as they are enqueued. Sinks must not block; slow
// delivery is the sink's own problem to solve.
type Sink interface {
	Publish(t models.Toast)
}

// Notifier is the terminal failure-reporting surface for every other
// component. Notify always succeeds and returns immediately; each toast
// dismisses itself after the configured duration and multiple toasts stack
// rather than replacing each other.
type Notifier struct {
	duration time.Duration

	m      sync.Mutex
	active []models.Toast
	sinks  []Sink
}

func NewNotifier(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = 3 * time.Second
	}
	return &Notifier{duration: duration}
}

func (n *Notifier) AddSink(s Sink) {
	n.m.Lock()
	defer n.m.Unlock()
	n.sinks = append(n.sinks, s)
}

func (n *Notifier) Notify(message string, severity models.Severity) {
	t := models.Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	n.m.Lock()
	n.active = append(n.active, t)
	sinks := make([]Sink, len(n.sinks))
	copy(sinks, n.sinks)
	n.m.Unlock()

	for _, s := range sinks {
		s.Publish(t)
	}

	time.AfterFunc(n.duration, func() {
		n.dismiss(t.ID)
	})
}

func (n *Notifier) Success(message string) {
	n.Notify(message, models.SeveritySuccess)
}

func (n *Notifier) Error(message string) {
	n.Notify(message, models.SeverityError)
}

// Active returns the toasts currently on screen, oldest first.
func (n *Notifier) Active() []models.Toast {
	n.m.Lock()
	defer n.m.Unlock()
	out := make([]models.Toast, len(n.active))
	copy(out, n.active)
	return out
}

func (n *Notifier) dismiss(id string) {
	n.m.Lock()
	defer n.m.Unlock()
	for i, t := range n.active {
		if t.ID == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return
		}
	}
}
