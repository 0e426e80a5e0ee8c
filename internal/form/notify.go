package form

import "sync"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a transient, dismissable message for the user.
type Notification struct {
	Kind    Kind
	Message string
}

// Notifier delivers notifications to wherever the user will see them.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discard struct{}

func (discard) Notify(Notification) {}

// Flash keeps only the most recent notification until it is taken,
// mirroring a toast that replaces the previous one.
type Flash struct {
	mu   sync.Mutex
	last *Notification
}

func (f *Flash) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = &n
}

// Take returns and clears the pending notification.
func (f *Flash) Take() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return Notification{}, false
	}
	n := *f.last
	f.last = nil
	return n, true
}
