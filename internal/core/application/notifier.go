package application

import "sync"

// notifier fans out change notifications to registered observers. Services
// embed it and invoke notify after every state mutation so consumers, the UI
// and the onboarding orchestrator, can re-read derived state reactively.
type notifier struct {
	obsMtx    sync.Mutex
	observers []func()
}

// RegisterObserver adds a callback invoked after every state change.
func (n *notifier) RegisterObserver(fn func()) {
	n.obsMtx.Lock()
	defer n.obsMtx.Unlock()
	n.observers = append(n.observers, fn)
}

func (n *notifier) notify() {
	n.obsMtx.Lock()
	observers := make([]func(), len(n.observers))
	copy(observers, n.observers)
	n.obsMtx.Unlock()

	for _, fn := range observers {
		fn()
	}
}
