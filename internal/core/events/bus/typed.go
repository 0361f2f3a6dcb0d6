package bus

import (
	"fmt"
	"sync"
)

// On subscribes a handler typed to a concrete event struct. E must report its
// routing key from its zero value.
func On[E Event](b EventBus, handler func(E) error) (Subscription, error) {
	var zero E
	return b.Subscribe(zero.Type(), func(event Event) error {
		e, ok := event.(E)
		if !ok {
			return fmt.Errorf("bus: event %q has unexpected payload %T", event.Type(), event)
		}
		return handler(e)
	})
}

// Group owns a set of subscriptions so a component can drop all of them at once.
type Group struct {
	mu   sync.Mutex
	subs []Subscription
}

// Add records sub; a failed subscription passes its error through.
func (g *Group) Add(sub Subscription, err error) error {
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
	return nil
}

// Len returns the number of subscriptions the group still owns.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// CancelAll cancels every subscription in the group and forgets them.
func (g *Group) CancelAll() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()
	for _, s := range subs {
		_ = s.Cancel()
	}
}
