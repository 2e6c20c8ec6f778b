package app

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// DefaultSubscriptionBuffer is used when Subscribe is given a non-positive buffer
const DefaultSubscriptionBuffer = 16

// Notifier fans registry changes out to any number of observers
type Notifier struct {
	mu       sync.RWMutex
	subs     map[string]*Subscription
	watchers []*countWatcher
	hooks    []*changeHook
	logger   *zap.Logger
}

// NewNotifier creates an empty notifier
func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[string]*Subscription),
		logger: logger.OrNop(log),
	}
}

// Subscription is a coalescing stream of registry changes.
// When the observer falls behind, the oldest pending change is dropped
// so the writer never blocks.
type Subscription struct {
	ID       string
	ch       chan domain.RegistryChange
	notifier *Notifier
	mu       sync.Mutex
	closed   bool
	dropped  int
}

// C returns the channel changes are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan domain.RegistryChange {
	return s.ch
}

// Dropped returns how many changes were coalesced away
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unsubscribes and closes the channel
func (s *Subscription) Close() {
	s.notifier.unsubscribe(s.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func (s *Subscription) deliver(change domain.RegistryChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for {
		select {
		case s.ch <- change:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped++
		default:
		}
	}
}

// Subscribe registers a new channel observer
func (n *Notifier) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}

	sub := &Subscription{
		ID:       uuid.New().String(),
		ch:       make(chan domain.RegistryChange, buffer),
		notifier: n,
	}

	n.mu.Lock()
	n.subs[sub.ID] = sub
	n.mu.Unlock()

	n.logger.Debug("Observer subscribed", zap.String("subscription_id", sub.ID))
	return sub
}

func (n *Notifier) unsubscribe(id string) {
	n.mu.Lock()
	_, ok := n.subs[id]
	delete(n.subs, id)
	n.mu.Unlock()

	if ok {
		n.logger.Debug("Observer unsubscribed", zap.String("subscription_id", id))
	}
}

// Subscribers returns the number of channel observers
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

type countWatcher struct {
	id     string
	derive func() int
	react  func(prev, next int)
	mu     sync.Mutex
	last   int
}

func (w *countWatcher) check() {
	w.mu.Lock()
	next := w.derive()
	if next == w.last {
		w.mu.Unlock()
		return
	}
	prev := w.last
	w.last = next
	w.mu.Unlock()

	w.react(prev, next)
}

// Watch registers a derived-count watcher. derive is evaluated after every
// published change and react runs only when the value differs from the
// previous observation. The baseline is taken at registration.
func (n *Notifier) Watch(derive func() int, react func(prev, next int)) (cancel func()) {
	w := &countWatcher{
		id:     uuid.New().String(),
		derive: derive,
		react:  react,
		last:   derive(),
	}

	n.mu.Lock()
	n.watchers = append(n.watchers, w)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, existing := range n.watchers {
			if existing.id == w.id {
				n.watchers = append(n.watchers[:i:i], n.watchers[i+1:]...)
				return
			}
		}
	}
}

type changeHook struct {
	id string
	fn func(domain.RegistryChange)
}

// OnChange registers fn to run synchronously for every published change,
// in mutation order. fn must not block or call back into the registry.
func (n *Notifier) OnChange(fn func(domain.RegistryChange)) (cancel func()) {
	h := &changeHook{id: uuid.New().String(), fn: fn}

	n.mu.Lock()
	n.hooks = append(n.hooks, h)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, existing := range n.hooks {
			if existing.id == h.id {
				n.hooks = append(n.hooks[:i:i], n.hooks[i+1:]...)
				return
			}
		}
	}
}

// Hooks returns the number of registered change hooks
func (n *Notifier) Hooks() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.hooks)
}

// Publish delivers change to every subscriber and re-evaluates watchers.
// It must not be called while holding the registry lock.
func (n *Notifier) Publish(change domain.RegistryChange) {
	n.mu.RLock()
	subs := make([]*Subscription, 0, len(n.subs))
	for _, sub := range n.subs {
		subs = append(subs, sub)
	}
	watchers := make([]*countWatcher, len(n.watchers))
	copy(watchers, n.watchers)
	hooks := make([]*changeHook, len(n.hooks))
	copy(hooks, n.hooks)
	n.mu.RUnlock()

	for _, h := range hooks {
		h.fn(change)
	}
	for _, sub := range subs {
		sub.deliver(change)
	}
	for _, w := range watchers {
		w.check()
	}
}
