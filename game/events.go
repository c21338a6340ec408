package game

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Priority int

const (
	PriorityFirst Priority = iota
	PriorityBeforeRender
	PriorityRender
	PriorityAfterRender
	PriorityLast
)

// Handler receives published messages on the frame loop goroutine
type Handler func(Message)

type subscription struct {
	id uuid.UUID
	p  Priority
	h  Handler
}

type topic struct {
	subs   []*subscription
	update bool
}

// EventBus delivers messages synchronously to the subscribers of their type,
// lower priorities first, equal priorities in subscription order.
// It is not safe for concurrent use, like the rest of the frame loop.
type EventBus struct {
	log    *zap.Logger
	topics map[MessageType]*topic
	index  map[uuid.UUID]MessageType
}

func NewEventBus(log *zap.Logger) *EventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventBus{
		log:    log.Named("events"),
		topics: make(map[MessageType]*topic),
		index:  make(map[uuid.UUID]MessageType),
	}
}

// Subscribe registers h for messages of type t and returns the id to unsubscribe with
func (b *EventBus) Subscribe(t MessageType, p Priority, h Handler) uuid.UUID {
	tp, found := b.topics[t]
	if !found {
		tp = &topic{}
		b.topics[t] = tp
	}

	s := &subscription{id: uuid.New(), p: p, h: h}
	tp.subs = append(tp.subs, s)
	tp.update = true
	b.index[s.id] = t

	b.log.Debug("subscribe", zap.Stringer("type", t), zap.Stringer("id", s.id))
	return s.id
}

// Unsubscribe removes a subscription, it reports whether it existed
func (b *EventBus) Unsubscribe(id uuid.UUID) bool {
	t, found := b.index[id]
	if !found {
		return false
	}
	delete(b.index, id)

	tp := b.topics[t]
	for i, s := range tp.subs {
		if s.id == id {
			l := len(tp.subs)
			copy(tp.subs[i:], tp.subs[i+1:])
			tp.subs[l-1] = nil
			tp.subs = tp.subs[:l-1]
			break
		}
	}
	return true
}

// Publish calls the handlers subscribed at the time of the call
func (b *EventBus) Publish(m Message) {
	tp, found := b.topics[m.Type()]
	if !found || len(tp.subs) == 0 {
		return
	}

	if tp.update {
		sort.Stable(byPriority(tp.subs))
		tp.update = false
	}

	// handlers may (un)subscribe
	subs := append([]*subscription(nil), tp.subs...)
	for _, s := range subs {
		if _, live := b.index[s.id]; live {
			s.h(m)
		}
	}
}

// Len returns the number of subscriptions for t
func (b *EventBus) Len(t MessageType) int {
	if tp, found := b.topics[t]; found {
		return len(tp.subs)
	}
	return 0
}

// Clear removes every subscription
func (b *EventBus) Clear() {
	b.topics = make(map[MessageType]*topic)
	b.index = make(map[uuid.UUID]MessageType)
}

// byPriority attaches the methods of sort.Interface to []*subscription, sorting in increasing order of priority
type byPriority []*subscription

func (s byPriority) Len() int           { return len(s) }
func (s byPriority) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byPriority) Less(i, j int) bool { return s[i].p < s[j].p }
