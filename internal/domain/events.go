package domain

import (
	"sync"
	"time"
)

type EventType string

const (
	EventTypeReplyAppended       EventType = "reply.appended"
	EventTypeReplyStatusChanged  EventType = "reply.status"
	EventTypeReplyEdited         EventType = "reply.edited"
	EventTypeConversationUpdated EventType = "conversation.updated"
)

type Event interface {
	Type() EventType
	Timestamp() time.Time
}

type ReplyAppendedEvent struct {
	ConversationID int64
	Reply          Reply
	EventTime      time.Time
}

func (e ReplyAppendedEvent) Type() EventType      { return EventTypeReplyAppended }
func (e ReplyAppendedEvent) Timestamp() time.Time { return e.EventTime }

type ReplyStatusChangedEvent struct {
	ConversationID int64
	ReplyID        int64
	Status         ReplyStatus
	EventTime      time.Time
}

func (e ReplyStatusChangedEvent) Type() EventType      { return EventTypeReplyStatusChanged }
func (e ReplyStatusChangedEvent) Timestamp() time.Time { return e.EventTime }

type ReplyEditedEvent struct {
	ConversationID int64
	Reply          Reply
	EventTime      time.Time
}

func (e ReplyEditedEvent) Type() EventType      { return EventTypeReplyEdited }
func (e ReplyEditedEvent) Timestamp() time.Time { return e.EventTime }

// ConversationUpdatedEvent covers flag changes: unread cleared, pinned, archived.
type ConversationUpdatedEvent struct {
	Conversation *Conversation
	EventTime    time.Time
}

func (e ConversationUpdatedEvent) Type() EventType      { return EventTypeConversationUpdated }
func (e ConversationUpdatedEvent) Timestamp() time.Time { return e.EventTime }

// EventBus provides pub/sub for domain events
type EventBus interface {
	Publish(event Event)
	Subscribe(eventTypes []EventType) <-chan Event
	Unsubscribe(ch <-chan Event)
}

// SimpleEventBus is a basic in-memory implementation of EventBus
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers map[<-chan Event]subscription
}

type subscription struct {
	ch         chan Event
	eventTypes map[EventType]bool
}

func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscribers: make(map[<-chan Event]subscription),
	}
}

func (b *SimpleEventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if len(sub.eventTypes) == 0 || sub.eventTypes[event.Type()] {
			select {
			case sub.ch <- event:
			default:
				// subscriber is behind; renderers re-read the store anyway
			}
		}
	}
}

func (b *SimpleEventBus) Subscribe(eventTypes []EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	typeMap := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeMap[t] = true
	}

	b.subscribers[ch] = subscription{
		ch:         ch,
		eventTypes: typeMap,
	}

	return ch
}

func (b *SimpleEventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[ch]; ok {
		close(sub.ch)
		delete(b.subscribers, ch)
	}
}

// Close unsubscribes everyone, closing their channels.
func (b *SimpleEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, key)
	}
}
