package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/logger"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
	"github.com/clippy-oss/homie/portal-messages/internal/schedule"
)

const (
	DefaultDeliveredAfter = 1 * time.Second
	DefaultReadAfter      = 2 * time.Second
)

type StatusSimulatorConfig struct {
	// Both delays are measured from reply creation.
	DeliveredAfter time.Duration
	ReadAfter      time.Duration
}

type transitionKey struct {
	conversationID int64
	replyID        int64
	target         domain.ReplyStatus
}

// pendingTransition remembers which scheduling owns a key, so a late callback
// from a replaced timer leaves its successor in place.
type pendingTransition struct {
	seq   uint64
	timer schedule.Timer
}

// StatusSimulator walks freshly sent replies through delivered and read on
// fixed delays. Firings are guarded: a reply that vanished or already moved
// past the target is left alone.
type StatusSimulator struct {
	store  repository.ConversationStore
	sched  schedule.Scheduler
	bus    domain.EventBus
	config StatusSimulatorConfig
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[transitionKey]pendingTransition
	seq     uint64
	stopped bool
}

func NewStatusSimulator(
	store repository.ConversationStore,
	sched schedule.Scheduler,
	bus domain.EventBus,
	config StatusSimulatorConfig,
) *StatusSimulator {
	if config.DeliveredAfter <= 0 {
		config.DeliveredAfter = DefaultDeliveredAfter
	}
	if config.ReadAfter <= config.DeliveredAfter {
		config.ReadAfter = 2 * config.DeliveredAfter
	}
	return &StatusSimulator{
		store:   store,
		sched:   sched,
		bus:     bus,
		config:  config,
		log:     logger.Module("simulator"),
		pending: make(map[transitionKey]pendingTransition),
	}
}

// Track schedules both transitions for a reply that was just created.
func (s *StatusSimulator) Track(conversationID int64, reply domain.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.scheduleLocked(transitionKey{conversationID, reply.ID, domain.ReplyStatusDelivered}, s.config.DeliveredAfter)
	s.scheduleLocked(transitionKey{conversationID, reply.ID, domain.ReplyStatusRead}, s.config.ReadAfter)
}

func (s *StatusSimulator) scheduleLocked(key transitionKey, after time.Duration) {
	if old, ok := s.pending[key]; ok {
		old.timer.Stop()
	}
	s.seq++
	seq := s.seq
	timer := s.sched.AfterFunc(after, func() {
		s.mu.Lock()
		if cur, ok := s.pending[key]; ok && cur.seq == seq {
			delete(s.pending, key)
		}
		stopped := s.stopped
		s.mu.Unlock()

		if !stopped {
			s.Fire(key.conversationID, key.replyID, key.target)
		}
	})
	s.pending[key] = pendingTransition{seq: seq, timer: timer}
}

// Fire applies one transition. It is safe to call repeatedly or out of order.
func (s *StatusSimulator) Fire(conversationID, replyID int64, target domain.ReplyStatus) bool {
	changed, err := s.store.AdvanceStatus(conversationID, replyID, target)
	if err != nil {
		s.log.Debug().Err(err).
			Int64("conversation", conversationID).
			Int64("reply", replyID).
			Msg("dropping status transition for missing reply")
		return false
	}
	if !changed {
		return false
	}

	s.log.Debug().
		Int64("conversation", conversationID).
		Int64("reply", replyID).
		Str("status", string(target)).
		Msg("reply status advanced")

	if s.bus != nil {
		s.bus.Publish(domain.ReplyStatusChangedEvent{
			ConversationID: conversationID,
			ReplyID:        replyID,
			Status:         target,
			EventTime:      s.sched.Now(),
		})
	}
	return true
}

// Pending returns the number of transitions still waiting to fire.
func (s *StatusSimulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// CancelConversation drops every pending transition for one conversation.
func (s *StatusSimulator) CancelConversation(conversationID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, p := range s.pending {
		if key.conversationID != conversationID {
			continue
		}
		p.timer.Stop()
		delete(s.pending, key)
		n++
	}
	return n
}

// Stop cancels everything and ignores later Track calls.
func (s *StatusSimulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
}
