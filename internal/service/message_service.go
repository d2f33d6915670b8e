package service

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/logger"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
	"github.com/clippy-oss/homie/portal-messages/internal/schedule"
)

// MessageService is the single entry point presentation adapters use to read
// and mutate conversations. Every mutation publishes a domain event.
type MessageService struct {
	store     repository.ConversationStore
	simulator *StatusSimulator
	sched     schedule.Scheduler
	eventBus  *domain.SimpleEventBus
	log       zerolog.Logger
}

func NewMessageService(
	store repository.ConversationStore,
	sched schedule.Scheduler,
	eventBus *domain.SimpleEventBus,
	config StatusSimulatorConfig,
) *MessageService {
	if eventBus == nil {
		eventBus = domain.NewEventBus()
	}
	return &MessageService{
		store:     store,
		simulator: NewStatusSimulator(store, sched, eventBus, config),
		sched:     sched,
		eventBus:  eventBus,
		log:       logger.Module("messages"),
	}
}

func (s *MessageService) GetEventBus() *domain.SimpleEventBus {
	return s.eventBus
}

func (s *MessageService) Simulator() *StatusSimulator {
	return s.simulator
}

func (s *MessageService) Now() time.Time {
	return s.sched.Now()
}

func (s *MessageService) ListConversations(filter repository.ConversationFilter) []*domain.Conversation {
	return s.store.List(filter)
}

func (s *MessageService) GetConversation(id int64) (*domain.Conversation, error) {
	return s.store.Get(id)
}

// SendReply appends a reply and starts its simulated delivery.
func (s *MessageService) SendReply(conversationID int64, text string) (domain.Reply, error) {
	reply, err := s.store.AppendReply(conversationID, text)
	if err != nil {
		return domain.Reply{}, errors.Wrap(err, "send reply")
	}

	s.log.Debug().
		Int64("conversation", conversationID).
		Int64("reply", reply.ID).
		Msg("reply appended")

	s.eventBus.Publish(domain.ReplyAppendedEvent{
		ConversationID: conversationID,
		Reply:          reply,
		EventTime:      reply.CreatedAt,
	})
	s.simulator.Track(conversationID, reply)
	return reply, nil
}

func (s *MessageService) EditReply(conversationID, replyID int64, text string) (domain.Reply, error) {
	reply, err := s.store.EditReply(conversationID, replyID, text)
	if err != nil {
		return domain.Reply{}, errors.Wrap(err, "edit reply")
	}

	s.eventBus.Publish(domain.ReplyEditedEvent{
		ConversationID: conversationID,
		Reply:          reply,
		EventTime:      reply.EditedAt,
	})
	return reply, nil
}

func (s *MessageService) MarkAllRead(conversationID int64) (*domain.Conversation, error) {
	before, err := s.store.Get(conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "mark read")
	}
	if before.UnreadCount == 0 {
		return before, nil
	}
	return s.publishUpdate(s.store.MarkAllRead(conversationID))
}

func (s *MessageService) SetPinned(conversationID int64, pinned bool) (*domain.Conversation, error) {
	return s.publishUpdate(s.store.SetPinned(conversationID, pinned))
}

func (s *MessageService) SetArchived(conversationID int64, archived bool) (*domain.Conversation, error) {
	return s.publishUpdate(s.store.SetArchived(conversationID, archived))
}

func (s *MessageService) publishUpdate(c *domain.Conversation, err error) (*domain.Conversation, error) {
	if err != nil {
		return nil, errors.Wrap(err, "update conversation")
	}
	s.eventBus.Publish(domain.ConversationUpdatedEvent{
		Conversation: c,
		EventTime:    s.sched.Now(),
	})
	return c, nil
}

// Close stops pending status transitions and closes event subscriptions.
func (s *MessageService) Close() {
	s.simulator.Stop()
	s.eventBus.Close()
}
