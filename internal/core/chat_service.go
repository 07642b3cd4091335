package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pjf-digital/consultai/internal/store"
)

// Replier produces a single assistant reply for a single user message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// ChatService ties the guardrails, the provider bridge and the
// conversation store together.
type ChatService struct {
	convStore  *store.ConversationStore
	llm        Replier
	guardrails *Guardrails // nil disables screening
	logger     *zap.Logger
}

func NewChatService(convStore *store.ConversationStore, llm Replier, guardrails *Guardrails, logger *zap.Logger) *ChatService {
	return &ChatService{
		convStore:  convStore,
		llm:        llm,
		guardrails: guardrails,
		logger:     logger,
	}
}

// Reply answers one message with no session state: guardrails, provider
// call, reply screen.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	if s.guardrails != nil {
		if err := s.guardrails.ValidatePrompt(message); err != nil {
			return "", err
		}
	}

	reply, err := s.llm.Reply(ctx, message)
	if err != nil {
		return "", err
	}

	if s.guardrails != nil {
		if err := s.guardrails.ValidateResponse(reply); err != nil {
			return "", err
		}
	}
	return reply, nil
}

// PostMessage appends the user message to the current conversation,
// obtains the assistant reply and appends it too. The user message is
// kept even when the provider call fails, matching the transcript the
// citizen already saw.
func (s *ChatService) PostMessage(ctx context.Context, text string) (store.Message, error) {
	if s.guardrails != nil {
		if err := s.guardrails.ValidatePrompt(text); err != nil {
			return store.Message{}, err
		}
	}

	if _, err := s.convStore.AddMessage(text, store.SenderUser); err != nil {
		return store.Message{}, err
	}

	reply, err := s.llm.Reply(ctx, text)
	if err != nil {
		return store.Message{}, err
	}
	if s.guardrails != nil {
		if err := s.guardrails.ValidateResponse(reply); err != nil {
			return store.Message{}, err
		}
	}

	botMsg, err := s.convStore.AddMessage(reply, store.SenderBot)
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to store bot reply: %w", err)
	}

	s.logger.Debug("message exchange completed",
		zap.String("message_id", botMsg.ID),
		zap.Int("reply_len", len(reply)),
	)
	return botMsg, nil
}
