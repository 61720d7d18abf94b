package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService campus-connect-ai/internal/service ChatService

import (
	"context"

	"campus-connect-ai/internal/contextutil"
	"campus-connect-ai/internal/pipeline"
)

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string
	History []pipeline.Turn
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply    string
	Degraded bool
}

// ChatService provides the question answering functionality.
type ChatService interface {
	// ProcessChat answers a question and returns the full response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat answers a question, streaming the response via callback.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error
}

// chatService implements ChatService on top of the answer pipeline.
type chatService struct {
	engine pipeline.Engine
}

// NewChatService creates a new ChatService.
func NewChatService(engine pipeline.Engine) ChatService {
	return &chatService{engine: engine}
}

// ProcessChat validates the request and runs the answer pipeline.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validate(req); err != nil {
		logger.WarnContext(ctx, "invalid chat request", "error", err)
		return ChatResponse{}, err
	}

	answer, err := s.engine.Answer(ctx, pipeline.Request{
		Question: req.Message,
		History:  req.History,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		return ChatResponse{}, WrapError(err, "failed to answer question")
	}

	logger.InfoContext(ctx, "chat request processed",
		"message_length", len(req.Message), "reply_length", len(answer.Text), "degraded", answer.Degraded)
	return ChatResponse{Reply: answer.Text, Degraded: answer.Degraded}, nil
}

// StreamChat validates the request and streams the pipeline's answer.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validate(req); err != nil {
		logger.WarnContext(ctx, "invalid streaming chat request", "error", err)
		return err
	}

	err := s.engine.AnswerStream(ctx, pipeline.Request{
		Question: req.Message,
		History:  req.History,
	}, callback)
	if err != nil {
		logger.ErrorContext(ctx, "failed to stream answer", "error", err)
		return WrapError(err, "failed to stream answer")
	}

	logger.InfoContext(ctx, "streaming chat request processed", "message_length", len(req.Message))
	return nil
}

func validate(req ChatRequest) error {
	if req.Message == "" {
		return &ValidationError{Field: "message", Message: "cannot be empty"}
	}
	for _, turn := range req.History {
		if turn.Role != pipeline.RoleUser && turn.Role != pipeline.RoleAssistant {
			return &ValidationError{Field: "history", Message: "role must be user or assistant"}
		}
	}
	return nil
}
