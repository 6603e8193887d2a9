package services

import (
	"context"
	"strings"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/openrouter"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/rs/zerolog"
)

const companionHistoryLimit = 40

const companionSystemPrompt = `You are Wall-E, a compassionate and understanding mental health support chatbot. Your purpose is to:

1. Provide emotional support and a safe space for users to express their feelings
2. Offer evidence-based coping strategies and mindfulness techniques
3. Encourage healthy habits and self-care practices
4. Help users identify patterns in their thoughts and emotions
5. Maintain appropriate boundaries and regularly remind users that you're not a substitute for professional mental health care

Guidelines:
- Keep responses concise (2-3 paragraphs max) but warm and engaging
- Use empathetic and non-judgmental language
- Validate user feelings while gently encouraging positive actions
- If you detect signs of crisis or severe distress, provide these emergency resources:
  * National Crisis Hotline (US): 988
  * Crisis Text Line: Text HOME to 741741
  * Encourage seeking immediate professional help

Remember: Always prioritize user safety and well-being. If someone expresses thoughts of self-harm or suicide, treat it as an emergency and provide crisis resources immediately.`

// CompanionWelcome opens every fresh companion thread.
const CompanionWelcome = "Hello! I'm Wall-E, your mental health support companion. I'm here to listen and help you navigate through your thoughts and feelings. While I'm not a replacement for professional help, I can offer support and coping strategies. How are you feeling today?"

type completionClient interface {
	Complete(ctx context.Context, messages []openrouter.Message) (string, error)
}

type companionStore interface {
	InsertMessage(ctx context.Context, userID int64, role, content string) (*models.CompanionMessage, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.CompanionMessage, error)
}

type CompanionService struct {
	companionRepo companionStore
	client        completionClient
	logger        zerolog.Logger
}

func NewCompanionService(companionRepo *repository.CompanionRepository, client *openrouter.Client, logger zerolog.Logger) *CompanionService {
	s := &CompanionService{companionRepo: companionRepo, logger: logger}
	if client != nil {
		s.client = client
	}
	return s
}

// Send stores the user's message, runs the recent thread through the model,
// and stores the assistant reply. The user's message survives even when the
// model call fails, so a retry does not lose what they typed.
func (s *CompanionService) Send(ctx context.Context, userID int64, content string) (*models.CompanionMessage, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.companionRepo.InsertMessage(ctx, userID, "user", trimmed); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, ErrCompanionUnavailable
	}

	history, err := s.companionRepo.ListByUser(ctx, userID, companionHistoryLimit)
	if err != nil {
		return nil, err
	}
	prompt := make([]openrouter.Message, 0, len(history)+1)
	prompt = append(prompt, openrouter.Message{Role: "system", Content: companionSystemPrompt})
	for _, message := range history {
		prompt = append(prompt, openrouter.Message{Role: message.Role, Content: message.Content})
	}

	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("companion completion failed")
		return nil, ErrCompanionUnavailable
	}
	return s.companionRepo.InsertMessage(ctx, userID, "assistant", reply)
}

// History returns the recent companion thread, seeding the welcome message
// into an empty one.
func (s *CompanionService) History(ctx context.Context, userID int64) ([]models.CompanionMessage, error) {
	history, err := s.companionRepo.ListByUser(ctx, userID, companionHistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		welcome, err := s.companionRepo.InsertMessage(ctx, userID, "assistant", CompanionWelcome)
		if err != nil {
			return nil, err
		}
		return []models.CompanionMessage{*welcome}, nil
	}
	return history, nil
}
