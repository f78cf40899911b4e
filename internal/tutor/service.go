package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aischool/aischool/internal/llm"
	"github.com/aischool/aischool/internal/logger"
)

// Purposes label LLM calls in the event log.
const (
	PurposeChat           = "tutor-chat"
	PurposeRecommendation = "recommendation"
	PurposeFeedback       = "quiz-feedback"
)

// Fallback texts shown when the model cannot be reached.
const (
	ChatFallback           = "I'm having trouble connecting right now. Please try again later."
	RecommendationFallback = "Could not generate a recommendation at this time."
	CorrectFallback        = "Great job!"
)

// ErrEmptyPrompt is returned when the learner sends a blank message.
var ErrEmptyPrompt = errors.New("prompt is empty")

// IncorrectFallback is the feedback shown for a wrong answer when the model
// cannot be reached.
func IncorrectFallback(correct string) string {
	return fmt.Sprintf("The correct answer is %s.", correct)
}

// Config tunes generation per call type.
type Config struct {
	MaxTokens            int
	ChatTemperature      float64
	RecommendTemperature float64
	FeedbackTemperature  float64
	Timeout              time.Duration
}

// DefaultConfig returns the tutor defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:            1024,
		ChatTemperature:      0.7,
		RecommendTemperature: 0.8,
		FeedbackTemperature:  0.5,
		Timeout:              30 * time.Second,
	}
}

// Reply is the tutor's answer. Fallback is set when Text is the canned
// message shown after a model failure.
type Reply struct {
	Text     string
	Fallback bool
}

// Service talks to the model on behalf of a learner. Model failures never
// surface as errors: they are logged and replaced by the fallback text.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

// NewService creates a tutor service. A nil logger discards diagnostics.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Ask answers prompt in the context of subject and the prior conversation.
// history holds earlier turns, oldest first, without the new prompt.
func (s *Service) Ask(ctx context.Context, subject Subject, history []llm.Message, prompt string) (Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Reply{}, ErrEmptyPrompt
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})

	text, err := s.generateText(ctx, PurposeChat, llm.Request{
		System:      chatSystemPrompt(subject),
		Messages:    msgs,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.ChatTemperature,
	})
	if err != nil {
		return Reply{Text: ChatFallback, Fallback: true}, nil
	}
	return Reply{Text: text}, nil
}

type recommendationOutput struct {
	Recommendation string `json:"recommendation"`
}

// Recommend suggests one next step for a learner at level who has finished
// the completed assignments (titles or IDs).
func (s *Service) Recommend(ctx context.Context, subject Subject, level int, completed []string) Reply {
	fallback := Reply{Text: RecommendationFallback, Fallback: true}

	ctx, cancel := s.withTimeout(llm.WithPurpose(ctx, PurposeRecommendation))
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      recommendationSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildRecommendationMessage(subject, level, completed)}},
		Schema:      RecommendationSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.RecommendTemperature,
	})
	if err != nil {
		s.log.Warn("recommendation failed", "reason", llm.Reason(err), "error", err)
		return fallback
	}

	var out recommendationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		s.log.Warn("recommendation unparseable", "error", err)
		return fallback
	}
	text := strings.TrimSpace(out.Recommendation)
	if text == "" {
		s.log.Warn("recommendation empty")
		return fallback
	}
	return Reply{Text: text}
}

// QuizFeedback returns one sentence of feedback on a quiz answer.
func (s *Service) QuizFeedback(ctx context.Context, question, answer, correct string) Reply {
	text, err := s.generateText(ctx, PurposeFeedback, llm.Request{
		System:      feedbackSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildFeedbackMessage(question, answer, correct)}},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.FeedbackTemperature,
	})
	if err == nil {
		return Reply{Text: text}
	}
	if answer == correct {
		return Reply{Text: CorrectFallback, Fallback: true}
	}
	return Reply{Text: IncorrectFallback(correct), Fallback: true}
}

func (s *Service) generateText(ctx context.Context, purpose string, req llm.Request) (string, error) {
	ctx, cancel := s.withTimeout(llm.WithPurpose(ctx, purpose))
	defer cancel()

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.log.Warn("tutor request failed", "purpose", purpose, "reason", llm.Reason(err), "error", err)
		return "", err
	}
	text := resp.Text()
	if text == "" {
		s.log.Warn("tutor returned empty text", "purpose", purpose)
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty text")}
	}
	return text, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
