package tutor

import (
	"context"
	"strings"

	"github.com/aischool/aischool/internal/llm"
)

// Chat is a multi-turn conversation about one subject. Only exchanges the
// model actually answered are kept as context for later turns.
type Chat struct {
	svc     *Service
	subject Subject
	history []llm.Message
}

// NewChat starts an empty conversation.
func (s *Service) NewChat(subject Subject) *Chat {
	return &Chat{svc: s, subject: subject}
}

// Subject returns the conversation's subject.
func (c *Chat) Subject() Subject { return c.subject }

// History returns a copy of the turns so far.
func (c *Chat) History() []llm.Message {
	return append([]llm.Message(nil), c.history...)
}

// Send asks the next question.
func (c *Chat) Send(ctx context.Context, prompt string) (Reply, error) {
	reply, err := c.svc.Ask(ctx, c.subject, c.history, prompt)
	if err != nil {
		return Reply{}, err
	}
	if !reply.Fallback {
		c.history = append(c.history,
			llm.Message{Role: llm.RoleUser, Content: strings.TrimSpace(prompt)},
			llm.Message{Role: llm.RoleAssistant, Content: reply.Text},
		)
	}
	return reply, nil
}
