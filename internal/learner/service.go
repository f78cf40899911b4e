// Package learner applies progression, badge and tutor operations to
// stored learner records and keeps the activity log in step.
package learner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aischool/aischool/internal/badges"
	"github.com/aischool/aischool/internal/catalog"
	"github.com/aischool/aischool/internal/llm"
	"github.com/aischool/aischool/internal/logger"
	"github.com/aischool/aischool/internal/progression"
	"github.com/aischool/aischool/internal/quiz"
	"github.com/aischool/aischool/internal/store"
	"github.com/aischool/aischool/internal/tutor"
)

var (
	ErrEmailTaken   = errors.New("email is already registered")
	ErrUnknownEmail = errors.New("no account with that email")
	ErrNoActiveUser = errors.New("no user is signed in")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the persistence a Service needs. *store.Store satisfies it.
type Store interface {
	UserRepo() store.UserRepo
	SessionRepo() store.SessionRepo
	EventRepo() store.EventRepo
	InTx(ctx context.Context, fn func(users store.UserRepo, events store.EventRepo) error) error
}

// Service is safe for concurrent use. Operations that read, modify and
// write a record are serialized, and each one's record and event writes
// commit together.
type Service struct {
	mu sync.Mutex

	st      Store
	users   store.UserRepo
	session store.SessionRepo
	events  store.EventRepo
	tutor   *tutor.Service
	catalog *catalog.Catalog

	levels progression.LevelTable
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLevels replaces the default level table.
func WithLevels(t progression.LevelTable) Option {
	return func(s *Service) { s.levels = t }
}

// WithLocation sets the time zone used for streak day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for account and quiz events.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService wires a learner service. tut and cat may be nil when the
// caller never uses the assistant or recommendation operations.
func NewService(st Store, tut *tutor.Service, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		st:      st,
		users:   st.UserRepo(),
		session: st.SessionRepo(),
		events:  st.EventRepo(),
		tutor:   tut,
		catalog: cat,
		levels:  progression.DefaultLevels(),
		loc:     time.UTC,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates a student or teacher record and signs it in.
func (s *Service) Register(ctx context.Context, name, email string, role progression.Role) (progression.Progress, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if role == "" {
		role = progression.RoleStudent
	}
	switch {
	case name == "":
		return progression.Progress{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !strings.Contains(email, "@"):
		return progression.Progress{}, fmt.Errorf("%w: email %q", ErrInvalidInput, email)
	case !role.Valid():
		return progression.Progress{}, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return progression.Progress{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return progression.Progress{}, err
	}

	id := "user-" + uuid.NewString()
	p := progression.New(id, name, email, role)
	p.Avatar = fmt.Sprintf("https://picsum.photos/seed/%s/200", id)

	if err := s.users.Save(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return progression.Progress{}, ErrEmailTaken
		}
		return progression.Progress{}, err
	}
	if err := s.session.SetActive(ctx, id); err != nil {
		return progression.Progress{}, err
	}
	s.log.Info("user registered", "user_id", id, "role", string(role))
	return p, nil
}

// SignIn makes the account with email the active user.
func (s *Service) SignIn(ctx context.Context, email string) (progression.Progress, error) {
	p, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrCorrupt) {
		s.log.Warn("using default learner record", "user_id", p.ID, "error", err)
		err = nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return progression.Progress{}, ErrUnknownEmail
	}
	if err != nil {
		return progression.Progress{}, err
	}
	if err := s.session.SetActive(ctx, p.ID); err != nil {
		return progression.Progress{}, err
	}
	return p, nil
}

// SignOut clears the active user. It is not an error when nobody is signed in.
func (s *Service) SignOut(ctx context.Context) error {
	return s.session.ClearActive(ctx)
}

// Active returns the signed-in learner. A pointer to a record that no
// longer exists is cleared and reported as ErrNoActiveUser.
func (s *Service) Active(ctx context.Context) (progression.Progress, error) {
	id, err := s.session.ActiveID(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return progression.Progress{}, ErrNoActiveUser
	}
	if err != nil {
		return progression.Progress{}, err
	}

	p, err := s.users.Get(ctx, id)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, store.ErrCorrupt):
		s.log.Warn("using default learner record", "user_id", id, "error", err)
		return p, nil
	case errors.Is(err, store.ErrNotFound):
		s.log.Warn("active user missing, signing out", "user_id", id)
		if err := s.session.ClearActive(ctx); err != nil {
			return progression.Progress{}, err
		}
		return progression.Progress{}, ErrNoActiveUser
	default:
		return progression.Progress{}, err
	}
}

// Users lists every stored learner.
func (s *Service) Users(ctx context.Context) ([]progression.Progress, error) {
	return s.users.List(ctx)
}

// Load returns the record for id. A missing or unreadable record yields a
// default record with that ID instead of an error. An unreadable record
// keeps its stored e-mail so the account can still sign in.
func (s *Service) Load(ctx context.Context, id string) (progression.Progress, error) {
	return s.load(ctx, s.users, id)
}

func (s *Service) load(ctx context.Context, users store.UserRepo, id string) (progression.Progress, error) {
	p, err := users.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		s.log.Warn("using default learner record", "user_id", id, "error", err)
		return p, nil
	case errors.Is(err, store.ErrNotFound):
		s.log.Warn("using default learner record", "user_id", id, "error", err)
		return progression.New(id, "", "", progression.RoleStudent), nil
	}
	return p, err
}

// QuizResult is the effect of finishing a quiz.
type QuizResult struct {
	Progress progression.Progress
	Outcome  progression.Outcome
	Awarded  []badges.Key
}

// CompleteQuiz records a finished quiz. Re-completing an assignment or
// submitting an empty quiz changes nothing and logs no event.
func (s *Service) CompleteQuiz(ctx context.Context, id string, a quiz.Assignment, score, total int) (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res QuizResult
	err := s.st.InTx(ctx, func(users store.UserRepo, events store.EventRepo) error {
		p, err := s.load(ctx, users, id)
		if err != nil {
			return err
		}
		next, out := progression.ApplyQuizOutcome(p, a, score, total, s.levels)
		res = QuizResult{Progress: next, Outcome: out}
		if out.AlreadyCompleted || out.Skipped {
			return nil
		}

		if err := users.Save(ctx, next); err != nil {
			return err
		}
		if _, err := events.Append(ctx, store.Event{
			Timestamp: s.now(),
			UserID:    id,
			Kind:      store.EventQuizCompleted,
			Ref:       a.ID,
			Score:     out.Score,
			Total:     out.Total,
			Detail:    a.Title,
		}); err != nil {
			return err
		}
		res.Progress, res.Awarded, err = s.awardBadges(ctx, users, events, next)
		return err
	})
	if err != nil {
		return QuizResult{}, err
	}

	if out := res.Outcome; !out.AlreadyCompleted && !out.Skipped {
		s.log.Info("quiz completed", "user_id", id, "assignment", a.ID,
			"score", out.Score, "total", out.Total, "xp_gained", out.XPGained, "level", out.LevelAfter)
	}
	s.logAwarded(id, res.Awarded)
	return res, nil
}

// AssistantResult is the effect of asking the tutor a question.
type AssistantResult struct {
	Reply    tutor.Reply
	Progress progression.Progress
	Awarded  []badges.Key
}

// AskAssistant sends prompt to the tutor and counts it towards AI Explorer.
// Questions answered with the fallback text still count.
func (s *Service) AskAssistant(ctx context.Context, id string, subject tutor.Subject, history []llm.Message, prompt string) (AssistantResult, error) {
	if s.tutor == nil {
		return AssistantResult{}, errors.New("assistant is not configured")
	}
	reply, err := s.tutor.Ask(ctx, subject, history, prompt)
	if err != nil {
		return AssistantResult{}, err
	}
	return s.countQuestion(ctx, id, subject, reply)
}

// Converse sends prompt as the next turn of chat and counts it towards AI
// Explorer like AskAssistant.
func (s *Service) Converse(ctx context.Context, id string, chat *tutor.Chat, prompt string) (AssistantResult, error) {
	reply, err := chat.Send(ctx, prompt)
	if err != nil {
		return AssistantResult{}, err
	}
	return s.countQuestion(ctx, id, chat.Subject(), reply)
}

func (s *Service) countQuestion(ctx context.Context, id string, subject tutor.Subject, reply tutor.Reply) (AssistantResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := AssistantResult{Reply: reply}
	err := s.st.InTx(ctx, func(users store.UserRepo, events store.EventRepo) error {
		p, err := s.load(ctx, users, id)
		if err != nil {
			return err
		}
		if _, err := events.Append(ctx, store.Event{
			Timestamp: s.now(),
			UserID:    id,
			Kind:      store.EventAssistantQuestion,
			Ref:       string(subject),
		}); err != nil {
			return err
		}
		res.Progress, res.Awarded, err = s.awardBadges(ctx, users, events, p)
		return err
	})
	if err != nil {
		return AssistantResult{}, err
	}
	s.logAwarded(id, res.Awarded)
	return res, nil
}

// RecommendResult is the effect of asking for a recommendation.
type RecommendResult struct {
	Reply    tutor.Reply
	Progress progression.Progress
}

// Recommend asks the tutor for a next step and stores it on the record.
// Fallback text is returned but never stored.
func (s *Service) Recommend(ctx context.Context, id string, subject tutor.Subject) (RecommendResult, error) {
	if s.tutor == nil {
		return RecommendResult{}, errors.New("assistant is not configured")
	}

	p, err := s.Load(ctx, id)
	if err != nil {
		return RecommendResult{}, err
	}
	completed := p.CompletedAssignments
	if s.catalog != nil {
		completed = s.catalog.Titles(completed)
	}
	reply := s.tutor.Recommend(ctx, subject, p.Level, completed)
	if reply.Fallback {
		return RecommendResult{Reply: reply, Progress: p}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.st.InTx(ctx, func(users store.UserRepo, events store.EventRepo) error {
		// Reload so a quiz finished while the model was thinking is kept.
		current, err := s.load(ctx, users, id)
		if err != nil {
			return err
		}
		p = progression.AddRecommendation(current, reply.Text)
		if err := users.Save(ctx, p); err != nil {
			return err
		}
		_, err = events.Append(ctx, store.Event{
			Timestamp: s.now(),
			UserID:    id,
			Kind:      store.EventRecommendation,
			Ref:       string(subject),
			Detail:    reply.Text,
		})
		return err
	})
	if err != nil {
		return RecommendResult{}, err
	}
	return RecommendResult{Reply: reply, Progress: p}, nil
}

// Reset returns the record to its registration defaults, keeping identity.
// Badge history restarts from this point.
func (s *Service) Reset(ctx context.Context, id string) (progression.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p progression.Progress
	err := s.st.InTx(ctx, func(users store.UserRepo, events store.EventRepo) error {
		current, err := s.load(ctx, users, id)
		if err != nil {
			return err
		}
		p = progression.Reset(current)
		if err := users.Save(ctx, p); err != nil {
			return err
		}
		_, err = events.Append(ctx, store.Event{
			Timestamp: s.now(),
			UserID:    id,
			Kind:      store.EventProgressReset,
		})
		return err
	})
	if err != nil {
		return progression.Progress{}, err
	}
	s.log.Info("progress reset", "user_id", id)
	return p, nil
}

// BadgeHistory returns the activity the badge rules look at.
func (s *Service) BadgeHistory(ctx context.Context, id string) (badges.History, error) {
	return s.badgeHistory(ctx, s.events, id)
}

func (s *Service) badgeHistory(ctx context.Context, events store.EventRepo, id string) (badges.History, error) {
	history, err := events.History(ctx, id)
	if err != nil {
		return badges.History{}, err
	}
	h := badges.History{Location: s.loc}
	for _, e := range history {
		switch e.Kind {
		case store.EventAssistantQuestion:
			h.AssistantQuestions++
		case store.EventQuizCompleted:
			h.Completions = append(h.Completions, badges.Completion{
				AssignmentID: e.Ref,
				Score:        e.Score,
				Total:        e.Total,
				CompletedAt:  e.Timestamp,
			})
		}
	}
	return h, nil
}

// awardBadges grants every newly earned badge to p, persists the record and
// logs one badge_awarded event per badge, all through the caller's
// transaction. Callers hold s.mu.
func (s *Service) awardBadges(ctx context.Context, users store.UserRepo, events store.EventRepo, p progression.Progress) (progression.Progress, []badges.Key, error) {
	h, err := s.badgeHistory(ctx, events, p.ID)
	if err != nil {
		return p, nil, err
	}
	earned := badges.Evaluate(p, h)
	if len(earned) == 0 {
		return p, nil, nil
	}

	p = badges.Grant(p, earned...)
	if err := users.Save(ctx, p); err != nil {
		return p, nil, err
	}
	for _, k := range earned {
		if _, err := events.Append(ctx, store.Event{
			Timestamp: s.now(),
			UserID:    p.ID,
			Kind:      store.EventBadgeAwarded,
			Ref:       string(k),
		}); err != nil {
			return p, nil, err
		}
	}
	return p, earned, nil
}

func (s *Service) logAwarded(id string, awarded []badges.Key) {
	for _, k := range awarded {
		s.log.Info("badge awarded", "user_id", id, "badge", string(k))
	}
}
