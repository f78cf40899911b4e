package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aischool/aischool/internal/progression"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"users", "session", "events", "llm_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.UserRepo().Save(ctx, progression.New("user-1", "Alex", "alex@example.com", progression.RoleStudent)); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.UserRepo().Get(ctx, "user-1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestUserSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	p := progression.New("user-1", "Alex Doe", "alex@example.com", progression.RoleStudent)
	p.XP = 150
	p.Level = 2
	p.HP = 80
	p.Badges = []string{"AI_EXPLORER"}
	p.CompletedAssignments = []string{"as-1"}

	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.XP != 150 || got.HP != 80 || got.Level != 2 || got.Name != "Alex Doe" {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Badges) != 1 || got.Badges[0] != "AI_EXPLORER" {
		t.Errorf("badges = %v", got.Badges)
	}

	byEmail, err := repo.GetByEmail(ctx, "ALEX@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("by email id = %q", byEmail.ID)
	}

	// Upsert replaces.
	p.XP = 400
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.Get(ctx, "user-1")
	if got.XP != 400 || got.Level != 3 {
		t.Errorf("after update xp=%d level=%d", got.XP, got.Level)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestUserGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.UserRepo().Get(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrCorrupt) {
		t.Fatal("missing record should not be reported as corrupt")
	}
}

func TestUserCorruptRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`INSERT INTO users (id, email, data, updated_at) VALUES ('user-x', 'x@example.com', '{not json', 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.UserRepo().Get(ctx, "user-x")
	if !errors.Is(err, ErrCorrupt) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if got.ID != "user-x" || got.Email != "x@example.com" || got.HP != progression.InitialHP {
		t.Fatalf("corrupt record should keep identity with defaults, got %+v", got)
	}
	if _, err := s.UserRepo().GetByEmail(ctx, "X@example.com"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("GetByEmail err = %v, want ErrCorrupt", err)
	}

	if err := s.UserRepo().Save(ctx, progression.New("user-1", "A", "a@example.com", progression.RoleStudent)); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := s.UserRepo().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "user-1" {
		t.Fatalf("list = %+v", list)
	}
}

func TestUserNormalizedOnLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`INSERT INTO users (id, email, data, updated_at) VALUES
		('user-y', 'y@example.com', '{"id":"user-y","xp":320,"level":1,"hp":250,"badges":null}', 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.UserRepo().Get(ctx, "user-y")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Level != 3 || got.HP != 100 || got.Badges == nil {
		t.Fatalf("not normalized: %+v", got)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, progression.New("user-1", "A", "same@example.com", progression.RoleStudent)); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := repo.Save(ctx, progression.New("user-2", "B", "Same@Example.com", progression.RoleStudent))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	if _, err := repo.Get(ctx, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected user was stored: %v", err)
	}
}

func TestUserSaveOtherConstraintIsNotDuplicate(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	// Same message text as a unique violation, different result code.
	if _, err := s.DB().ExecContext(ctx, `
		CREATE TRIGGER users_frozen BEFORE INSERT ON users
		BEGIN SELECT RAISE(ABORT, 'UNIQUE constraint failed: users.email'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := repo.Save(ctx, progression.New("user-1", "A", "a@example.com", progression.RoleStudent))
	if err == nil {
		t.Fatal("expected the trigger to abort the save")
	}
	if errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, should not be ErrDuplicateEmail", err)
	}
}

func TestUserWithoutEmail(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	for _, id := range []string{"user-a", "user-b"} {
		if err := repo.Save(ctx, progression.New(id, "", "", progression.RoleStudent)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	if _, err := repo.GetByEmail(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByEmail(\"\") err = %v", err)
	}
}

func TestUserSaveKeepsStoredEmail(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, progression.New("user-1", "A", "a@example.com", progression.RoleStudent)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, progression.New("user-1", "", "", progression.RoleStudent)); err != nil {
		t.Fatalf("save without email: %v", err)
	}

	var email string
	if err := s.DB().Get(&email, `SELECT email FROM users WHERE id = 'user-1'`); err != nil {
		t.Fatalf("select email: %v", err)
	}
	if email != "a@example.com" {
		t.Fatalf("email = %q, want a@example.com", email)
	}
}

func TestSessionActiveUser(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	if _, err := repo.ActiveID(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty session err = %v", err)
	}
	if err := repo.SetActive(ctx, "user-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetActive(ctx, "user-2"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	id, err := repo.ActiveID(ctx)
	if err != nil || id != "user-2" {
		t.Fatalf("active = %q, %v", id, err)
	}
	if err := repo.ClearActive(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.ActiveID(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after clear err = %v", err)
	}
}

func TestEventHistorySinceReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvent := func(e Event) Event {
		t.Helper()
		out, err := repo.Append(ctx, e)
		if err != nil {
			t.Fatalf("append %s: %v", e.Kind, err)
		}
		return out
	}

	appendEvent(Event{UserID: "user-1", Kind: EventQuizCompleted, Ref: "as-1", Score: 2, Total: 2})
	appendEvent(Event{UserID: "user-1", Kind: EventProgressReset})
	appendEvent(Event{UserID: "user-2", Kind: EventAssistantQuestion, Ref: "Science"})
	at := time.Date(2024, 9, 3, 10, 0, 0, 0, time.UTC)
	last := appendEvent(Event{UserID: "user-1", Kind: EventQuizCompleted, Ref: "as-2", Score: 1, Total: 3, Timestamp: at})

	hist, err := repo.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history len = %d, want 1: %+v", len(hist), hist)
	}
	got := hist[0]
	if got.Ref != "as-2" || got.Score != 1 || got.Total != 3 || !got.Timestamp.Equal(at) {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Sequence != last.Sequence || got.ID != last.ID {
		t.Errorf("stored %+v, returned %+v", got, last)
	}

	other, err := repo.History(ctx, "user-2")
	if err != nil || len(other) != 1 {
		t.Fatalf("user-2 history = %v, %v", other, err)
	}
}

func TestEventAppendRequiresUserAndKind(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.EventRepo().Append(context.Background(), Event{Kind: EventProgressReset}); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	records := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nhi"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "recommendation", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor-chat", InputTokens: 20, OutputTokens: 10, LatencyMs: 400, Success: false, ErrorMessage: "boom"},
	}
	for _, r := range records {
		if err := repo.AppendLLMRequest(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].ErrorMessage != "boom" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	chat, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "tutor-chat", Limit: 1})
	if err != nil || len(chat) != 1 || chat[0].Success {
		t.Fatalf("filtered = %+v, %v", chat, err)
	}

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil || first == nil {
		t.Fatalf("get: %v, %v", first, err)
	}
	if first.RequestBody != "[user]\nhi" || !first.Success {
		t.Errorf("unexpected event: %+v", first)
	}
	if missing, err := repo.GetLLMEvent(ctx, 999); err != nil || missing != nil {
		t.Fatalf("missing = %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "tutor-chat" {
		t.Fatalf("by purpose = %+v", byPurpose)
	}
	if u := byPurpose[0]; u.Calls != 2 || u.InputTokens != 120 || u.OutputTokens != 60 || u.AvgLatencyMs != 300 {
		t.Errorf("tutor-chat usage = %+v", u)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil || len(byModel) != 1 || byModel[0].Calls != 3 {
		t.Fatalf("by model = %+v, %v", byModel, err)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	first, err := repo.Append(ctx, Event{UserID: "u", Kind: EventAssistantQuestion})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock"}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	second, err := repo.Append(ctx, Event{UserID: "u", Kind: EventAssistantQuestion})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	llm, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	if !(first.Sequence < llm[0].Sequence && llm[0].Sequence < second.Sequence) {
		t.Fatalf("sequences not interleaved: %d, %d, %d", first.Sequence, llm[0].Sequence, second.Sequence)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx, s.DB())
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestInTxCommits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(users UserRepo, events EventRepo) error {
		p := progression.New("user-1", "Ada", "ada@example.com", progression.RoleStudent)
		p.XP = 50
		if err := users.Save(ctx, p); err != nil {
			return err
		}
		_, err := events.Append(ctx, Event{UserID: "user-1", Kind: EventQuizCompleted, Ref: "as-1", Score: 2, Total: 2})
		return err
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	p, err := s.UserRepo().Get(ctx, "user-1")
	if err != nil || p.XP != 50 {
		t.Fatalf("get = %+v, %v", p, err)
	}
	history, _ := s.EventRepo().History(ctx, "user-1")
	if len(history) != 1 || history[0].Sequence != 1 {
		t.Fatalf("history = %+v", history)
	}
}

func TestInTxRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(users UserRepo, events EventRepo) error {
		if err := users.Save(ctx, progression.New("user-1", "Ada", "ada@example.com", progression.RoleStudent)); err != nil {
			return err
		}
		if _, err := events.Append(ctx, Event{UserID: "user-1", Kind: EventQuizCompleted, Ref: "as-1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if _, err := s.UserRepo().Get(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user survived rollback: %v", err)
	}
	if history, _ := s.EventRepo().History(ctx, "user-1"); len(history) != 0 {
		t.Fatalf("events survived rollback: %+v", history)
	}

	// The rolled back sequence number is handed out again.
	e, err := s.EventRepo().Append(ctx, Event{UserID: "user-2", Kind: EventProgressReset})
	if err != nil || e.Sequence != 1 {
		t.Fatalf("append after rollback = %+v, %v", e, err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("AISCHOOL_DB", filepath.Join(dir, "nested", "x.db"))
	p, err := DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "nested", "x.db") {
		t.Fatalf("env path = %q, %v", p, err)
	}

	t.Setenv("AISCHOOL_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "aischool", "aischool.db") {
		t.Fatalf("xdg path = %q, %v", p, err)
	}
}
