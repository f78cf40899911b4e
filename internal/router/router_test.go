package router

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		view     View
		signedIn bool
		want     View
	}{
		{Home, true, Home},
		{Profile, true, Profile},
		{Assistant, true, Assistant},
		{Login, true, Home},
		{Register, true, Home},
		{"settings", true, Home},
		{Home, false, Login},
		{Profile, false, Login},
		{Resources, false, Login},
		{Login, false, Login},
		{Register, false, Register},
		{"settings", false, Login},
	}
	for _, tt := range tests {
		if got := Resolve(tt.view, tt.signedIn); got != tt.want {
			t.Errorf("Resolve(%q, %v) = %q, want %q", tt.view, tt.signedIn, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if v, ok := Parse(" Profile "); !ok || v != Profile {
		t.Errorf("Parse(Profile) = %q, %v", v, ok)
	}
	if v, ok := Parse("ai_assistant"); !ok || v != Assistant {
		t.Errorf("Parse(ai_assistant) = %q, %v", v, ok)
	}
	if _, ok := Parse("admin"); ok {
		t.Error("Parse(admin) should fail")
	}
}

func TestNew(t *testing.T) {
	if got := New(true).Active(); got != Home {
		t.Errorf("signed in landing = %q", got)
	}
	if got := New(false).Active(); got != Login {
		t.Errorf("signed out landing = %q", got)
	}
}

func TestPush(t *testing.T) {
	r := New(true)

	if got := r.Push(Assignments); got != Assignments {
		t.Errorf("Push returned %q", got)
	}
	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}

	r.Push(Assignments)
	if r.Depth() != 2 {
		t.Errorf("pushing the active view should not grow the stack, depth %d", r.Depth())
	}

	if got := r.Push(Login); got != Home {
		t.Errorf("Push(Login) while signed in = %q, want home", got)
	}
	if r.Active() != Home || r.Depth() != 3 {
		t.Errorf("active %q depth %d", r.Active(), r.Depth())
	}
}

func TestPop(t *testing.T) {
	r := New(true)
	r.Push(Profile)

	if got := r.Pop(); got != Home {
		t.Errorf("Pop = %q, want home", got)
	}
	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(false)
	r.Pop()

	if r.Depth() != 1 || r.Active() != Login {
		t.Errorf("depth %d active %q after pop at bottom", r.Depth(), r.Active())
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	r := New(true)
	r.Push(Profile)
	r.Replace(Resources)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active() != Resources {
		t.Errorf("expected active resources, got %q", r.Active())
	}
}

func TestSignedOutNavigation(t *testing.T) {
	r := New(false)

	if got := r.Push(Register); got != Register {
		t.Errorf("Push(Register) = %q", got)
	}
	if got := r.Push(Profile); got != Login {
		t.Errorf("Push(Profile) signed out = %q, want login", got)
	}
}

func TestSetSignedIn(t *testing.T) {
	r := New(false)
	r.Push(Register)

	if got := r.SetSignedIn(true); got != Home {
		t.Errorf("after sign in = %q", got)
	}
	if r.Depth() != 1 || !r.SignedIn() {
		t.Errorf("depth %d signedIn %v", r.Depth(), r.SignedIn())
	}

	r.Push(Profile)
	r.Push(Assistant)
	if got := r.SetSignedIn(false); got != Login {
		t.Errorf("after sign out = %q", got)
	}
	if r.Depth() != 1 {
		t.Errorf("history should be discarded on sign out, depth %d", r.Depth())
	}

	if got := r.SetSignedIn(false); got != Login || r.Depth() != 1 {
		t.Errorf("repeated sign out = %q depth %d", got, r.Depth())
	}
}

func TestTitles(t *testing.T) {
	for _, v := range Views() {
		if v.Title() == "" || v.Title() == string(v) {
			t.Errorf("view %q has no title", v)
		}
	}
}
