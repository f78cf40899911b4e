// Package router decides which view a request lands on and keeps the
// back-stack of visited views.
package router

import "strings"

// View is one navigable area of the platform.
type View string

const (
	Home        View = "home"
	Login       View = "login"
	Register    View = "register"
	Profile     View = "profile"
	Assignments View = "assignments"
	Assistant   View = "assistant"
	Resources   View = "resources"
)

// Views returns every view in menu order.
func Views() []View {
	return []View{Home, Profile, Assignments, Assistant, Resources, Login, Register}
}

// Parse maps a name to a view. The original "ai_assistant" name is
// accepted as an alias.
func Parse(name string) (View, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "ai_assistant" {
		return Assistant, true
	}
	for _, v := range Views() {
		if string(v) == name {
			return v, true
		}
	}
	return "", false
}

// Auth reports whether v is a sign-in view, only reachable while signed out.
func (v View) Auth() bool {
	return v == Login || v == Register
}

// Title is the heading shown for the view.
func (v View) Title() string {
	switch v {
	case Home:
		return "Home"
	case Login:
		return "Sign in"
	case Register:
		return "Register"
	case Profile:
		return "Profile"
	case Assignments:
		return "Assignments"
	case Assistant:
		return "AI Assistant"
	case Resources:
		return "Resources"
	default:
		return string(v)
	}
}

// Resolve returns the view actually shown when v is requested. Signed-out
// users only ever see the sign-in views; signed-in users never do. Unknown
// views fall back to Home.
func Resolve(v View, signedIn bool) View {
	v, ok := Parse(string(v))
	if !ok {
		v = Home
	}
	switch {
	case !signedIn && !v.Auth():
		return Login
	case signedIn && v.Auth():
		return Home
	default:
		return v
	}
}

// Router manages a stack of views. Every view on the stack is valid for the
// current sign-in state.
type Router struct {
	stack    []View
	signedIn bool
}

// New creates a Router on the landing view for the sign-in state.
func New(signedIn bool) *Router {
	return &Router{
		stack:    []View{Resolve(Home, signedIn)},
		signedIn: signedIn,
	}
}

// Push navigates to v and returns the view shown. Navigating to the view
// already active does not grow the stack.
func (r *Router) Push(v View) View {
	v = Resolve(v, r.signedIn)
	if v != r.Active() {
		r.stack = append(r.stack, v)
	}
	return v
}

// Replace swaps the active view for v.
func (r *Router) Replace(v View) View {
	v = Resolve(v, r.signedIn)
	r.stack[len(r.stack)-1] = v
	return v
}

// Pop returns to the previous view. No-op at the bottom of the stack.
func (r *Router) Pop() View {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return r.Active()
}

// Active returns the top view on the stack.
func (r *Router) Active() View {
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of views on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// SignedIn reports the sign-in state the router resolves against.
func (r *Router) SignedIn() bool {
	return r.signedIn
}

// SetSignedIn changes the sign-in state. The history is discarded and the
// router lands on Home after signing in or Login after signing out.
func (r *Router) SetSignedIn(signedIn bool) View {
	if signedIn == r.signedIn {
		return r.Active()
	}
	r.signedIn = signedIn
	r.stack = []View{Resolve(Home, signedIn)}
	return r.Active()
}
