// Package session tracks the client's authentication state and decides
// which screen it should be on. The state starts unresolved; nothing is
// rendered until the identity gateway reports whether a user is present.
package session

import (
	"sync"

	"github.com/avolkov/studytrack/internal/domain"
)

// State is the gate's view of the current session.
type State int

const (
	// StateUnresolved means the gateway has not reported yet.
	StateUnresolved State = iota
	// StateSignedIn means a user is present.
	StateSignedIn
	// StateSignedOut means the gateway reported no user.
	StateSignedOut
)

// Route names the screen the client should show.
type Route string

const (
	RouteLoading   Route = "loading"
	RouteDashboard Route = "dashboard"
	RouteLogin     Route = "login"
)

// Gate holds the resolved session and routes accordingly. Set is called by
// the identity gateway's state pushes; readers may come from any goroutine.
type Gate struct {
	mu      sync.RWMutex
	state   State
	user    *domain.User
	changes chan struct{}
}

// NewGate creates a gate in the unresolved state.
func NewGate() *Gate {
	return &Gate{changes: make(chan struct{}, 1)}
}

// Set records the latest gateway report. A nil user resolves to signed out.
// Every call resolves the gate, including repeats of the same value.
func (g *Gate) Set(user *domain.User) {
	g.mu.Lock()
	if user == nil {
		g.state = StateSignedOut
		g.user = nil
	} else {
		u := *user
		g.state = StateSignedIn
		g.user = &u
	}
	g.mu.Unlock()

	select {
	case g.changes <- struct{}{}:
	default:
	}
}

// State returns the current session state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// User returns the signed-in user, or nil.
func (g *Gate) User() *domain.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// Route maps the session state onto a screen. Unresolved sessions always
// route to the loading screen, never to login.
func (g *Gate) Route() Route {
	switch g.State() {
	case StateSignedIn:
		return RouteDashboard
	case StateSignedOut:
		return RouteLogin
	default:
		return RouteLoading
	}
}

// Changes returns a channel that receives a value after state updates.
// Signals are coalesced; read State after draining.
func (g *Gate) Changes() <-chan struct{} {
	return g.changes
}
