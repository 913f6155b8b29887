// Package auth holds the client's view of who is logged in. Components that care
// about login changes subscribe to a Provider instead of listening for global events.
package auth

import (
	"sync"

	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

// Identity is the logged-in user. The zero value is an anonymous visitor.
type Identity struct {
	UserID   int64
	Nickname string
}

func (i Identity) Authenticated() bool {
	return i.Nickname != ""
}

// Listener is called synchronously, outside the provider lock, after every change.
type Listener func(Identity)

// Provider owns the current identity and notifies subscribers when it changes.
type Provider struct {
	mu        sync.Mutex
	current   Identity
	listeners map[int]Listener
	nextID    int
}

func NewProvider() *Provider {
	return &Provider{listeners: make(map[int]Listener)}
}

func (p *Provider) Current() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Set replaces the identity and notifies listeners.
func (p *Provider) Set(id Identity) {
	p.mu.Lock()
	p.current = id
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(id)
	}
}

// SetToken decodes the identity from an access token. An unreadable token logs the
// user out.
func (p *Provider) SetToken(accessToken string) error {
	claims, err := utils.GetClaimsFromToken(accessToken)
	if err != nil {
		p.Clear()
		return err
	}
	p.Set(Identity{UserID: claims.UserID, Nickname: claims.Nickname})
	return nil
}

// Clear logs out.
func (p *Provider) Clear() {
	p.Set(Identity{})
}

// Subscribe registers l and returns a function that removes it.
func (p *Provider) Subscribe(l Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}
