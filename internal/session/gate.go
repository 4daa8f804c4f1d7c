// Package session maps identity assertions to principals and keeps per-browser
// session state (the signed in principal and the pre-login destination).
package session

import (
	"bitwise74/file-share/internal/model"
	"bitwise74/file-share/pkg/util"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
)

const idSize = 32

var ErrInvalidAssertion = errors.New("invalid identity assertion")

// Verifier checks an opaque identity assertion and returns the verified email
type Verifier interface {
	Verify(ctx context.Context, assertion string) (string, error)
}

type state struct {
	mu        sync.Mutex
	principal model.Principal
	intent    string
}

// Gate is safe for concurrent use. Sessions expire the configured ttl after
// they were created or rotated, no matter how often they are used, matching
// the lifetime of the session cookie.
type Gate struct {
	verifier Verifier
	store    *ttlcache.Cache

	// serializes creation of new session state
	mu sync.Mutex
}

func NewGate(v Verifier, ttl time.Duration) *Gate {
	store := ttlcache.NewCache()
	store.SetTTL(ttl)
	// Lookups stay side effect free and the server never outlives the cookie
	store.SkipTTLExtensionOnHit(true)

	return &Gate{
		verifier: v,
		store:    store,
	}
}

// NewID returns a fresh unguessable session id
func (g *Gate) NewID() (string, error) {
	return util.GenerateToken(idSize)
}

// Verify never establishes a session on its own
func (g *Gate) Verify(ctx context.Context, assertion string) (model.Principal, error) {
	email, err := g.verifier.Verify(ctx, assertion)
	if err != nil {
		zap.L().Debug("Identity assertion rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrInvalidAssertion, err)
	}

	return model.Principal(email), nil
}

func (g *Gate) lookup(id string) *state {
	v, err := g.store.Get(id)
	if err != nil {
		return nil
	}

	return v.(*state)
}

func (g *Gate) lookupOrCreate(id string) *state {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s := g.lookup(id); s != nil {
		return s
	}

	s := &state{}
	g.store.Set(id, s)
	return s
}

// Establish binds p to the session, replacing any previous principal. A
// captured intent survives so the user can be sent back after login.
func (g *Gate) Establish(id string, p model.Principal) {
	s := g.lookupOrCreate(id)

	s.mu.Lock()
	s.principal = p
	s.mu.Unlock()
}

func (g *Gate) Current(id string) (model.Principal, bool) {
	s := g.lookup(id)
	if s == nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.principal, s.principal != ""
}

// Rotate moves the state of a session to a fresh id and forgets the old one.
// Call it when privileges change so an id known before login is useless
// afterwards.
func (g *Gate) Rotate(id string) (string, error) {
	newID, err := g.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id, %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.lookup(id)
	if s == nil {
		s = &state{}
	}

	g.store.Remove(id)
	g.store.Set(newID, s)

	return newID, nil
}

// Clear drops every piece of state attached to the session
func (g *Gate) Clear(id string) {
	g.store.Remove(id)
}

func (g *Gate) CaptureIntent(id, path string) {
	s := g.lookupOrCreate(id)

	s.mu.Lock()
	s.intent = path
	s.mu.Unlock()
}

// ConsumeIntent returns the captured path at most once
func (g *Gate) ConsumeIntent(id string) (string, bool) {
	s := g.lookup(id)
	if s == nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.intent
	s.intent = ""

	return path, path != ""
}

func (g *Gate) Close() error {
	return g.store.Close()
}
