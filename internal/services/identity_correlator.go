package services

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIdentityConflict is returned when a local id is resolved twice with
// different server ids. That only happens through a programming error.
var ErrIdentityConflict = errors.New("local id already resolved to a different server id")

// IdentityCorrelator maps client-generated system ids to server-assigned ids.
// Systems are declared before any server id exists, so later steps address
// them by local id; Resolve binds the server id once the create call returns.
type IdentityCorrelator struct {
	mu       sync.Mutex
	resolved map[string]*int64
}

func NewIdentityCorrelator() *IdentityCorrelator {
	return &IdentityCorrelator{resolved: make(map[string]*int64)}
}

// Register records a newly declared local id with no server binding yet.
// Registering an already known id is a no-op.
func (c *IdentityCorrelator) Register(localID string) {
	if localID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.resolved[localID]; !ok {
		c.resolved[localID] = nil
	}
}

// Unregister drops a local id, e.g. when the user removes a declared system
// before completion.
func (c *IdentityCorrelator) Unregister(localID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.resolved, localID)
}

// Reset drops every registration, e.g. on wizard restart.
func (c *IdentityCorrelator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = make(map[string]*int64)
}

// Resolve binds the server id for a local id. Idempotent when called again
// with the same server id; a different server id is an ErrIdentityConflict.
func (c *IdentityCorrelator) Resolve(localID string, serverID int64) error {
	if localID == "" {
		return fmt.Errorf("local id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.resolved[localID]; ok && existing != nil {
		if *existing == serverID {
			return nil
		}
		return fmt.Errorf("%w: %s has %d, got %d", ErrIdentityConflict, localID, *existing, serverID)
	}
	id := serverID
	c.resolved[localID] = &id
	return nil
}

// ServerIDFor returns the bound server id, or ok=false while the create call
// has not succeeded (or the id was never registered).
func (c *IdentityCorrelator) ServerIDFor(localID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.resolved[localID]
	if !ok || id == nil {
		return 0, false
	}
	return *id, true
}
