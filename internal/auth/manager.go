// Package auth maintains the authenticated user's session: the raw bearer
// token and the identity claims derived from it.
package auth

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"postline/internal/observability"
	"postline/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

// Well-known claim keys carrying the session identity.
const (
	ClaimUID  = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimName = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	ClaimRole = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// Storage keys for the persisted credential and its derived fields.
const (
	keyToken = "authToken"
	keyUID   = "uid"
	keyName  = "userName"
	keyRole  = "userRole"
)

// Manager is the single writer of session state. It persists the raw token,
// extracts identity claims from it, and owns logout. Identity getters return
// empty values when nothing is cached. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    storage.Store
	log      *observability.Logger
	navigate func()
}

// NewManager returns a Manager over the given credential store. The navigate
// callback is invoked on logout to route the application back to its
// unauthenticated entry point; nil is allowed.
func NewManager(store storage.Store, log *observability.Logger, navigate func()) *Manager {
	return &Manager{store: store, log: log, navigate: navigate}
}

// SetCredential persists the raw token and attempts claim extraction. On
// extraction failure the raw token remains stored but no identity field is
// updated; the failure is logged, never raised to the caller. A token with a
// scheme prefix ("Bearer <value>") has the scheme stripped before decoding.
func (m *Manager) SetCredential(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(keyToken, token); err != nil {
		m.log.Error("failed to persist token", slog.String("error", err.Error()))
		return
	}

	raw := token
	if i := strings.Index(raw, " "); i >= 0 {
		raw = raw[i+1:]
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		m.log.Error("invalid token, identity left unchanged", slog.String("error", err.Error()))
		return
	}

	m.setClaim(keyUID, claims, ClaimUID)
	m.setClaim(keyName, claims, ClaimName)
	m.setClaim(keyRole, claims, ClaimRole)
}

// setClaim stores the string value of the given claim key. A missing or
// non-string claim is "no identity", not an error: the field stays as is.
func (m *Manager) setClaim(storageKey string, claims jwt.MapClaims, claimKey string) {
	value, ok := claims[claimKey].(string)
	if !ok || value == "" {
		return
	}
	if err := m.store.Set(storageKey, value); err != nil {
		m.log.Error("failed to persist identity field",
			slog.String("key", storageKey), slog.String("error", err.Error()))
	}
}

func (m *Manager) get(key string) string {
	v, err := m.store.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.Error("credential store read failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		return ""
	}
	return v
}

// Token returns the stored raw token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(keyToken)
}

// UID returns the cached subject identifier, or "" if never set.
func (m *Manager) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(keyUID)
}

// UserID returns the subject identifier parsed as a numeric user ID.
// Returns 0 when no identity is cached or the identifier is not numeric.
func (m *Manager) UserID() uint {
	id, err := strconv.ParseUint(m.UID(), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// DisplayName returns the cached display name, or "" if never set.
func (m *Manager) DisplayName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(keyName)
}

// Role returns the cached role, or "" if never set.
func (m *Manager) Role() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(keyRole)
}

// Clear removes the raw token and all derived identity fields. Token and
// identity are removed under one lock so no caller observes one without the
// other.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(keyName)
	m.remove(keyRole)
	m.remove(keyUID)
	m.remove(keyToken)
}

func (m *Manager) remove(key string) {
	if err := m.store.Remove(key); err != nil {
		m.log.Error("credential store remove failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Logout clears the session and triggers navigation to the unauthenticated
// entry point. Logging out an already logged-out session only re-triggers
// the navigation.
func (m *Manager) Logout() {
	m.Clear()
	if m.navigate != nil {
		m.navigate()
	}
}
