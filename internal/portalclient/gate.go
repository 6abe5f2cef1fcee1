package portalclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/spec-kit/crm-service/internal/api/dto"
)

const probePath = "/api/portal/tasks"

// Gate maintains the logged-in state of a portal contact across restarts.
// On startup it revalidates any cached session against the backend with an
// authenticated probe; any failure clears the cache and leaves the gate
// logged out. A stale probe can never resurrect a session that a later
// Login or Logout replaced.
type Gate struct {
	store   SessionStore
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	epoch   uint64
	contact *dto.ContactProfile
	token   string
}

// NewGate builds a gate talking to the backend at baseURL. A nil client
// falls back to a default with a short timeout.
func NewGate(store SessionStore, baseURL string, client *http.Client) *Gate {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gate{store: store, baseURL: baseURL, client: client}
}

// Init restores a cached session if the backend still accepts its token.
// Every failure path, including a corrupt cache, degrades silently to the
// logged-out state; Init only returns an error for store write failures.
func (g *Gate) Init(ctx context.Context) error {
	g.mu.Lock()
	startEpoch := g.epoch
	g.mu.Unlock()

	session, ok, err := g.store.Load()
	if err != nil || !ok {
		g.mu.Lock()
		moved := g.epoch != startEpoch
		g.mu.Unlock()
		if moved {
			// a login or logout won the race; leave its session alone
			return nil
		}
		return g.store.Clear()
	}

	probeOK := g.probe(ctx, session.Token)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != startEpoch {
		// a login or logout won the race; the probe result is stale
		return nil
	}

	if !probeOK {
		g.contact = nil
		g.token = ""
		return g.store.Clear()
	}

	contact := session.Contact
	g.contact = &contact
	g.token = session.Token
	return nil
}

// Login persists the session pair and sets the active principal.
func (g *Gate) Login(token string, contact dto.ContactProfile) error {
	g.mu.Lock()
	g.epoch++
	g.contact = &contact
	g.token = token
	g.mu.Unlock()

	return g.store.Save(Session{Token: token, Contact: contact})
}

// Logout clears the persisted session and the active principal.
func (g *Gate) Logout() error {
	g.mu.Lock()
	g.epoch++
	g.contact = nil
	g.token = ""
	g.mu.Unlock()

	return g.store.Clear()
}

// IsAuthenticated is derived purely from the presence of an active contact.
func (g *Gate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.contact != nil
}

// Contact returns the active principal, if any.
func (g *Gate) Contact() (dto.ContactProfile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.contact == nil {
		return dto.ContactProfile{}, false
	}
	return *g.contact, true
}

// Token returns the active bearer token, if any.
func (g *Gate) Token() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.contact == nil {
		return "", false
	}
	return g.token, true
}

func (g *Gate) probe(ctx context.Context, token string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+probePath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
