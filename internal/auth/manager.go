// Package auth owns the process-wide identity and keeps the bearer credential fresh
// for every authenticated backend call.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/credential"
)

var (
	// ErrAuthInvalid is terminal: the session has been logged out.
	ErrAuthInvalid        = errors.New("session is no longer valid")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Manager implements api.Doer. Subscribers are called synchronously after each
// transition and must not call Login, Logout or Restore from inside the callback.
type Manager struct {
	client *api.Client
	store  credential.Store

	renewals singleflight.Group

	mu    sync.Mutex
	state State
	token *oauth2.Token
	// epoch advances whenever the identity is discarded, so work started under an
	// older identity can detect it and drop its result.
	epoch uint64

	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

func NewManager(client *api.Client, store credential.Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
		subs:   make(map[int]func(State)),
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Phase: m.state.Phase, Session: m.state.Session.clone()}
}

func (m *Manager) CurrentUser() (*Session, bool) {
	st := m.State()
	return st.Session, st.Phase == Authenticated
}

// Subscribe registers fn for every later state transition.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.notifyMu.Lock()
		defer m.notifyMu.Unlock()
		delete(m.subs, id)
	}
}

// Login discards any previous identity before contacting the server. On failure the
// manager ends Anonymous with nothing stored.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	log := config.WithContext(ctx).WithField("username", username)

	epoch := m.discard(ctx, Loading)

	pair, err := m.client.ObtainToken(ctx, username, password)
	if err != nil {
		m.invalidate(ctx, epoch)
		if errors.Is(err, api.ErrAuthExpired) {
			log.Info("login rejected")
			return nil, ErrInvalidCredentials
		}
		log.WithError(err).Error("Failed to obtain credentials")
		return nil, fmt.Errorf("obtain credentials: %w", err)
	}

	token := credential.NewToken(pair.Access, pair.Refresh)
	profile, err := m.client.Profile(ctx, token.AccessToken)
	if err != nil {
		m.invalidate(ctx, epoch)
		log.WithError(err).Error("Failed to fetch profile after login")
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	session := newSession(profile)
	if err := m.establish(ctx, epoch, token, session, true); err != nil {
		return nil, err
	}

	log.WithField("role", session.Role).Info("logged in")
	return session.clone(), nil
}

// Logout never fails; a store error is logged and the in-memory identity is still dropped.
func (m *Manager) Logout(ctx context.Context) {
	m.discard(ctx, Anonymous)
	config.WithContext(ctx).Info("logged out")
}

// Restore resolves the startup phase from stored credentials. Missing credentials end
// Anonymous with a nil error. Callers should wait for it before rendering protected content.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	log := config.WithContext(ctx)

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.token = nil
	st := m.setStateLocked(State{Phase: Loading})
	m.mu.Unlock()
	m.notify(st)

	token, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			log.WithError(err).Warn("Failed to read stored credentials")
		}
		m.invalidate(ctx, epoch)
		if errors.Is(err, credential.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	m.mu.Lock()
	if m.epoch == epoch {
		m.token = token
	}
	m.mu.Unlock()

	profile, err := m.client.Profile(ctx, token.AccessToken)
	if errors.Is(err, api.ErrAuthExpired) && token.RefreshToken != "" {
		log.Debug("stored access credential rejected, renewing")
		var fresh *oauth2.Token
		fresh, err = m.renew(ctx, epoch, token)
		if err == nil {
			profile, err = m.client.Profile(ctx, fresh.AccessToken)
			token = fresh
		}
	}
	if err != nil {
		m.invalidate(ctx, epoch)
		log.WithError(err).Warn("Failed to restore session")
		return nil, fmt.Errorf("restore session: %w", err)
	}

	session := newSession(profile)
	if err := m.establish(ctx, epoch, token, session, false); err != nil {
		return nil, err
	}
	log.WithField("username", session.Username).Info("session restored")
	return session.clone(), nil
}

// Register creates a student account. It does not log in.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	err := m.client.RegisterStudent(ctx, api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("username", username).Error("Failed to register student")
		return fmt.Errorf("register %s: %w", username, err)
	}
	return nil
}

// Do sends req with the current access credential. An expired credential is renewed
// once and the request replayed once with exactly the renewed credential; a second
// rejection is terminal.
func (m *Manager) Do(ctx context.Context, req api.Request, out any) error {
	m.mu.Lock()
	token, epoch := m.token, m.epoch
	m.mu.Unlock()

	return m.send(ctx, req, token, epoch, out)
}

func (m *Manager) send(ctx context.Context, req api.Request, token *oauth2.Token, epoch uint64, out any) error {
	bearer := ""
	if token != nil {
		bearer = token.AccessToken
	}

	err := m.client.Send(ctx, req, bearer, out)
	if !errors.Is(err, api.ErrAuthExpired) {
		return err
	}

	if req.Attempt() > 0 || token == nil || token.RefreshToken == "" {
		config.WithContext(ctx).WithField("path", req.Path).WithField("attempt", req.Attempt()).
			Warn("credential rejected with no renewal left")
		m.invalidate(ctx, epoch)
		return fmt.Errorf("%w: %w", ErrAuthInvalid, err)
	}

	fresh, err := m.renew(ctx, epoch, token)
	if err != nil {
		return err
	}
	return m.replay(ctx, req.Retried(), fresh, epoch, out)
}

// discard drops the identity and the stored pair, entering phase. It returns the new epoch.
func (m *Manager) discard(ctx context.Context, phase Phase) uint64 {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.token = nil
	if err := m.store.Clear(ctx); err != nil {
		config.WithContext(ctx).WithError(err).Warn("Failed to clear stored credentials")
	}
	st := m.setStateLocked(State{Phase: phase})
	m.mu.Unlock()

	m.notify(st)
	return epoch
}

// invalidate is discard for work started under epoch; it is a no-op if the identity
// has already moved on.
func (m *Manager) invalidate(ctx context.Context, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.discard(ctx, Anonymous)
}

func (m *Manager) establish(ctx context.Context, epoch uint64, token *oauth2.Token, session *Session, persist bool) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return fmt.Errorf("%w: identity changed while signing in", ErrAuthInvalid)
	}
	if persist {
		if err := m.store.Save(ctx, token); err != nil {
			m.mu.Unlock()
			config.WithContext(ctx).WithError(err).Error("Failed to store credentials")
			m.invalidate(ctx, epoch)
			return fmt.Errorf("store credentials: %w", err)
		}
	}
	m.token = token
	st := m.setStateLocked(State{Phase: Authenticated, Session: session})
	m.mu.Unlock()

	m.notify(st)
	return nil
}

func (m *Manager) setStateLocked(st State) State {
	m.state = st
	return State{Phase: st.Phase, Session: st.Session.clone()}
}

func (m *Manager) notify(st State) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for _, fn := range m.subs {
		fn(st)
	}
}
