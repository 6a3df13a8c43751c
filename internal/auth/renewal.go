package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/credential"
	"github.com/saulo-duarte/quizclient/internal/metrics"
)

var errSuperseded = errors.New("identity changed during renewal")

// renew exchanges stale's refresh credential for a new access credential. Concurrent
// callers holding the same refresh credential share one request and one result.
func (m *Manager) renew(ctx context.Context, epoch uint64, stale *oauth2.Token) (*oauth2.Token, error) {
	m.mu.Lock()
	current := m.token
	if m.epoch == epoch && current != nil && current.RefreshToken == stale.RefreshToken &&
		current.AccessToken != stale.AccessToken {
		m.mu.Unlock()
		return current, nil
	}
	m.mu.Unlock()

	v, err, shared := m.renewals.Do(stale.RefreshToken, func() (any, error) {
		// The renewal outlives any one caller's cancellation since others may be waiting on it.
		return m.exchange(context.WithoutCancel(ctx), epoch, stale)
	})
	if shared {
		config.WithContext(ctx).Debug("joined in-flight credential renewal")
	}
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}

func (m *Manager) exchange(ctx context.Context, epoch uint64, stale *oauth2.Token) (*oauth2.Token, error) {
	log := config.WithContext(ctx).WithField("refresh", config.Fingerprint(stale.RefreshToken))

	resp, err := m.client.RefreshToken(ctx, stale.RefreshToken)
	if err != nil {
		outcome := "failed"
		if errors.Is(err, api.ErrAuthExpired) {
			outcome = "rejected"
		}
		metrics.CredentialRenewals.WithLabelValues(outcome).Inc()
		log.WithError(err).Warn("credential renewal failed, logging out")
		m.invalidate(ctx, epoch)
		return nil, fmt.Errorf("%w: renew credential: %w", ErrAuthInvalid, err)
	}

	refresh := resp.Refresh
	if refresh == "" {
		refresh = stale.RefreshToken
	}
	fresh := credential.NewToken(resp.Access, refresh)

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		metrics.CredentialRenewals.WithLabelValues("superseded").Inc()
		log.Info("discarding renewal that finished after logout")
		return nil, fmt.Errorf("%w: %w", ErrAuthInvalid, errSuperseded)
	}
	if err := m.store.Save(ctx, fresh); err != nil {
		m.mu.Unlock()
		metrics.CredentialRenewals.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Failed to store renewed credentials")
		m.invalidate(ctx, epoch)
		return nil, fmt.Errorf("%w: store renewed credential: %w", ErrAuthInvalid, err)
	}
	m.token = fresh
	m.mu.Unlock()

	metrics.CredentialRenewals.WithLabelValues("success").Inc()
	log.Debug("access credential renewed")
	return fresh, nil
}

// replay re-sends req with the credential produced by the renewal it followed.
func (m *Manager) replay(ctx context.Context, req api.Request, fresh *oauth2.Token, epoch uint64, out any) error {
	metrics.RequestReplays.Inc()
	config.WithContext(ctx).WithField("path", req.Path).WithField("attempt", req.Attempt()).Debug("replaying request")
	return m.send(ctx, req, fresh, epoch, out)
}
