// Package refresh implements the check-then-refresh coordinator: threshold
// policy, cross-process locking, and in-process de-duplication around a
// credential store and an OAuth refresh grant.
package refresh

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pepicrft/schlussel/internal/credstore"
	"github.com/pepicrft/schlussel/internal/lockfile"
	"github.com/pepicrft/schlussel/internal/logging"
	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/oauthflow"
	"github.com/pepicrft/schlussel/internal/token"
)

// RefreshGrant performs the OAuth refresh_token exchange. Implemented by
// oauthflow.RefreshToken in production and faked in tests.
type RefreshGrant func(ctx context.Context, tokenEndpoint, clientID, clientSecret, refreshToken string) (*token.Token, error)

// Coordinator resolves a valid Token for a storage key, refreshing it
// in-band when it is expired or within its refresh threshold.
type Coordinator struct {
	store    credstore.Store
	lockDir  string
	grant    RefreshGrant
	inFlight singleflight.Group
}

// NewCoordinator builds a Coordinator over store, using lockDir as the
// cross-process lock directory (spec's {lock_dir}/{app}/locks) and
// oauthflow.RefreshToken as the refresh grant.
func NewCoordinator(store credstore.Store, lockDir string) *Coordinator {
	return &Coordinator{store: store, lockDir: lockDir, grant: oauthflow.RefreshToken}
}

// NeedsRefresh reports whether t should be refreshed under threshold theta:
// unconditionally if t is expired, or if its remaining fraction is at or
// below theta. theta == 0 means refresh only on expiry.
func NeedsRefresh(t *token.Token, theta float64, now time.Time) bool {
	if t.IsExpired(now) {
		return true
	}
	if theta <= 0 {
		return false
	}
	fraction, ok := t.RemainingFraction(now)
	if !ok {
		return false
	}
	return fraction <= theta
}

// TokenEndpoint describes what GetValidToken needs to execute a refresh.
type TokenEndpoint struct {
	URL          string
	ClientID     string
	ClientSecret string
}

// GetValidToken implements the check-then-refresh protocol for key: load,
// check the threshold, and if needed, collapse concurrent in-process callers
// via singleflight before acquiring the cross-process lock, re-checking
// under it, refreshing, merging, and saving.
func (c *Coordinator) GetValidToken(ctx context.Context, key string, theta float64, endpoint TokenEndpoint) (*token.Token, error) {
	result, err, _ := c.inFlight.Do(key, func() (any, error) {
		return c.getValidTokenLocked(ctx, key, theta, endpoint)
	})
	if err != nil {
		return nil, err
	}
	return result.(*token.Token), nil
}

func (c *Coordinator) getValidTokenLocked(ctx context.Context, key string, theta float64, endpoint TokenEndpoint) (*token.Token, error) {
	now := time.Now()

	current, err := c.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !NeedsRefresh(current, theta, now) {
		return current, nil
	}
	if current.RefreshToken == "" {
		return nil, oautherr.New(oautherr.KindNoRefreshToken, "token has no refresh_token and cannot be refreshed")
	}

	lockPath := filepath.Join(c.lockDir, credstore.LockKey(key)+".lock")
	lock := lockfile.NewTrackedLock(lockPath)
	if err := lock.Lock(); err != nil {
		return nil, oautherr.Wrap(oautherr.KindLock, "acquire refresh lock", err)
	}
	defer lockfile.ReleaseTrackedLock(lockPath, lock)

	now = time.Now()
	reloaded, err := c.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !NeedsRefresh(reloaded, theta, now) {
		logging.Debugw("refresh: token already refreshed by another process", "key", key)
		return reloaded, nil
	}

	refreshed, err := c.grant(ctx, endpoint.URL, endpoint.ClientID, endpoint.ClientSecret, reloaded.RefreshToken)
	if err != nil {
		return nil, err
	}

	merged := token.Merge(refreshed, reloaded)
	if err := c.store.Save(ctx, key, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
