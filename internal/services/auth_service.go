// auth_service.go
//
// An APK catalog and admin back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of urmaxx-clone.
// urmaxx-clone is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// urmaxx-clone is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with urmaxx-clone.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/authorizerdev/authorizer-go"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

// AuthorizerCookie is the session cookie set by the Authorizer identity provider
const AuthorizerCookie = "cookie_session"

// AuthorizerRetryInterval is how long a failed client initialization is answered
// from the last error before the Authorizer is tried again
const AuthorizerRetryInterval = 5 * time.Second

// Authorizer validates Authorizer cookie sessions into external identities.
// The client is created on the first request carrying an Authorizer cookie and
// creation is retried until it succeeds.
type Authorizer struct {
	url         string
	clientID    string
	redirectURL string

	mu      sync.Mutex
	client  *authorizer.AuthorizerClient
	lastErr error
	nextTry time.Time
	now     func() time.Time
}

// NewAuthorizer returns nil when Authorizer is not configured
func NewAuthorizer(cfg *config.Config) *Authorizer {
	if !cfg.AuthorizerEnabled() {
		return nil
	}
	return &Authorizer{
		url:         cfg.AuthzURL,
		clientID:    cfg.AuthzClientID,
		redirectURL: cfg.AuthzRedirectURL,
		now:         time.Now,
	}
}

// IsInitialized returns true if the Authorizer client is initialized
func (a *Authorizer) IsInitialized() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client != nil
}

// init returns the Authorizer client, creating it if needed
func (a *Authorizer) init(ctx context.Context) (*authorizer.AuthorizerClient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	if a.lastErr != nil && a.now().Before(a.nextTry) {
		return nil, a.lastErr
	}

	client, err := a.connect(ctx)
	if err != nil {
		a.lastErr = err
		a.nextTry = a.now().Add(AuthorizerRetryInterval)
		return nil, err
	}
	a.client, a.lastErr = client, nil
	return client, nil
}

func (a *Authorizer) connect(ctx context.Context) (*authorizer.AuthorizerClient, error) {
	// Ping the Authorizer service first
	if err := utils.PingAuthorizer(ctx, a.url); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log := logging.Component("authorizer")
	log.Info().
		Str("authorizerURL", a.url).
		Str("clientID", a.clientID).
		Str("redirectURL", a.redirectURL).
		Msg("initializing Authorizer")

	client, err := authorizer.NewAuthorizerClient(a.clientID, a.url, a.redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	return client, nil
}

// ValidateSession validates an Authorizer session cookie and returns the external user id
func (a *Authorizer) ValidateSession(ctx context.Context, cookie string) (string, error) {
	client, err := a.init(ctx)
	if err != nil {
		return "", err
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}

	if res == nil || !res.IsValid || res.User == nil {
		return "", fmt.Errorf("session is not valid")
	}

	return res.User.ID, nil
}
