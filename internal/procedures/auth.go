package procedures

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/virendra-maker/urmaxx-clone/internal/metrics"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// AdminOpenIDPrefix prefixes the external identity recorded for a signed-in admin credential
const AdminOpenIDPrefix = "admin:"

// LoginInput is the input of admin.login
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminInfo names the admin who signed in
type AdminInfo struct {
	Username string `json:"username"`
}

// LoginResult is the output of admin.login
type LoginResult struct {
	Success bool      `json:"success"`
	Admin   AdminInfo `json:"admin"`
}

// Me implements auth.me: the caller's resolved identity, or nil
func (p *Procedures) Me(_ context.Context, caller Caller) *models.User {
	return caller.User
}

// Logout implements auth.logout. Clearing the session credential belongs to the transport.
func (p *Procedures) Logout(_ context.Context, _ Caller) *Success {
	return &Success{Success: true}
}

// Login implements admin.login. It only verifies the credential; the transport
// establishes the session.
func (p *Procedures) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}

	cred := p.store.GetAdminCredentialByUsername(ctx, in.Username)
	if cred == nil || !p.passwordMatches(cred.Password, in.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		p.log.Info().Str("username", in.Username).Msg("admin login rejected")
		return nil, types.NewError(types.ErrUnauthorized, "Invalid credentials")
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{Success: true, Admin: AdminInfo{Username: cred.Username}}, nil
}

// RecordSignIn creates or refreshes the user for an authenticated external identity
// and returns it as stored. The user is nil when the store is unavailable.
func (p *Procedures) RecordSignIn(ctx context.Context, u services.UserUpsert) (*models.User, error) {
	if err := p.store.UpsertUser(ctx, u); err != nil {
		return nil, err
	}
	return p.store.GetUserByExternalID(ctx, u.OpenID), nil
}

// ResolveUser returns the user for the identity of a session issued at issuedAt, or nil.
// An admin credential identity resolves only while the credential exists and has not
// been rotated since the session was issued.
func (p *Procedures) ResolveUser(ctx context.Context, openID string, issuedAt time.Time) *models.User {
	if openID == "" {
		return nil
	}
	if username, ok := strings.CutPrefix(openID, AdminOpenIDPrefix); ok {
		cred := p.store.GetAdminCredentialByUsername(ctx, username)
		// Session timestamps carry whole seconds
		if cred == nil || cred.UpdatedAt.Truncate(time.Second).After(issuedAt) {
			p.log.Info().Str("openId", openID).Msg("admin session no longer valid")
			return nil
		}
	}
	return p.store.GetUserByExternalID(ctx, openID)
}

// passwordMatches compares a supplied password with the stored value. Stored values
// that are not bcrypt hashes match only when plaintext passwords are allowed.
func (p *Procedures) passwordMatches(stored, supplied string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	if !p.allowPlaintext {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
