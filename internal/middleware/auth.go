package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/session"
)

const callerKey = "caller"

// LoginMethodAuthorizer labels users signed in through Authorizer
const LoginMethodAuthorizer = "authorizer"

// Users resolves and records callers. *procedures.Procedures implements it.
type Users interface {
	ResolveUser(ctx context.Context, openID string, issuedAt time.Time) *models.User
	RecordSignIn(ctx context.Context, u services.UserUpsert) (*models.User, error)
}

// SessionValidator validates an identity provider session cookie into an external user id.
// *services.Authorizer implements it.
type SessionValidator interface {
	ValidateSession(ctx context.Context, cookie string) (string, error)
}

// IdentityConfig wires the Identity middleware
type IdentityConfig struct {
	Sessions   *session.Manager
	CookieName string
	Users      Users
	// Authorizer is optional
	Authorizer SessionValidator
}

// Identity resolves the caller of every request. The signed session cookie wins; otherwise
// a valid Authorizer session records a sign-in and resolves that user. Any failure leaves
// the caller anonymous. Authorization is decided by the procedures.
func Identity(cfg IdentityConfig) fiber.Handler {
	log := logging.Component("identity")

	return func(c *fiber.Ctx) error {
		var user *models.User

		if token := c.Cookies(cfg.CookieName); token != "" && cfg.Sessions.Enabled() {
			claims, err := cfg.Sessions.Parse(token)
			if err != nil {
				log.Debug().Err(err).Msg("ignoring session cookie")
			} else {
				var issuedAt time.Time
				if claims.IssuedAt != nil {
					issuedAt = claims.IssuedAt.Time
				}
				user = cfg.Users.ResolveUser(c.UserContext(), claims.OpenID, issuedAt)
			}
		}

		if user == nil && cfg.Authorizer != nil {
			if cookie := c.Cookies(services.AuthorizerCookie); cookie != "" {
				user = authorizerUser(c, cfg, cookie)
			}
		}

		if user != nil {
			c.Locals(callerKey, user)
		}
		return c.Next()
	}
}

func authorizerUser(c *fiber.Ctx, cfg IdentityConfig, cookie string) *models.User {
	log := logging.Component("identity")

	openID, err := cfg.Authorizer.ValidateSession(c.UserContext(), cookie)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring Authorizer session")
		return nil
	}

	method := LoginMethodAuthorizer
	user, err := cfg.Users.RecordSignIn(c.UserContext(), services.UserUpsert{
		OpenID:      openID,
		LoginMethod: &method,
	})
	if err != nil {
		log.Warn().Err(err).Str("openId", openID).Msg("failed to record Authorizer sign-in")
		return nil
	}
	return user
}

// CallerFrom returns the caller resolved by Identity
func CallerFrom(c *fiber.Ctx) procedures.Caller {
	user, _ := c.Locals(callerKey).(*models.User)
	return procedures.Caller{User: user}
}
