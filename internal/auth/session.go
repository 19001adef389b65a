package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain/user"
	apperrors "storefront/pkg/errors"

	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated means no valid identity could be resolved. Missing,
	// malformed, expired and forged tokens all report it.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrIdentityUnavailable means the account store could not answer.
	ErrIdentityUnavailable = errors.New("identity unavailable")
)

// IdentityResolver resolves the identity carried by a request.
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Identity, error)
}

// AccountReader is the part of the user store the resolver needs.
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Resolver struct {
	tokens     *TokenService
	accounts   AccountReader
	cookieName string
	secure     bool
}

// NewResolver builds a Resolver. accounts may be nil, in which case the
// token's own claims are trusted until expiry.
func NewResolver(tokens *TokenService, accounts AccountReader, cookieName string, secure bool) *Resolver {
	return &Resolver{
		tokens:     tokens,
		accounts:   accounts,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Resolve never panics. Any failure to verify or decode the token is
// reported as ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (identity *Identity, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			identity = nil
			err = fmt.Errorf("%w: "+msgResolverPanic, ErrUnauthenticated, rec)
		}
	}()

	cookie, err := req.Cookie(r.cookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, msgNoSessionCookie)
	}
	if cookie.Value == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, msgEmptySessionCookie)
	}

	claims, err := r.tokens.Verify(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	identity, err = claims.Identity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if r.accounts == nil {
		return identity, nil
	}

	return r.refresh(ctx, identity)
}

// refresh re-reads the account so the stored role and email win over the
// copy in the token.
func (r *Resolver) refresh(ctx context.Context, identity *Identity) (*Identity, error) {
	account, err := r.accounts.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, msgAccountNotFound)
		}
		return nil, fmt.Errorf("%w: "+msgAccountLookupFailed, ErrIdentityUnavailable, err)
	}

	if !account.Role.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, msgAccountRoleUnknown)
	}

	return &Identity{ID: account.ID, Email: account.Email, Role: account.Role}, nil
}

// SessionCookie wraps a signed token in the session cookie.
func (r *Resolver) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     r.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedCookie expires the session cookie in the browser.
func (r *Resolver) ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     r.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
