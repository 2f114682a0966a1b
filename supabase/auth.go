package supabase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clementus360/mindset/types"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	gotypes "github.com/supabase-community/gotrue-go/types"
)

var (
	// ErrSessionRevoked means the server no longer accepts the cached session.
	ErrSessionRevoked = errors.New("session revoked or expired")

	// ErrConfirmationRequired means sign-up succeeded but the email must be confirmed
	// before a session is issued.
	ErrConfirmationRequired = errors.New("email confirmation required")

	ErrNotSignedIn = errors.New("not signed in")
)

// Auth manages the signed-in session on top of the GoTrue client.
type Auth struct {
	client gotrue.Client
	now    func() time.Time

	mu      sync.RWMutex
	session *types.AuthSession
}

// NewAuth wraps a GoTrue client, usually supabase.Client.Auth.
func NewAuth(client gotrue.Client) *Auth {
	return &Auth{client: client, now: time.Now}
}

// SignUp registers a new account. When the project auto-confirms emails the new session
// is returned and becomes current.
func (a *Auth) SignUp(ctx context.Context, creds types.Credentials) (types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return types.AuthSession{}, err
	}
	req := gotypes.SignupRequest{Email: creds.Email, Password: creds.Password}
	if creds.FullName != "" {
		req.Data = map[string]interface{}{"full_name": creds.FullName}
	}

	resp, err := a.client.Signup(req)
	if err != nil {
		return types.AuthSession{}, fmt.Errorf("sign up failed: %w", err)
	}
	if resp.AccessToken == "" {
		return types.AuthSession{}, ErrConfirmationRequired
	}

	s, err := a.sessionFrom(resp.Session)
	if err != nil {
		return types.AuthSession{}, err
	}
	a.setSession(&s)
	return s, nil
}

// SignIn exchanges email and password for a session and makes it current.
func (a *Auth) SignIn(ctx context.Context, creds types.Credentials) (types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return types.AuthSession{}, err
	}
	resp, err := a.client.SignInWithEmailPassword(creds.Email, creds.Password)
	if err != nil {
		return types.AuthSession{}, fmt.Errorf("sign in failed: %w", err)
	}

	s, err := a.sessionFrom(resp.Session)
	if err != nil {
		return types.AuthSession{}, err
	}
	a.setSession(&s)
	return s, nil
}

// Validate checks a cached session against the server. A locally cached token is never
// trusted on its own: revoked, banned or deleted accounts are rejected here. Expired
// tokens are refreshed once.
func (a *Auth) Validate(ctx context.Context, cached types.AuthSession) (types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return types.AuthSession{}, err
	}
	if cached.AccessToken == "" {
		return types.AuthSession{}, ErrNotSignedIn
	}

	current := cached
	if current.Expired(a.now()) {
		refreshed, err := a.refresh(current.RefreshToken)
		if err != nil {
			a.setSession(nil)
			return types.AuthSession{}, fmt.Errorf("%w: %v", ErrSessionRevoked, err)
		}
		current = refreshed
	}

	user, err := a.client.WithToken(current.AccessToken).GetUser()
	if err != nil && classifyCause(err) == ClassTransient {
		// Unreachable server: keep the session and let the caller retry later.
		a.setSession(&current)
		return current, fmt.Errorf("could not reach auth server: %w", err)
	}
	if err != nil {
		a.setSession(nil)
		return types.AuthSession{}, fmt.Errorf("%w: %v", ErrSessionRevoked, err)
	}
	if user.BannedUntil != nil && user.BannedUntil.After(a.now()) {
		a.setSession(nil)
		return types.AuthSession{}, fmt.Errorf("%w: account banned until %s", ErrSessionRevoked, user.BannedUntil.Format(time.RFC3339))
	}
	if user.ID != uuid.Nil {
		current.UserID = user.ID.String()
	}
	if user.Email != "" {
		current.Email = user.Email
	}

	a.setSession(&current)
	return current, nil
}

// Refresh exchanges the current refresh token for a new session. A refresh the server
// refuses is reported as ErrSessionRevoked; an unreachable server keeps the old session.
func (a *Auth) Refresh(ctx context.Context) (types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return types.AuthSession{}, err
	}
	s, ok := a.Session()
	if !ok {
		return types.AuthSession{}, ErrNotSignedIn
	}
	refreshed, err := a.refresh(s.RefreshToken)
	if err != nil && classifyCause(err) == ClassTransient {
		return types.AuthSession{}, fmt.Errorf("could not reach auth server: %w", err)
	}
	if err != nil {
		return types.AuthSession{}, fmt.Errorf("%w: %v", ErrSessionRevoked, err)
	}
	a.setSession(&refreshed)
	return refreshed, nil
}

func (a *Auth) refresh(refreshToken string) (types.AuthSession, error) {
	if refreshToken == "" {
		return types.AuthSession{}, fmt.Errorf("no refresh token")
	}
	resp, err := a.client.RefreshToken(refreshToken)
	if err != nil {
		return types.AuthSession{}, fmt.Errorf("token refresh failed: %w", err)
	}
	return a.sessionFrom(resp.Session)
}

// SignOut revokes the session server side when possible and always clears it locally.
func (a *Auth) SignOut(ctx context.Context) error {
	s, ok := a.Session()
	a.setSession(nil)
	if !ok || ctx.Err() != nil {
		return nil
	}
	if err := a.client.WithToken(s.AccessToken).Logout(); err != nil {
		return fmt.Errorf("server sign out failed: %w", err)
	}
	return nil
}

// ResetPassword sends the password-reset email. The link redirects to the site URL
// configured on the Supabase project.
func (a *Auth) ResetPassword(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if err := a.client.Recover(gotypes.RecoverRequest{Email: email}); err != nil {
		return fmt.Errorf("password reset failed: %w", err)
	}
	return nil
}

// Session returns the current session, if any.
func (a *Auth) Session() (types.AuthSession, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return types.AuthSession{}, false
	}
	return *a.session, true
}

// CurrentUserID returns the signed-in user's id or "".
func (a *Auth) CurrentUserID() string {
	s, ok := a.Session()
	if !ok {
		return ""
	}
	return s.UserID
}

func (a *Auth) setSession(s *types.AuthSession) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *Auth) sessionFrom(s gotypes.Session) (types.AuthSession, error) {
	if s.AccessToken == "" {
		return types.AuthSession{}, fmt.Errorf("server returned no access token")
	}

	out := types.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Email:        s.User.Email,
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	if s.User.ID != uuid.Nil {
		out.UserID = s.User.ID.String()
		return out, nil
	}
	sub, err := UserIDFromToken(s.AccessToken)
	if err != nil {
		return types.AuthSession{}, fmt.Errorf("failed to read user id: %w", err)
	}
	out.UserID = sub
	return out, nil
}
