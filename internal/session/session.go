// Package session is the signed-in operator's context: the access token in
// storage and the user it belongs to. It is passed explicitly to whatever
// needs the current user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/auth"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	SignInMessage      = "Login efectuado com sucesso!"
	SignInErrorMessage = "Email ou Palavra-passe inválidos"
	SignUpMessage      = "Conta criada com sucesso!"
	SignUpErrorMessage = "Ocorreu um erro ao criar a conta!"
)

// ErrSignedOut is returned by Hydrate when no token is stored.
var ErrSignedOut = pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")

type authenticator interface {
	SignIn(ctx context.Context, in pharmacyapi.SignInInput) (*pharmacyapi.User, error)
	SignUp(ctx context.Context, in pharmacyapi.SignUpInput) (*pharmacyapi.User, error)
	Me(ctx context.Context) (*pharmacyapi.User, error)
}

// Session holds the current user. A nil user means signed out.
type Session struct {
	auth     authenticator
	store    TokenStore
	notifier notify.Notifier
	logg     *logger.Logger
	now      func() time.Time

	mu       sync.RWMutex
	user     *pharmacyapi.User
	teardown []func(ctx context.Context) error
}

type Option func(*Session)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *Session) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func New(authn authenticator, store TokenStore, opts ...Option) (*Session, error) {
	if authn == nil {
		return nil, fmt.Errorf("authenticator required")
	}
	if store == nil {
		return nil, fmt.Errorf("token store required")
	}
	s := &Session{
		auth:     authn,
		store:    store,
		notifier: notify.Discard,
		logg:     logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// User returns the signed-in user or nil.
func (s *Session) User() *pharmacyapi.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) LoggedIn() bool {
	return s.User() != nil
}

// OnLogout registers fn to run during Logout, e.g. to drop the cart.
func (s *Session) OnLogout(fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.teardown = append(s.teardown, fn)
	s.mu.Unlock()
}

// Hydrate restores the user from the stored token via GET /me. A token that
// is expired or rejected by the API signs the session out; any other failure
// keeps the token so a later Hydrate can retry.
func (s *Session) Hydrate(ctx context.Context) (*pharmacyapi.User, error) {
	token, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil, ErrSignedOut
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load access token")
	}

	if claims, err := auth.InspectAccessToken(token); err == nil && claims.Expired(s.now()) {
		s.logg.Info(ctx, "session.token_expired")
		return nil, multierr.Append(
			pkgerrors.New(pkgerrors.CodeUnauthorized, "access token expired"),
			s.Logout(ctx),
		)
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("session.hydrate_failed: %v", err))
		if rejected(err) {
			return nil, multierr.Append(err, s.Logout(ctx))
		}
		s.setUser(nil)
		return nil, err
	}
	s.setUser(user)
	s.logg.Info(s.logg.WithUserID(ctx, user.PKUser), "session.hydrated")
	return user, nil
}

func rejected(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || pkgerrors.IsCode(err, pkgerrors.CodeForbidden)
}

// SignIn authenticates with email and password and stores the token.
func (s *Session) SignIn(ctx context.Context, form forms.SignIn) (*pharmacyapi.User, error) {
	if errs := forms.Validate(form); errs != nil {
		msg, _ := errs.First("email", "password")
		s.notifier.Notify(ctx, notify.Error(msg))
		return nil, errs.Err()
	}
	user, err := s.auth.SignIn(ctx, form.Input())
	if err != nil {
		s.notifier.Notify(ctx, notify.Error(pkgerrors.APIMessage(err, SignInErrorMessage)))
		return nil, err
	}
	return s.establish(ctx, user, SignInMessage, SignInErrorMessage)
}

// SignUp creates a customer account and signs it in.
func (s *Session) SignUp(ctx context.Context, form forms.SignUp) (*pharmacyapi.User, error) {
	if errs := forms.Validate(form); errs != nil {
		msg, _ := errs.First("name", "email", "password")
		s.notifier.Notify(ctx, notify.Error(msg))
		return nil, errs.Err()
	}
	user, err := s.auth.SignUp(ctx, form.Input())
	if err != nil {
		s.notifier.Notify(ctx, notify.Error(pkgerrors.APIMessage(err, SignUpErrorMessage)))
		return nil, err
	}
	return s.establish(ctx, user, SignUpMessage, SignUpErrorMessage)
}

func (s *Session) establish(ctx context.Context, user *pharmacyapi.User, success, failure string) (*pharmacyapi.User, error) {
	if user == nil || user.AccessToken == "" {
		s.notifier.Notify(ctx, notify.Error(failure))
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "authentication response carried no access token")
	}
	if err := s.store.Save(ctx, user.AccessToken); err != nil {
		s.notifier.Notify(ctx, notify.Error(failure))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save access token")
	}
	s.setUser(user)
	ctx = s.logg.WithUserID(ctx, user.PKUser)
	ctx = s.logg.WithUserType(ctx, string(user.UserType))
	s.logg.Info(ctx, "session.signed_in")
	s.notifier.Notify(ctx, notify.Success(success))
	return user, nil
}

// Logout forgets the user, clears the stored token and runs the registered
// teardown hooks. Every step runs; their errors are combined.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	hooks := append([]func(context.Context) error(nil), s.teardown...)
	s.mu.Unlock()

	err := s.store.Clear(ctx)
	for _, hook := range hooks {
		err = multierr.Append(err, hook(ctx))
	}
	if err != nil {
		s.logg.Error(ctx, "session.logout_incomplete", err)
	}
	return err
}

func (s *Session) setUser(user *pharmacyapi.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}
