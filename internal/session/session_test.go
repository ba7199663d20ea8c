package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/auth"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type stubAuth struct {
	user    *pharmacyapi.User
	err     error
	meCalls int
}

func (s *stubAuth) SignIn(context.Context, pharmacyapi.SignInInput) (*pharmacyapi.User, error) {
	return s.user, s.err
}

func (s *stubAuth) SignUp(context.Context, pharmacyapi.SignUpInput) (*pharmacyapi.User, error) {
	return s.user, s.err
}

func (s *stubAuth) Me(context.Context) (*pharmacyapi.User, error) {
	s.meCalls++
	return s.user, s.err
}

func mintToken(t *testing.T, issuedAt time.Time) string {
	t.Helper()
	token, err := auth.MintAccessToken(
		auth.TokenConfig{Secret: "secret", Issuer: "pharmacy", TTL: time.Hour},
		issuedAt,
		auth.AccessTokenPayload{UserID: 3, UserType: enums.UserTypeCustomer},
	)
	require.NoError(t, err)
	return token
}

func newTestSession(t *testing.T, a *stubAuth, store TokenStore) (*Session, *notify.Recorder) {
	t.Helper()
	recorder := &notify.Recorder{}
	s, err := New(a, store, WithNotifier(recorder))
	require.NoError(t, err)
	return s, recorder
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, NewMemoryStore(""))
	assert.Error(t, err)
	_, err = New(&stubAuth{}, nil)
	assert.Error(t, err)
}

func TestHydrateWithoutTokenIsSignedOut(t *testing.T) {
	a := &stubAuth{}
	s, _ := newTestSession(t, a, NewMemoryStore(""))

	_, err := s.Hydrate(context.Background())
	assert.ErrorIs(t, err, ErrSignedOut)
	assert.Zero(t, a.meCalls)
	assert.False(t, s.LoggedIn())
}

func TestHydrateLoadsUser(t *testing.T) {
	a := &stubAuth{user: &pharmacyapi.User{PKUser: 3, Email: "ana@example.com"}}
	s, _ := newTestSession(t, a, NewMemoryStore(mintToken(t, time.Now())))

	user, err := s.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.PKUser)
	assert.Same(t, user, s.User())
}

func TestHydrateOpaqueTokenStillAsksAPI(t *testing.T) {
	a := &stubAuth{user: &pharmacyapi.User{PKUser: 3}}
	s, _ := newTestSession(t, a, NewMemoryStore("opaque-token"))

	_, err := s.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, a.meCalls)
}

func TestHydrateExpiredTokenLogsOut(t *testing.T) {
	a := &stubAuth{user: &pharmacyapi.User{PKUser: 3}}
	store := NewMemoryStore(mintToken(t, time.Now().Add(-2*time.Hour)))
	s, _ := newTestSession(t, a, store)

	_, err := s.Hydrate(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Zero(t, a.meCalls)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestHydrateRejectedTokenLogsOut(t *testing.T) {
	a := &stubAuth{err: pkgerrors.Remote(http.StatusUnauthorized, "Token inválido")}
	store := NewMemoryStore(mintToken(t, time.Now()))
	s, _ := newTestSession(t, a, store)

	var tornDown bool
	s.OnLogout(func(context.Context) error { tornDown = true; return nil })

	_, err := s.Hydrate(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.True(t, tornDown)
	assert.Nil(t, s.User())
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestHydrateKeepsTokenWhenAPIUnreachable(t *testing.T) {
	cases := map[string]error{
		"dependency":   pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "call pharmacy api"),
		"server error": pkgerrors.Remote(http.StatusBadGateway, ""),
	}
	for name, apiErr := range cases {
		t.Run(name, func(t *testing.T) {
			token := mintToken(t, time.Now())
			store := NewMemoryStore(token)
			a := &stubAuth{err: apiErr}
			s, _ := newTestSession(t, a, store)

			var tornDown bool
			s.OnLogout(func(context.Context) error { tornDown = true; return nil })

			_, err := s.Hydrate(context.Background())
			require.Error(t, err)
			assert.False(t, tornDown)
			assert.Nil(t, s.User())

			kept, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, token, kept)

			a.err = nil
			a.user = &pharmacyapi.User{PKUser: 3}
			user, err := s.Hydrate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(3), user.PKUser)
		})
	}
}

func TestHydrateForbiddenTokenLogsOut(t *testing.T) {
	store := NewMemoryStore(mintToken(t, time.Now()))
	s, _ := newTestSession(t, &stubAuth{err: pkgerrors.Remote(http.StatusForbidden, "Sem permissão")}, store)

	_, err := s.Hydrate(context.Background())
	require.Error(t, err)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSignInStoresToken(t *testing.T) {
	user := &pharmacyapi.User{PKUser: 3, AccessToken: "tok", UserType: enums.UserTypeCustomer}
	store := NewMemoryStore("")
	s, recorder := newTestSession(t, &stubAuth{user: user}, store)

	got, err := s.SignIn(context.Background(), forms.SignIn{Email: "ana@example.com", Password: "segredo"})
	require.NoError(t, err)
	assert.Same(t, user, got)

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	last, _ := recorder.Last()
	assert.Equal(t, notify.Success(SignInMessage), last)
	assert.Equal(t, 2*time.Second, last.Duration)
}

func TestSignInFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server message", pkgerrors.Remote(http.StatusUnauthorized, "Utilizador não encontrado"), "Utilizador não encontrado"},
		{"fallback", errors.New("dial tcp: refused"), SignInErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, recorder := newTestSession(t, &stubAuth{err: tc.err}, NewMemoryStore(""))
			_, err := s.SignIn(context.Background(), forms.SignIn{Email: "ana@example.com", Password: "x"})
			require.Error(t, err)
			last, _ := recorder.Last()
			assert.Equal(t, notify.Error(tc.want), last)
			assert.Equal(t, 3*time.Second, last.Duration)
			assert.False(t, s.LoggedIn())
		})
	}
}

func TestSignInValidatesForm(t *testing.T) {
	a := &stubAuth{}
	s, recorder := newTestSession(t, a, NewMemoryStore(""))

	_, err := s.SignIn(context.Background(), forms.SignIn{Email: "nope"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	last, _ := recorder.Last()
	assert.Equal(t, "Digite um email válido", last.Title)
}

func TestSignInWithoutTokenFails(t *testing.T) {
	s, recorder := newTestSession(t, &stubAuth{user: &pharmacyapi.User{PKUser: 1}}, NewMemoryStore(""))

	_, err := s.SignIn(context.Background(), forms.SignIn{Email: "ana@example.com", Password: "segredo"})
	require.Error(t, err)
	last, _ := recorder.Last()
	assert.Equal(t, SignInErrorMessage, last.Title)
	assert.False(t, s.LoggedIn())
}

func TestSignUp(t *testing.T) {
	user := &pharmacyapi.User{PKUser: 9, AccessToken: "tok"}
	s, recorder := newTestSession(t, &stubAuth{user: user}, NewMemoryStore(""))

	_, err := s.SignUp(context.Background(), forms.SignUp{Name: "Ana Maria", Email: "ana@example.com", Password: "segredo"})
	require.NoError(t, err)
	last, _ := recorder.Last()
	assert.Equal(t, SignUpMessage, last.Title)

	failing, recorder := newTestSession(t, &stubAuth{err: errors.New("boom")}, NewMemoryStore(""))
	_, err = failing.SignUp(context.Background(), forms.SignUp{Name: "Ana Maria", Email: "ana@example.com", Password: "segredo"})
	require.Error(t, err)
	last, _ = recorder.Last()
	assert.Equal(t, SignUpErrorMessage, last.Title)
}

type failingStore struct {
	MemoryStore
}

func (f *failingStore) Clear(context.Context) error {
	return errors.New("disk full")
}

func TestLogoutCombinesErrors(t *testing.T) {
	s, _ := newTestSession(t, &stubAuth{}, &failingStore{})
	ran := 0
	s.OnLogout(func(context.Context) error { ran++; return errors.New("cart busy") })
	s.OnLogout(func(context.Context) error { ran++; return nil })

	err := s.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, ran)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "cart busy")
}

func TestStoreTokensHidesMissingToken(t *testing.T) {
	store := NewMemoryStore("")
	tokens := StoreTokens(store)

	token, err := tokens.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(context.Background(), "abc"))
	token, err = tokens.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
