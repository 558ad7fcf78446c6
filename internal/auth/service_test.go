package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/mail"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/internal/sessions"
	"github.com/coursehub/coursehub-api/internal/tokens"
	"github.com/coursehub/coursehub-api/internal/users"
	"github.com/coursehub/coursehub-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.ActivationMail
	err  error
}

func (c *captureMailer) SendActivation(ctx context.Context, m mail.ActivationMail) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	return nil
}

func (c *captureMailer) last() mail.ActivationMail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[len(c.sent)-1]
}

type fixture struct {
	svc    *Service
	users  *users.Service
	store  sessions.Store
	mailer *captureMailer
	redis  *mr.Miniredis
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.ActivationSecret = "activation-secret-for-tests-xxxxxxx"
	cfg.JWT.AccessSecret = "access-secret-for-tests-xxxxxxxxxxx"
	cfg.JWT.RefreshSecret = "refresh-secret-for-tests-xxxxxxxxxx"
	cfg.JWT.ActivationTTL = 5 * time.Minute
	cfg.JWT.AccessTokenTTL = time.Hour
	cfg.JWT.RefreshTokenTTL = 24 * time.Hour
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	store := sessions.NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	us := users.NewService(users.NewMemoryUserRepository())
	mailer := &captureMailer{}
	return &fixture{
		svc:    NewService(us, tokens.NewIssuer(testConfig()), store, mailer),
		users:  us,
		store:  store,
		mailer: mailer,
		redis:  m,
	}
}

func (f *fixture) activate(t *testing.T, name, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	tok, err := f.svc.Register(ctx, name, email, password)
	require.NoError(t, err)
	u, err := f.svc.CompleteActivation(ctx, tok, f.mailer.last().Code)
	require.NoError(t, err)
	return u
}

func TestRegisterAndActivate_PersistsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.Register(ctx, "Alice", "alice@example.com", "pa55word")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	sent := f.mailer.last()
	assert.Equal(t, "alice@example.com", sent.Email)
	assert.Equal(t, "Alice", sent.Name)

	// nothing is persisted before activation
	taken, err := f.users.EmailTaken(ctx, "alice@example.com")
	require.NoError(t, err)
	require.False(t, taken)

	u, err := f.svc.CompleteActivation(ctx, tok, sent.Code)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.ComparePassword("pa55word"))

	_, err = f.svc.CompleteActivation(ctx, tok, sent.Code)
	require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
}

func TestRegister_RejectsExistingEmail(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "Alice", "alice@example.com", "pw")
	n := len(f.mailer.sent)

	_, err := f.svc.Register(context.Background(), "Other", "ALICE@example.com", "pw2")
	require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	require.Len(t, f.mailer.sent, n, "no mail for a rejected registration")
}

func TestRegister_MailFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	_, err := f.svc.Register(context.Background(), "A", "a@b.c", "pw")
	require.Error(t, err)
	require.Equal(t, 500, apperrors.Status(err))
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "", "a@b.c", "pw")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestCompleteActivation_WrongCodeDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.svc.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)

	wrong := "0000"
	if f.mailer.last().Code == wrong {
		wrong = "0001"
	}
	_, err = f.svc.CompleteActivation(ctx, tok, wrong)
	require.ErrorIs(t, err, apperrors.ErrCodeMismatch)

	taken, err := f.users.EmailTaken(ctx, "bob@example.com")
	require.NoError(t, err)
	require.False(t, taken)
}

func TestCompleteActivation_InvalidToken(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(metrics.Activations.WithLabelValues("failure"))
	_, err := f.svc.CompleteActivation(context.Background(), "garbage", "1234")
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Activations.WithLabelValues("failure")))
}

func TestLogin_CachesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.activate(t, "Carol", "carol@example.com", "secret")

	u, pair, err := f.svc.Login(ctx, "carol@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	snap, err := f.store.Load(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Empty(t, snap.Password)
	require.Equal(t, 24*time.Hour, f.redis.TTL("session:"+u.ID))
}

func TestLogin_GenericFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Dan", "dan@example.com", "right")

	for _, tc := range []struct{ email, password string }{
		{"dan@example.com", "wrong"},
		{"nobody@example.com", "right"},
		{"", "right"},
		{"dan@example.com", ""},
	} {
		_, _, err := f.svc.Login(ctx, tc.email, tc.password)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "%s/%s", tc.email, tc.password)
	}
}

func TestIssueSession_PerUserKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &models.User{ID: "a", Name: "A", Role: models.RoleUser}
	b := &models.User{ID: "b", Name: "B", Role: models.RoleAdmin}

	_, err := f.svc.IssueSession(ctx, a)
	require.NoError(t, err)
	_, err = f.svc.IssueSession(ctx, b)
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		snap, err := f.store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, snap, "session %s missing", id)
	}

	a.Name = "A2"
	_, err = f.svc.IssueSession(ctx, a)
	require.NoError(t, err)
	snapA, _ := f.store.Load(ctx, "a")
	snapB, _ := f.store.Load(ctx, "b")
	require.Equal(t, "A2", snapA.Name)
	require.Equal(t, "B", snapB.Name)
}

func TestRefresh_RotatesAndSpendsOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Eve", "eve@example.com", "pw")
	u, pair, err := f.svc.Login(ctx, "eve@example.com", "pw")
	require.NoError(t, err)

	next, refreshed, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, refreshed.ID)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, _, err = f.svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RequiresLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Fay", "fay@example.com", "pw")
	u, pair, err := f.svc.Login(ctx, "fay@example.com", "pw")
	require.NoError(t, err)

	f.redis.Del("session:" + u.ID)
	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, _, err = f.svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestLogout_EndsSessionAndRevokesRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Gus", "gus@example.com", "pw")
	u, pair, err := f.svc.Login(ctx, "gus@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, u.ID, pair.RefreshToken))
	snap, err := f.svc.Session(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, snap)

	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	// logging out twice, or without a refresh token, is harmless
	require.NoError(t, f.svc.Logout(ctx, u.ID, ""))
}

func TestCurrentUser_FallsBackToCredentialStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.activate(t, "Hal", "hal@example.com", "pw")

	u, err := f.svc.CurrentUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "hal@example.com", u.Email)
	require.Empty(t, u.Password)

	_, err = f.svc.CurrentUser(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRevocationTTLFollowsIssuerClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Ike", "ike@example.com", "pw")

	at := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := tokens.NewIssuer(testConfig()).WithClock(func() time.Time { return at })
	svc := NewService(f.users, issuer, f.store, f.mailer)

	u, pair, err := svc.Login(ctx, "ike@example.com", "pw")
	require.NoError(t, err)
	claims, err := issuer.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	at = at.Add(time.Hour)
	require.NoError(t, svc.Logout(ctx, u.ID, pair.RefreshToken))
	require.Equal(t, 23*time.Hour, f.redis.TTL("revoked:refresh:"+claims.ID))
}

// endingStore logs the user out right after the session is read, the way a
// concurrent logout request can interleave with a refresh.
type endingStore struct {
	sessions.Store
}

func (s endingStore) Load(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Store.Load(ctx, userID)
	if err != nil || u == nil {
		return u, err
	}
	return u, s.Store.End(ctx, userID, "", time.Minute)
}

func TestRefresh_DoesNotReviveConcurrentLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activate(t, "Jo", "jo@example.com", "pw")
	u, pair, err := f.svc.Login(ctx, "jo@example.com", "pw")
	require.NoError(t, err)

	svc := NewService(f.users, f.svc.Issuer(), endingStore{f.store}, f.mailer)
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	require.False(t, f.redis.Exists("session:"+u.ID))
	snap, err := f.svc.Session(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, snap)
}
