package application

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlaunch/launchpage-api/internal/domain/entity"
	"github.com/devlaunch/launchpage-api/internal/domain/repository"
	"github.com/devlaunch/launchpage-api/pkg/helpers"
)

// memStore is an in-memory repository.Store. WithTx snapshots state
// before running fn and restores it on error, mimicking a rollback.
type memStore struct {
	users   map[string]*entity.User               // by id
	byEmail map[string]string                     // email -> id
	tokens  map[string]*entity.PasswordResetToken // by token value
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*entity.PasswordResetToken),
	}
}

func (s *memStore) Users() repository.UserRepository            { return memUsers{s} }
func (s *memStore) ResetTokens() repository.ResetTokenRepository { return memTokens{s} }

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextID = s.nextID
	for id, u := range s.users {
		uu := *u
		cp.users[id] = &uu
	}
	for e, id := range s.byEmail {
		cp.byEmail[e] = id
	}
	for tok, t := range s.tokens {
		tt := *t
		cp.tokens[tok] = &tt
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.byEmail = from.byEmail
	s.tokens = from.tokens
	s.nextID = from.nextID
}

func (s *memStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	before := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (m memUsers) Create(ctx context.Context, u *entity.User) error {
	if _, ok := m.s.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.s.nextID++
	u.ID = fmt.Sprintf("user-%d", m.s.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.s.users[u.ID] = &cp
	m.s.byEmail[u.Email] = u.ID
	return nil
}

func (m memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	id, ok := m.s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m memUsers) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (*entity.User, error) {
	if patch.IsEmpty() {
		return nil, repository.ErrNoFields
	}
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m memUsers) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	u, ok := m.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (m memUsers) SetVerified(ctx context.Context, id string) error {
	u, ok := m.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

type memTokens struct{ s *memStore }

func (m memTokens) Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error {
	// one live token per user: drop any previous token row
	for tok, t := range m.s.tokens {
		if t.UserID == userID {
			delete(m.s.tokens, tok)
		}
	}
	m.s.tokens[token] = &entity.PasswordResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m memTokens) FindValid(ctx context.Context, token string) (string, error) {
	t, ok := m.s.tokens[token]
	if !ok || !t.ExpiresAt.After(time.Now()) {
		return "", repository.ErrNotFound
	}
	return t.UserID, nil
}

func (m memTokens) Delete(ctx context.Context, token string) error {
	if _, ok := m.s.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(m.s.tokens, token)
	return nil
}

type notification struct {
	kind, email, name, token string
}

type fakeNotifier struct {
	sent    []notification
	failure error
}

func (f *fakeNotifier) SendVerification(ctx context.Context, email, name, token string) error {
	if f.failure != nil {
		return f.failure
	}
	f.sent = append(f.sent, notification{"verification", email, name, token})
	return nil
}

func (f *fakeNotifier) SendPasswordReset(ctx context.Context, email, name, token string) error {
	if f.failure != nil {
		return f.failure
	}
	f.sent = append(f.sent, notification{"reset", email, name, token})
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore, *fakeNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &fakeNotifier{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewService(
		store,
		helpers.NewJWTManager("test-secret", 24*time.Hour),
		notifier,
		nil, // redis
		nil, // gcs
		"",
		logger,
		time.Hour,
		true,
	)
	return svc, store, notifier
}

func TestRegister(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Alice@Example.com ", "Passw0rd1", "Alice")
	require.NoError(t, err)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice@example.com", res.User.Email, "email is normalized")
	assert.NotEqual(t, "Passw0rd1", res.User.Password, "plaintext is never stored")
	assert.NotEmpty(t, res.Token)

	claims, err := svc.JWT.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	stored := store.users[res.User.ID]
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "Passw0rd1"))
	assert.False(t, stored.EmailVerified)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ALICE@example.com", "Another1pw", "Mallory")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)

	claims, err := svc.JWT.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	// unknown account and wrong password yield the identical error
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "Passw0rd1")
	_, errWrongPw := svc.Login(ctx, "alice@example.com", "WrongPassw0rd")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestForgotPassword(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	svc.ForgotPassword(ctx, "alice@example.com")

	require.Len(t, store.tokens, 1)
	for tok, t2 := range store.tokens {
		assert.Equal(t, res.User.ID, t2.UserID)
		assert.Len(t, tok, 64)
		_, decErr := hex.DecodeString(tok)
		assert.NoError(t, decErr)
		assert.WithinDuration(t, time.Now().Add(time.Hour), t2.ExpiresAt, time.Second)
	}

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "reset", notifier.sent[0].kind)
	assert.Equal(t, "alice@example.com", notifier.sent[0].email)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, store, notifier := newTestService(t)

	// must behave exactly like the success path from the outside
	svc.ForgotPassword(context.Background(), "nobody@example.com")

	assert.Empty(t, store.tokens)
	assert.Empty(t, notifier.sent)
}

func TestForgotPassword_OverwritesPriorToken(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	svc.ForgotPassword(ctx, "alice@example.com")
	require.Len(t, store.tokens, 1)
	var first string
	for tok := range store.tokens {
		first = tok
	}

	svc.ForgotPassword(ctx, "alice@example.com")
	require.Len(t, store.tokens, 1, "second request replaces, not duplicates")
	for tok := range store.tokens {
		assert.NotEqual(t, first, tok)
	}
}

func TestForgotPassword_NotifierFailureSwallowed(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	notifier.failure = fmt.Errorf("smtp down")

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	svc.ForgotPassword(ctx, "alice@example.com")

	// the token still exists even though the email never went out
	assert.Len(t, store.tokens, 1)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	svc.ForgotPassword(ctx, "alice@example.com")
	require.Len(t, notifier.sent, 1)
	token := notifier.sent[0].token

	require.NoError(t, svc.ResetPassword(ctx, token, "NewPass2"))

	_, err = svc.Login(ctx, "alice@example.com", "Passw0rd1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "old password no longer works")

	_, err = svc.Login(ctx, "alice@example.com", "NewPass2")
	assert.NoError(t, err, "new password works")

	assert.Empty(t, store.tokens, "token consumed")
	err = svc.ResetPassword(ctx, token, "ThirdPass3")
	assert.ErrorIs(t, err, ErrInvalidResetToken, "token is single use")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	require.NoError(t, store.ResetTokens().Upsert(ctx, res.User.ID, "deadbeef", time.Now().Add(-time.Minute)))

	err = svc.ResetPassword(ctx, "deadbeef", "NewPass2")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = svc.Login(ctx, "alice@example.com", "Passw0rd1")
	assert.NoError(t, err, "password unchanged")
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	bio := "building things"
	u, err := svc.UpdateProfile(ctx, res.User.ID, repository.ProfilePatch{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "building things", u.Bio)
	assert.Equal(t, "Alice", u.Name, "unset fields keep their values")
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestUpdateProfile_NoFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, res.User.ID, repository.ProfilePatch{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	name := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), "user-404", repository.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "Passw0rd1", "Alice")
	require.NoError(t, err)

	u, err := svc.GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = svc.GetByID(ctx, "user-404")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyEmail_NoTokenStore(t *testing.T) {
	svc, _, _ := newTestService(t)

	// without a redis client every token is invalid
	err := svc.VerifyEmail(context.Background(), "sometoken")
	assert.ErrorIs(t, err, ErrInvalidVerifyToken)
}
