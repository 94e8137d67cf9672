package application

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jodisatria/photofolio-api/config"
	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/mailer"
)

// fakeUserRepo is an in-memory repository recording the mutations the service
// performs.
type fakeUserRepo struct {
	users map[string]*entity.User // by id

	createErr error

	setTokenCalls   int
	clearTokenCalls int
	lastTokenHash   string
	lastExpires     time.Time

	updatePasswordCalls int
	lastPasswordHash    string
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	m := make(map[string]*entity.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = "generated-id"
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByResetTokenHash(_ context.Context, hash string) (*entity.User, error) {
	now := time.Now()
	for _, u := range f.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == hash &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id, name, email string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	return u, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.updatePasswordCalls++
	f.lastPasswordHash = hash
	u.Password = hash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id, hash string, expires time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.setTokenCalls++
	f.lastTokenHash = hash
	f.lastExpires = expires
	u.PasswordResetToken = &hash
	u.PasswordResetExpires = &expires
	return nil
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.clearTokenCalls++
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = false
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ string) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// fakeEnqueuer records published email jobs; err makes every publish fail.
type fakeEnqueuer struct {
	jobs []mailer.EmailJob
	err  error
}

func (f *fakeEnqueuer) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		f.jobs = append(f.jobs, job)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SiteTitle:        "Photofolio",
		ClientSite:       "https://client.example.com",
		ResetPasswordURL: "https://client.example.com/reset-password",
		MailSendEnabled:  true,
		ESUsersIndex:     "users",
	}
}

func newService(repo repository.UserRepository, pub Enqueuer) *UserService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := testConfig()
	return &UserService{Repo: repo, Pub: pub, Logger: logger, Cfg: cfg, ESUsersIndex: cfg.ESUsersIndex}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := helpers.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestSignup(t *testing.T) {
	repo := newFakeUserRepo()
	pub := &fakeEnqueuer{}
	svc := newService(repo, pub)

	u, err := svc.Signup(context.Background(), "Jodi", "jodi@example.com", "hunter2secret")
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "hunter2secret", u.Password)
	assert.True(t, helpers.CheckPassword(u.Password, "hunter2secret"))

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "jodi@example.com", job.To)
	assert.Equal(t, mailer.TemplateWelcome, job.Template)
	assert.Equal(t, "https://client.example.com/myProfile", job.Data["URL"])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Password: mustHash(t, "correct-password"), Active: true,
	})
	svc := newService(repo, &fakeEnqueuer{})

	_, err := svc.Login(context.Background(), "jodi@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrBadCredentials, apperror.As(err))
}

func TestLoginUnknownEmailSameFailure(t *testing.T) {
	svc := newService(newFakeUserRepo(), &fakeEnqueuer{})

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)

	// Unknown email and wrong password are the same error to the caller.
	op := apperror.As(err)
	require.NotNil(t, op)
	assert.Equal(t, http.StatusUnauthorized, op.Code)
	assert.Equal(t, "Incorrect email or password", op.Message)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Password: mustHash(t, "correct-password"), Active: true,
	})
	svc := newService(repo, &fakeEnqueuer{})

	u, err := svc.Login(context.Background(), "jodi@example.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestForgotPasswordStoresDigestNotPlain(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{ID: "u1", Email: "jodi@example.com", Active: true})
	pub := &fakeEnqueuer{}
	svc := newService(repo, pub)

	err := svc.ForgotPassword(context.Background(), "jodi@example.com")
	require.NoError(t, err)

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, mailer.TemplatePasswordReset, job.Template)

	url, _ := job.Data["URL"].(string)
	require.True(t, strings.HasPrefix(url, "https://client.example.com/reset-password/"))
	plain := strings.TrimPrefix(url, "https://client.example.com/reset-password/")

	// The database sees the digest, the email carries the plain value.
	assert.Equal(t, helpers.HashResetToken(plain), repo.lastTokenHash)
	assert.NotEqual(t, plain, repo.lastTokenHash)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), repo.lastExpires, 5*time.Second)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newService(newFakeUserRepo(), &fakeEnqueuer{})

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	op := apperror.As(err)
	require.NotNil(t, op)
	assert.Equal(t, http.StatusNotFound, op.Code)
	assert.Equal(t, "No user found with that email", op.Message)
}

func TestForgotPasswordRollsBackOnPublishFailure(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{ID: "u1", Email: "jodi@example.com", Active: true})
	pub := &fakeEnqueuer{err: errors.New("amqp: channel closed")}
	svc := newService(repo, pub)

	err := svc.ForgotPassword(context.Background(), "jodi@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrResetMailFailure, apperror.As(err))

	// Persisted token is rolled back so no orphaned reset credential stays live.
	assert.Equal(t, 1, repo.setTokenCalls)
	assert.Equal(t, 1, repo.clearTokenCalls)
	assert.Nil(t, repo.users["u1"].PasswordResetToken)
}

func TestResetPassword(t *testing.T) {
	hash := helpers.HashResetToken("plain-token-value")
	exp := time.Now().Add(5 * time.Minute)
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Active: true,
		PasswordResetToken: &hash, PasswordResetExpires: &exp,
	})
	svc := newService(repo, &fakeEnqueuer{})

	u, err := svc.ResetPassword(context.Background(), "plain-token-value", "new-password-123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, helpers.CheckPassword(repo.lastPasswordHash, "new-password-123"))

	// Single use: redeeming again fails.
	_, err = svc.ResetPassword(context.Background(), "plain-token-value", "another-password")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrResetTokenStale, apperror.As(err))
}

func TestResetPasswordExpiredToken(t *testing.T) {
	hash := helpers.HashResetToken("plain-token-value")
	exp := time.Now().Add(-time.Minute)
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Active: true,
		PasswordResetToken: &hash, PasswordResetExpires: &exp,
	})
	svc := newService(repo, &fakeEnqueuer{})

	_, err := svc.ResetPassword(context.Background(), "plain-token-value", "new-password-123")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrResetTokenStale, apperror.As(err))
	assert.Equal(t, 0, repo.updatePasswordCalls)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Password: mustHash(t, "current-password"), Active: true,
	})
	svc := newService(repo, &fakeEnqueuer{})

	_, err := svc.UpdatePassword(context.Background(), "u1", "not-the-current", "new-password-123")
	require.Error(t, err)
	op := apperror.As(err)
	require.NotNil(t, op)
	assert.Equal(t, http.StatusUnauthorized, op.Code)
	assert.Equal(t, "Incorrect password provided. Please try again", op.Message)
	assert.Equal(t, 0, repo.updatePasswordCalls)
}

func TestUpdatePasswordBumpsChangedAt(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{
		ID: "u1", Email: "jodi@example.com", Password: mustHash(t, "current-password"), Active: true,
	})
	svc := newService(repo, &fakeEnqueuer{})

	_, err := svc.UpdatePassword(context.Background(), "u1", "current-password", "new-password-123")
	require.NoError(t, err)
	require.NotNil(t, repo.users["u1"].PasswordChangedAt)
	assert.WithinDuration(t, time.Now(), *repo.users["u1"].PasswordChangedAt, 5*time.Second)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newService(newFakeUserRepo(), &fakeEnqueuer{})

	_, err := svc.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	op := apperror.As(err)
	require.NotNil(t, op)
	assert.Equal(t, http.StatusNotFound, op.Code)
	assert.Equal(t, "No user found with that ID", op.Message)
}

func TestDeleteMeDeactivates(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{ID: "u1", Email: "jodi@example.com", Active: true})
	svc := newService(repo, &fakeEnqueuer{})

	require.NoError(t, svc.DeleteMe(context.Background(), "u1"))
	assert.False(t, repo.users["u1"].Active)
}

func TestForgotPasswordMailDisabledIssuesNoToken(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{ID: "u1", Email: "jodi@example.com", Active: true})
	pub := &fakeEnqueuer{}
	svc := newService(repo, pub)
	svc.Cfg.MailSendEnabled = false

	// No reset credential may be minted when it can never be delivered.
	require.NoError(t, svc.ForgotPassword(context.Background(), "jodi@example.com"))
	assert.Equal(t, 0, repo.setTokenCalls)
	assert.Nil(t, repo.users["u1"].PasswordResetToken)
	assert.Empty(t, pub.jobs)
}

func TestSendMailSkippedWhenDisabled(t *testing.T) {
	repo := newFakeUserRepo()
	pub := &fakeEnqueuer{}
	svc := newService(repo, pub)
	svc.Cfg.MailSendEnabled = false

	_, err := svc.Signup(context.Background(), "Jodi", "jodi@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Empty(t, pub.jobs)
}
