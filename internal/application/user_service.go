package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/config"
	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/mailer"
	tpl "github.com/jodisatria/photofolio-api/pkg/mailer/templates"
)

// resetTokenTTL is how long a mailed password-reset token stays valid.
const resetTokenTTL = 10 * time.Minute

// Enqueuer publishes email jobs; satisfied by helpers.RabbitPublisher.
type Enqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserService implements the account flows: signup, login, password
// maintenance and profile CRUD. Mail goes out through the queue; from this
// service's perspective the publish call is the send.
type UserService struct {
	Repo         repository.UserRepository
	Pub          Enqueuer
	Logger       *logrus.Logger
	Cfg          *config.Config
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(repo repository.UserRepository, pub Enqueuer, logger *logrus.Logger, cfg *config.Config, es *elasticsearch.Client) *UserService {
	return &UserService{Repo: repo, Pub: pub, Logger: logger, Cfg: cfg, ES: es, ESUsersIndex: cfg.ESUsersIndex}
}

// Signup creates the account and sends the welcome email. The new user's
// password arrives plain and leaves this function only as a bcrypt hash.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: name, Email: email, Password: hash, Role: entity.RoleUser}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	profileURL := s.Cfg.ClientSite + "/myProfile"
	if err := s.sendMail(ctx, mailer.TemplateWelcome, u, profileURL, ""); err != nil {
		return nil, err
	}

	s.indexUser(ctx, u)
	return u, nil
}

// Login validates credentials. A missing user and a wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrBadCredentials
		}
		return nil, err
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, apperror.ErrBadCredentials
	}
	return u, nil
}

// GetByID loads a live user, mapping absence to the operational 404.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New("No user found with that ID", http.StatusNotFound)
		}
		return nil, err
	}
	return u, nil
}

// UpdateMe changes name and/or email only; password changes are a separate
// flow so password_changed_at stays meaningful.
func (s *UserService) UpdateMe(ctx context.Context, id, name, email string) (*entity.User, error) {
	u, err := s.Repo.UpdateProfile(ctx, id, name, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New("No user found with that ID", http.StatusNotFound)
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// UpdatePassword verifies the current password before storing the new hash.
// The bump of password_changed_at invalidates every previously issued token.
func (s *UserService) UpdatePassword(ctx context.Context, id, current, newPassword string) (*entity.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(u.Password, current) {
		return nil, apperror.New("Incorrect password provided. Please try again", http.StatusUnauthorized)
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdatePassword(ctx, id, hash, time.Now()); err != nil {
		return nil, err
	}
	return u, nil
}

// ForgotPassword issues a reset token and mails the unhashed value. When the
// mail cannot be handed off, the just-persisted token is rolled back before
// the failure surfaces, so no orphaned reset credential stays live.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New("No user found with that email", http.StatusNotFound)
		}
		return err
	}

	// No queue means the token could never reach the user; do not leave a
	// live reset credential behind.
	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		s.Logger.WithField("user_id", u.ID).Warn("mail sending disabled, password reset skipped")
		return nil
	}

	plain, hash, err := helpers.GenResetToken()
	if err != nil {
		return err
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, hash, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := s.Cfg.ResetPasswordURL + "/" + plain
	if err := s.sendMail(ctx, mailer.TemplatePasswordReset, u, resetURL, "10 minutes"); err != nil {
		if clearErr := s.Repo.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.Logger.WithError(clearErr).WithField("user_id", u.ID).Error("reset token rollback failed")
		}
		return apperror.ErrResetMailFailure
	}
	return nil
}

// ResetPassword redeems a mailed token. The presented value is re-hashed and
// matched against the stored digest; expired or unknown tokens resolve
// nothing.
func (s *UserService) ResetPassword(ctx context.Context, plainToken, newPassword string) (*entity.User, error) {
	u, err := s.Repo.GetByResetTokenHash(ctx, helpers.HashResetToken(plainToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrResetTokenStale
		}
		return nil, err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	// UpdatePassword also clears the token: it is single-use.
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash, time.Now()); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteMe soft-deletes the account; the record persists with active=false.
func (s *UserService) DeleteMe(ctx context.Context, id string) error {
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New("No user found with that ID", http.StatusNotFound)
		}
		return err
	}
	return nil
}

// List returns all active users, admin-only at the route level.
func (s *UserService) List(ctx context.Context, sortBy string) ([]*entity.User, error) {
	return s.Repo.List(ctx, sortBy)
}

func (s *UserService) sendMail(ctx context.Context, template string, u *entity.User, url, expiresIn string) error {
	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		return nil
	}
	data := tpl.EmailData{
		Name:          u.Name,
		Email:         u.Email,
		SiteTitle:     s.Cfg.SiteTitle,
		URL:           url,
		ExpiresInText: expiresIn,
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: tpl.ToMap(data)}
	return s.Pub.PublishJSON(ctx, job)
}

// indexUser mirrors the profile into Elasticsearch for the admin search
// endpoint. Index failures are logged, never surfaced.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search performs a simple multi_match search on email and name.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
