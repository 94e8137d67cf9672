package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jodisatria/photofolio-api/config"
	"github.com/jodisatria/photofolio-api/internal/application"
	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/token"
	"github.com/jodisatria/photofolio-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memUserRepo is a map-backed repository for handler tests.
type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	m := make(map[string]*entity.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &memUserRepo{users: m}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	u.ID = "new-id"
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByResetTokenHash(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id, name, email string) (*entity.User, error) {
	u, ok := r.users[id]
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

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (r *memUserRepo) SetResetToken(context.Context, string, string, time.Time) error { return nil }
func (r *memUserRepo) ClearResetToken(context.Context, string) error                  { return nil }
func (r *memUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = false
	return nil
}
func (r *memUserRepo) List(context.Context, string) ([]*entity.User, error) { return nil, nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// The cookie window is configured independently of the token's validity.
const testCookieTTL = 2 * time.Hour

func newUserHandler(repo repository.UserRepository) *UserHandler {
	cfg := &config.Config{ClientSite: "https://client.example.com", SiteTitle: "Photofolio"}
	svc := &application.UserService{Repo: repo, Logger: quietLogger(), Cfg: cfg}
	codec := token.NewCodec("test-secret", time.Hour)
	return NewUserHandler(svc, codec, quietLogger(), helpers.NewCookie("localhost", false, testCookieTTL))
}

// userRouter wires the handler behind the error normalizer with an optional
// fake authenticated user.
func userRouter(h *UserHandler, authed *entity.User) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(true, quietLogger()))
	if authed != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CtxUserKey, authed)
			c.Set(middleware.CtxUserIDKey, authed.ID)
		})
	}
	r.POST("/users/signup", h.Signup)
	r.POST("/users/login", h.Login)
	r.POST("/users/logout", h.Logout)
	r.PATCH("/users/me/update", h.UpdateMe)
	r.DELETE("/users/me/delete", h.DeleteMe)
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func authCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == helpers.AuthCookieName {
			return ck
		}
	}
	return nil
}

func TestLoginMissingFields(t *testing.T) {
	h := newUserHandler(newMemUserRepo())
	r := userRouter(h, nil)

	for _, payload := range []gin.H{
		{},
		{"email": "jodi@example.com"},
		{"password": "hunter2secret"},
	} {
		w := postJSON(r, "/users/login", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email and password required", body(t, w)["message"])
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := helpers.HashPassword("hunter2secret")
	require.NoError(t, err)
	repo := newMemUserRepo(&entity.User{
		ID: "u1", Name: "Jodi", Email: "jodi@example.com", Password: hash,
		Role: entity.RoleUser, Active: true,
	})
	h := newUserHandler(repo)
	r := userRouter(h, nil)

	w := postJSON(r, "/users/login", gin.H{"email": "jodi@example.com", "password": "hunter2secret"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := body(t, w)
	assert.Equal(t, "success", resp["status"])
	assert.NotEmpty(t, resp["token"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", user["id"])
	assert.NotContains(t, user, "password")

	ck := authCookie(w)
	require.NotNil(t, ck)
	assert.Equal(t, resp["token"], ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, int(testCookieTTL.Seconds()), ck.MaxAge)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := helpers.HashPassword("hunter2secret")
	require.NoError(t, err)
	repo := newMemUserRepo(&entity.User{ID: "u1", Email: "jodi@example.com", Password: hash, Active: true})
	h := newUserHandler(repo)
	r := userRouter(h, nil)

	w := postJSON(r, "/users/login", gin.H{"email": "jodi@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect email or password", body(t, w)["message"])
}

func TestSignupPasswordMismatch(t *testing.T) {
	h := newUserHandler(newMemUserRepo())
	r := userRouter(h, nil)

	w := postJSON(r, "/users/signup", gin.H{
		"name":             "Jodi",
		"email":            "jodi@example.com",
		"password":         "hunter2secret",
		"password_confirm": "different-value",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	msg, _ := body(t, w)["message"].(string)
	assert.Contains(t, msg, "Invalid input data: ")
	assert.Contains(t, msg, "password_confirm")
}

func TestSignupSuccess(t *testing.T) {
	h := newUserHandler(newMemUserRepo())
	r := userRouter(h, nil)

	w := postJSON(r, "/users/signup", gin.H{
		"name":             "Jodi",
		"email":            "jodi@example.com",
		"password":         "hunter2secret",
		"password_confirm": "hunter2secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := body(t, w)
	assert.Equal(t, "success", resp["status"])
	assert.NotEmpty(t, resp["token"])
	user, _ := resp["user"].(map[string]any)
	assert.Equal(t, entity.RoleUser, user["role"])
}

func TestLogoutOverwritesCookie(t *testing.T) {
	h := newUserHandler(newMemUserRepo())
	r := userRouter(h, nil)

	w := postJSON(r, "/users/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	ck := authCookie(w)
	require.NotNil(t, ck)
	assert.Equal(t, "logged_out", ck.Value)
	assert.LessOrEqual(t, ck.MaxAge, 10)
}

func TestUpdateMeRejectsPasswordField(t *testing.T) {
	u := &entity.User{ID: "u1", Name: "Jodi", Email: "jodi@example.com", Active: true}
	h := newUserHandler(newMemUserRepo(u))
	r := userRouter(h, u)

	b, _ := json.Marshal(gin.H{"name": "New Name", "password": "sneaky-change"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/users/me/update", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This route is not for changing password. Please use /updatePassword", body(t, w)["message"])
}

func TestDeleteMeNoContent(t *testing.T) {
	u := &entity.User{ID: "u1", Email: "jodi@example.com", Active: true}
	repo := newMemUserRepo(u)
	h := newUserHandler(repo)
	r := userRouter(h, u)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/me/delete", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.False(t, repo.users["u1"].Active)
}
