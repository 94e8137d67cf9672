package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/internal/application"
	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/response"
	"github.com/jodisatria/photofolio-api/pkg/token"
)

type UserHandler struct {
	Svc     *application.UserService
	Codec   *token.Codec
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *application.UserService, codec *token.Codec, logger *logrus.Logger, cookies *helpers.CookieManager) *UserHandler {
	return &UserHandler{Svc: svc, Codec: codec, Logger: logger, Cookies: cookies}
}

// fail routes an error into the normalizer and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

type signupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// issueAndSend signs a fresh token for u, sets the auth cookie and writes the
// success envelope. The outbound user representation never carries the hash.
func (h *UserHandler) issueAndSend(c *gin.Context, u *entity.User, status int) {
	tkn, _, err := h.Codec.Issue(u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetAuth(c, tkn)
	response.Success(c, status, gin.H{"token": tkn, "user": u.Public()})
}

// Signup POST /api/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.issueAndSend(c, u, http.StatusCreated)
}

// Login POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, apperror.New("Email and password required", http.StatusBadRequest))
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.issueAndSend(c, u, http.StatusOK)
}

// Logout POST /api/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.ClearAuth(c)
	response.Success(c, http.StatusOK, gin.H{})
}

// ForgotPassword POST /api/users/forgotPassword
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password reset token sent to email"})
}

// ResetPassword PATCH /api/users/resetPassword/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.issueAndSend(c, u, http.StatusOK)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	response.Success(c, http.StatusOK, gin.H{"user": u.Public()})
}

// UpdateMe PATCH /api/users/me/update
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		fail(c, apperror.New("This route is not for changing password. Please use /updatePassword", http.StatusBadRequest))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateMe(c.Request.Context(), uid, req.Name, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": u.Public()})
}

// UpdatePassword PATCH /api/users/updatePassword
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdatePassword(c.Request.Context(), uid, req.CurrentPassword, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	// Old tokens are stale now; hand the client a fresh one.
	h.issueAndSend(c, u, http.StatusOK)
}

// DeleteMe DELETE /api/users/me/delete
func (h *UserHandler) DeleteMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.DeleteMe(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// List GET /api/users/list (admin)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context(), c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	response.Success(c, http.StatusOK, gin.H{"user": out})
}

// GetOne GET /api/users/:id (admin)
func (h *UserHandler) GetOne(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u.Public()})
}

// Search GET /api/users/search?q=...&size=... (admin)
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": hits})
}
