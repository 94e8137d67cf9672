package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/config"
	"github.com/jodisatria/photofolio-api/internal/application"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/mailer"
	tpl "github.com/jodisatria/photofolio-api/pkg/mailer/templates"
	"github.com/jodisatria/photofolio-api/pkg/response"
)

// ContactHandler relays contact-form submissions to the site owner's inbox,
// with an optional copy back to the sender.
type ContactHandler struct {
	Pub    application.Enqueuer
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewContactHandler(pub application.Enqueuer, logger *logrus.Logger, cfg *config.Config) *ContactHandler {
	return &ContactHandler{Pub: pub, Logger: logger, Cfg: cfg}
}

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Desc     string `json:"desc"`
	Phone    string `json:"phone"`
	SendCopy bool   `json:"send_copy"`
}

// SendEmail POST /api/contact/sendEmail
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Desc == "" || req.Phone == "" {
		fail(c, apperror.New("Name, email, phone and desc are required fields", http.StatusBadRequest))
		return
	}

	data := tpl.ToMap(tpl.EmailData{
		Name:      req.Name,
		Email:     req.Email,
		Desc:      req.Desc,
		Phone:     req.Phone,
		SiteTitle: h.Cfg.SiteTitle,
	})

	if h.Cfg.MailSendEnabled && h.Pub != nil {
		job := mailer.EmailJob{To: h.Cfg.MasterEmail, Template: mailer.TemplateContact, Data: data}
		if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
			fail(c, err)
			return
		}
		if req.SendCopy {
			copyJob := mailer.EmailJob{To: req.Email, Template: mailer.TemplateContactCopy, Data: data}
			if err := h.Pub.PublishJSON(c.Request.Context(), copyJob); err != nil {
				h.Logger.WithError(err).Warn("contact copy enqueue failed")
			}
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("attempted to send email with following params: %s, %s, %s", req.Name, req.Email, req.Desc),
	})
}
