package middleware

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/token"
	"github.com/jodisatria/photofolio-api/pkg/validation"
)

// Postgres error codes the normalizer recognizes.
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02" // malformed uuid / cast failures
)

var (
	// Key (email)=(a@b.com) already exists.
	pgDetailValue = regexp.MustCompile(`\)=\((.*)\) already exists`)
	// invalid input syntax for type uuid: "nope"
	quotedValue = regexp.MustCompile(`"[^"]*"`)
)

// ErrorHandler is the error normalizer: the single boundary every raised
// failure funnels through before a response is written. Handlers and
// middleware push errors into gin's error list; this middleware runs last on
// the way out, remaps known persistence and token failure shapes into
// operational errors, and then serializes according to the deployment mode.
func ErrorHandler(production bool, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		err := last.Err

		op := remap(err)
		if production {
			sendProd(c, logger, op, err)
			return
		}
		sendDev(c, op, err)
	}
}

// remap rewrites known failure shapes into operational errors. It returns nil
// when err is an unexpected defect.
func remap(err error) *apperror.Error {
	if e := apperror.As(err); e != nil {
		return e
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			value := "that value"
			if m := pgDetailValue.FindStringSubmatch(pgErr.Detail); m != nil {
				value = "\"" + m[1] + "\""
			}
			return apperror.New("Duplicate field value: "+value+" Please use another value", http.StatusBadRequest)
		case pgInvalidText:
			value := pgErr.Message
			if m := quotedValue.FindString(pgErr.Message); m != "" {
				value = m
			}
			return apperror.New("Invalid id: "+value, http.StatusBadRequest)
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.New("Invalid input data: "+validation.Summary(err), http.StatusBadRequest)
	}

	// Token codec failures raised outside the auth gate's own handling.
	if errors.Is(err, token.ErrExpired) {
		return apperror.ErrTokenExpired
	}
	if errors.Is(err, token.ErrInvalid) {
		return apperror.ErrTokenInvalid
	}

	return nil
}

// sendDev echoes full failure detail for debugging.
func sendDev(c *gin.Context, op *apperror.Error, err error) {
	code := http.StatusInternalServerError
	status := "error"
	message := err.Error()
	if op != nil {
		code = op.Code
		status = op.Status
		message = op.Message
	}
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body["details"] = validation.ToDetails(err)
	}
	c.JSON(code, body)
}

// sendProd emits the operational message, or hides defect detail behind the
// generic body while logging it server-side.
func sendProd(c *gin.Context, logger *logrus.Logger, op *apperror.Error, err error) {
	if op != nil {
		c.JSON(op.Code, gin.H{"status": op.Status, "message": op.Message})
		return
	}
	logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString(CtxRequestIDKey),
	}).Error("unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "ERROR",
		"message": "Oops! Something went very wrong. :(",
	})
}
