// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "qarilive-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Success sends {ok:true} merged with the payload fields.
func Success(c *gin.Context, status int, payload gin.H) {
	if status == 0 {
		status = http.StatusOK
	}

	body := gin.H{"ok": true}
	for k, v := range payload {
		if k == "ok" {
			continue
		}
		body[k] = v
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, body)
}

// Error sends a standardized error envelope. detail is omitted when empty.
func Error(c *gin.Context, code int, message string, detail string) {
	// Abort first so later handlers in the chain never write.
	c.Abort()

	body := gin.H{
		"ok":    false,
		"error": message,
	}
	if detail != "" {
		body["detail"] = detail
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(code, body)
}

// FromError picks the status from the error kind. Internal failures keep the
// fallback message; validation and auth failures surface their own text.
func FromError(c *gin.Context, err error, fallback string) {
	status := xerrors.HTTPStatus(err)

	message := fallback
	var upstream *xerrors.UpstreamError
	switch {
	case errors.As(err, &upstream):
		if upstream.Message != "" {
			message = upstream.Message
		}
	case status == http.StatusGatewayTimeout:
		message = xerrors.ErrUpstreamTimeout.Error()
	case status < http.StatusInternalServerError:
		message = err.Error()
	}

	Error(c, status, message, xerrors.Detail(err))
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, "")
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, "")
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, "")
}

// MethodNotAllowed sends a 405 response.
func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, "Method not allowed", "")
}
