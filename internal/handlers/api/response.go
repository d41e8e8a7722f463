package api

import (
	"net/http"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope
type Body struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// fail writes err with the status of its kind. Errors that are not
// game errors are reported without their message.
func fail(c *gin.Context, err error) {
	kind := gameerr.KindOf(err)
	msg := err.Error()
	if kind == gameerr.KindInternal {
		msg = "internal error"
	}

	c.JSON(statusFor(kind), Body{Success: false, Error: msg, Code: gameerr.CodeOf(err)})
}

func statusFor(kind gameerr.Kind) int {
	switch kind {
	case gameerr.KindValidation:
		return http.StatusBadRequest
	case gameerr.KindStateConflict:
		return http.StatusConflict
	case gameerr.KindResourceExhausted:
		return http.StatusUnprocessableEntity
	case gameerr.KindNotFound:
		return http.StatusNotFound
	case gameerr.KindConflictRetry:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
