package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vhostmgr/internal/result"
)

// Response is the envelope of every API reply
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK sends a successful response with default message "success"
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// OKMsg sends a successful response with custom message
func OKMsg(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// FailErr sends an error response from an AppError.
// err.Err is logged but not returned to the client.
func FailErr(c *gin.Context, err *AppError) {
	if err.Err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "httpx",
			"code":      err.Code,
			"path":      c.FullPath(),
		}).WithError(err.Err).Error(err.Message)
	}

	c.AbortWithStatusJSON(err.HTTPStatus, Response{
		Code:    err.Code,
		Message: err.Message,
		Data:    err.Data,
	})
}

// Result replies with an operation result: 200 on success, otherwise the
// status mapped from its kind.
func Result(c *gin.Context, res result.Result) {
	if res.Success {
		OKMsg(c, res.Message, res)
		return
	}
	FailErr(c, FromResult(res))
}
