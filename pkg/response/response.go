package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

const (
	statusFail  = "fail"
	statusError = "error"
)

// Envelope represents the common success contract.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// ErrorEnvelope represents the common failure contract.
type ErrorEnvelope struct {
	Success bool                       `json:"success"`
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Code    string                     `json:"code,omitempty"`
	Errors  []appErrors.FieldViolation `json:"errors,omitempty"`
	Detail  string                     `json:"detail,omitempty"`
}

// HealthEnvelope is the API heartbeat payload.
type HealthEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// JSON sends a success response with an optional message.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// List sends a collection together with its size.
func List(c *gin.Context, data interface{}, count int) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusCreated, data, message)
}

// Message sends an acknowledgement without a data payload.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, nil, message)
}

// Error sends an error response converting the error to the common structure.
// Internal failures only expose the underlying cause outside release mode.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	envelope := ErrorEnvelope{
		Success: false,
		Status:  statusFail,
		Message: appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Fields,
	}
	if appErr.Status >= http.StatusInternalServerError {
		envelope.Status = statusError
		if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
			envelope.Detail = appErr.Err.Error()
		}
	}
	noStore(c)
	c.JSON(appErr.Status, envelope)
}

// Abort writes the error envelope and stops the middleware chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
