package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/Sanjit42/naming-service/internal/logger"
)

// Response is the JSON envelope returned by every handler.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes data wrapped in a success envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ResponseError logs err and writes it wrapped in a failure envelope.
// data carries extra detail such as validation messages and may be nil.
func ResponseError(c echo.Context, status int, message string, err error, data ...interface{}) error {
	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorLog(c.Request().Context(), "%s (status %d): %v", message, status, err)
	}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	return c.JSON(status, resp)
}
