package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode is a stable machine-readable error code.
type ErrorCode string

const (
	errCodeBadRequest    ErrorCode = "bad_request"
	errCodeNotFound      ErrorCode = "not_found"
	errCodeInternalError ErrorCode = "internal_error"
	errCodeStoreError    ErrorCode = "store_error"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{Error: errorDetail{Code: code, Message: message}}
	if len(details) > 0 {
		response.Error.Details = details[0]
	}
	c.JSON(statusCode, response)
}

func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}
