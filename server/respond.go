package server

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/courserec/core"
)

// APIError 是错误响应体。
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &errorResponse{Error: APIError{Code: code, Message: message}})
}

// statusOf 把领域错误映射为 HTTP 状态码。
func statusOf(err error) (int, string) {
	switch {
	case core.IsInvalidArgument(err):
		return http.StatusBadRequest, core.ErrorCodeInvalidArgument
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable, core.ErrorCodeUnavailable
	case core.IsDataSourceNotFound(err):
		return http.StatusInternalServerError, core.ErrorCodeDataSourceNotFound
	case core.IsSchemaError(err):
		return http.StatusInternalServerError, core.ErrorCodeSchemaError
	default:
		return http.StatusInternalServerError, core.ErrorCodeInternalError
	}
}
