package response

import (
	"encoding/json"
	"net/http"
)

// RenderError renders a single JSON:API error
func RenderError(w http.ResponseWriter, status int, err error) {
	RenderErrors(w, status, []*ErrorObject{NewErrorObject(status, err)})
}

// RenderErrors renders multiple JSON:API errors
func RenderErrors(w http.ResponseWriter, status int, errs []*ErrorObject) {
	// Marshal errors BEFORE writing headers
	data, err := json.Marshal(map[string][]*ErrorObject{"errors": errs})
	if err != nil {
		w.Header().Set("Content-Type", JSONAPIMediaType)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"status":"500","code":"internal_error","title":"Internal Server Error"}]}`))
		return
	}

	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(status)
	w.Write(data)
}

// errorCodeFromStatus maps HTTP status codes to error codes
func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusNotAcceptable:
		return "not_acceptable"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "error"
	}
}
