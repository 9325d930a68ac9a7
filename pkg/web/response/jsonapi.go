package response

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

const (
	// JSONAPIMediaType is the official JSON:API media type
	JSONAPIMediaType = "application/vnd.api+json"
)

// IsJSONAPI reports whether a JSON:API document may be sent for the request's
// Accept header. A missing header, wildcards and application/json accept it;
// the JSON:API media type counts only without parameters other than q, and a
// header listing it exclusively with parameters is not acceptable.
func IsJSONAPI(r *http.Request) bool {
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" {
		return true
	}

	var modified, other bool
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		delete(params, "q")
		switch mediaType {
		case JSONAPIMediaType:
			if len(params) == 0 {
				return true
			}
			modified = true
		case "*/*", "application/*", "application/json":
			other = true
		}
	}
	// Every JSON:API entry carried parameters
	if modified {
		return false
	}
	return other
}

// RenderDocument writes an encoded document; a nil document renders {"data":null}
func RenderDocument(w http.ResponseWriter, status int, doc *jsonapi.Document) error {
	// Marshal FIRST, before touching the response
	data, err := jsonapi.Marshal(doc)
	if err != nil {
		return err
	}
	return RenderRaw(w, status, data)
}

// RenderRaw writes an already serialised JSON:API document
func RenderRaw(w http.ResponseWriter, status int, data []byte) error {
	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(status)
	_, err := w.Write(data)
	return err
}

// ErrorSource points at the part of the request document that caused an error
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// ErrorObject is a JSON:API error object
type ErrorObject struct {
	Status string       `json:"status,omitempty"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// NewErrorObject builds the error object for a status and error
func NewErrorObject(status int, err error) *ErrorObject {
	obj := &ErrorObject{
		Status: strconv.Itoa(status),
		Code:   errorCodeFromStatus(status),
		Title:  http.StatusText(status),
	}
	if err == nil {
		return obj
	}
	obj.Detail = err.Error()

	var fieldErr *jsonapi.FieldError
	if errors.As(err, &fieldErr) {
		obj.Source = &ErrorSource{Pointer: fieldPointer(fieldErr)}
	}
	return obj
}

// fieldPointer builds the RFC 6901 pointer of a field error
func fieldPointer(fe *jsonapi.FieldError) string {
	member := "attributes"
	switch fe.Kind {
	case jsonapi.KindRelationship:
		member = "relationships"
	case jsonapi.KindMeta:
		member = "meta"
	}
	return fmt.Sprintf("/data/%s/%s", member, escapeJSONPointer(fe.Field))
}

// escapeJSONPointer escapes special characters per RFC 6901
func escapeJSONPointer(token string) string {
	// Order matters: escape ~ before /
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}

// ValidateJSONAPIContentType checks if the Content-Type is application/vnd.api+json
// Returns true if valid, writes error response and returns false if invalid
func ValidateJSONAPIContentType(w http.ResponseWriter, r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")

	// Parse media type to check for parameters
	mediaType, params, err := mime.ParseMediaType(contentType)

	if err != nil || mediaType != JSONAPIMediaType {
		RenderError(w, http.StatusUnsupportedMediaType,
			fmt.Errorf("Content-Type must be %s", JSONAPIMediaType))
		return false
	}

	// JSON:API forbids media type parameters on Content-Type
	if len(params) > 0 {
		RenderError(w, http.StatusUnsupportedMediaType,
			fmt.Errorf("Content-Type must be %s without media type parameters", JSONAPIMediaType))
		return false
	}

	return true
}
