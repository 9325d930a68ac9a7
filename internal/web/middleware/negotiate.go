package middleware

import (
	"errors"
	"net/http"

	"github.com/dosanma1/forge-sub000/pkg/web/response"
)

var errNotAcceptable = errors.New("Accept must allow " + response.JSONAPIMediaType + " without media type parameters")

// Negotiate enforces JSON:API content negotiation.
// A request whose Accept header lists the JSON:API media type only with
// parameters is rejected with 406, and a request body must be sent as
// the bare JSON:API media type or it is rejected with 415.
func Negotiate() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !response.IsJSONAPI(r) {
				response.RenderError(w, http.StatusNotAcceptable, errNotAcceptable)
				return
			}
			if hasBody(r) && !response.ValidateJSONAPIContentType(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	return r.ContentLength > 0 || len(r.TransferEncoding) > 0
}
