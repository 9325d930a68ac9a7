package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dosanma1/forge-sub000/internal/catalog"
	"github.com/dosanma1/forge-sub000/internal/web/cache"
	"github.com/dosanma1/forge-sub000/internal/web/middleware"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
	"github.com/dosanma1/forge-sub000/pkg/web/response"
)

var (
	errUnknownType      = errors.New("unknown resource type")
	errNotFound         = errors.New("resource not found")
	errRouteNotFound    = errors.New("no route matches the request path")
	errMethodNotAllowed = errors.New("the read API only serves GET and HEAD")
)

// HealthPath is answered without logging
const HealthPath = "/health"

// API serves catalog resources as server-read JSON:API documents
type API struct {
	store  *catalog.Store
	docs   *cache.DocumentCache
	logger *zap.Logger
}

// NewAPI creates the read API over store, encoding through docs
func NewAPI(store *catalog.Store, docs *cache.DocumentCache, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{store: store, docs: docs, logger: logger}
}

// Routes returns the API router with its middleware stack
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(a.logger),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:    a.logger,
			SkipPaths: []string{HealthPath},
		}),
		chimw.CleanPath,
		chimw.GetHead,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.RenderError(w, http.StatusNotFound, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET, HEAD")
		response.RenderError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	r.Get(HealthPath, a.health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Negotiate())
		r.Get("/{type}", a.list)
		r.Get("/{type}/{id}", a.show)
	})
	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"resources": a.store.Count(),
	})
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if !a.knownType(typ) {
		response.RenderError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errUnknownType, typ))
		return
	}

	body, err := a.docs.EncodeCollection(r.Context(), typ, a.store.List(typ), jsonapi.ForRead())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, body)
}

func (a *API) show(w http.ResponseWriter, r *http.Request) {
	typ, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if !a.knownType(typ) {
		response.RenderError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errUnknownType, typ))
		return
	}

	res, ok := a.store.Get(typ, id)
	if !ok {
		response.RenderError(w, http.StatusNotFound, fmt.Errorf("%w: %s/%s", errNotFound, typ, id))
		return
	}

	body, err := a.docs.Encode(r.Context(), res, jsonapi.ForRead())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, body)
}

// render writes body with a strong ETag, answering 304 to a matching If-None-Match
func (a *API) render(w http.ResponseWriter, r *http.Request, body []byte) {
	etag := cache.ETag(body)
	w.Header().Set("ETag", etag)
	if cache.NotModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if err := response.RenderRaw(w, http.StatusOK, body); err != nil {
		a.logger.Debug("write failed", zap.Error(err))
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("encoding failed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	response.RenderError(w, http.StatusInternalServerError, err)
}

func (a *API) knownType(typ string) bool {
	_, ok := a.docs.Encoder().Registry().ModelType(typ)
	return ok
}
