package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/config"
	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/repositories"
	"github.com/rohits-web03/otadash/internal/storage"
	"github.com/rohits-web03/otadash/internal/summary"
	"github.com/rohits-web03/otadash/internal/views"
)

// Summarizer produces a short summary of a collection digest.
type Summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (summary.Result, error)
}

// Deps are the services the handlers work with.
type Deps struct {
	Config   *config.Config
	Repos    *repositories.Repos
	Accounts *auth.Accounts
	Sessions *auth.Manager
	Explorer *explorer.Explorer
	Summary  Summarizer
	Storage  *storage.Browser
	Boards   *views.Registry
	Cache    repositories.Cache
	OAuth    *oauth2.Config
}

// Handler serves the dashboard API.
type Handler struct {
	Deps
	log *logrus.Entry
}

func New(d Deps) *Handler {
	return &Handler{Deps: d, log: logs.WithComponent("api")}
}

// decodeJSON reads a JSON body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.NewValidationError("Invalid input", err)
	}
	return nil
}

// session returns the session injected by the auth middleware.
func session(r *http.Request) (*auth.Session, error) {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, apperr.NewAuthError("Unauthorized", nil)
	}
	return s, nil
}

// parseQuery reads the filter, sort, order and page parameters of list endpoints.
func parseQuery(r *http.Request) (views.Query, error) {
	q := r.URL.Query()
	out := views.Query{
		Filter:  q.Get("filter"),
		SortKey: q.Get("sort"),
		Order:   views.Order(q.Get("order")),
		Page:    1,
	}
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return views.Query{}, apperr.NewValidationError("page must be a positive integer", err)
		}
		out.Page = n
	}
	return out, nil
}
