package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/utils"
)

// ExplorerPage godoc
// @Summary Browse a collection
// @Description Collections: users, products, devices. Page size 5.
// @Tags Explorer
// @Produce json
// @Param kind path string true "Collection" Enums(users, products, devices)
// @Param filter query string false "Filter text"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/explorer/{kind} [get]
func (h *Handler) ExplorerPage(w http.ResponseWriter, r *http.Request) {
	kind, err := explorer.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := h.Explorer.Page(r.Context(), kind, q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Collection fetched", page)
}

// ExplorerSummary godoc
// @Summary Summarize a collection for managers
// @Description Returns fewer than 200 words. Results are cached for a while.
// @Tags Explorer
// @Produce json
// @Param kind path string true "Collection" Enums(users, products, devices)
// @Success 200 {object} utils.Payload{data=summary.Result}
// @Failure 503 {object} utils.Payload
// @Router /api/v1/explorer/{kind}/summary [post]
func (h *Handler) ExplorerSummary(w http.ResponseWriter, r *http.Request) {
	kind, err := explorer.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	digest, err := h.Explorer.Digest(r.Context(), kind)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	res, err := h.Summary.Summarize(r.Context(), digest)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Summary generated", res)
}
