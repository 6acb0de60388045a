package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/insightcart/internal/api/middlewares"
	"github.com/markdave123-py/insightcart/internal/models"
	"github.com/markdave123-py/insightcart/internal/services"
)

// MarketHandler serves the public feed, trends and comparisons.
type MarketHandler struct {
	registry *services.Registry
}

func NewMarketHandler(registry *services.Registry) *MarketHandler {
	return &MarketHandler{registry: registry}
}

func viewer(r *http.Request) *models.User {
	if sess, ok := middleware.SessionFrom(r.Context()); ok {
		return sess.User()
	}
	return nil
}

func (h *MarketHandler) Feed(w http.ResponseWriter, r *http.Request) {
	sortBy, err := services.ParseFeedSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	feed := services.BuildFeed(h.registry.Workspace().PublicListings(), viewer(r), sortBy, r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, feed)
}

func (h *MarketHandler) Trending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.BuildTrending(h.registry.Workspace().PublicListings(), viewer(r)))
}

// ToggleCompare stages or unstages a report for comparison.
func (h *MarketHandler) ToggleCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if _, err := sess.ToggleCompare(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	hv, err := sess.History()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hv)
}

func (h *MarketHandler) Compare(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	c, err := sess.Compare()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
