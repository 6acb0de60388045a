package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/insightcart/internal/services"
)

// SavedProductHandler serves the caller's product inventory.
type SavedProductHandler struct {
	analyses *AnalysisHandler
}

func NewSavedProductHandler(analyses *AnalysisHandler) *SavedProductHandler {
	return &SavedProductHandler{analyses: analyses}
}

func (h *SavedProductHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	products, err := sess.SavedProducts()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *SavedProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var draft services.SavedProductDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	p, err := sess.AddSavedProduct(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *SavedProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteSavedProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze submits a saved product as a new audit.
func (h *SavedProductHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	res, err := sess.AnalyzeSaved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, services.NewReportView(res, sess.User(), h.analyses.viewOptions(false)))
}
