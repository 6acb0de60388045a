package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/insightcart/internal/api/middlewares"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/models"
	"github.com/markdave123-py/insightcart/internal/services"
)

// AnalysisHandler serves audits and the per-report community actions.
type AnalysisHandler struct {
	registry     *services.Registry
	shareBaseURL string
	log          *logger.Logger
}

func NewAnalysisHandler(registry *services.Registry, shareBaseURL string, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{registry: registry, shareBaseURL: shareBaseURL, log: log}
}

func (h *AnalysisHandler) viewOptions(fromFeed bool) services.ReportViewOptions {
	return services.ReportViewOptions{
		FromFeed:      fromFeed,
		ShareBaseURL:  h.shareBaseURL,
		ExportEnabled: h.registry.Exporter().Enabled(),
	}
}

// Submit runs a new audit for the caller.
func (h *AnalysisHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var input models.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := sess.Submit(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, services.NewReportView(res, sess.User(), h.viewOptions(false)))
}

// History lists the caller's own reports.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	hv, err := sess.History()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hv)
}

// Get resolves a report id, also the target of share links. Private reports
// are only returned to their owner.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fromFeed := r.URL.Query().Get("from") == "feed"

	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		rep, err := h.registry.Workspace().Report(id)
		if err != nil || !rep.IsPublic {
			writeError(w, services.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, services.NewReportView(rep, nil, h.viewOptions(fromFeed)))
		return
	}

	if _, err := sess.Select(id, fromFeed); err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.Displayed(h.viewOptions(fromFeed))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type listingRequest struct {
	Public bool `json:"public"`
}

func (h *AnalysisHandler) SetListing(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req listingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if sess.User() == nil {
		writeError(w, services.ErrNoActiveUser)
		return
	}
	if _, err := sess.Select(chi.URLParam(r, "id"), false); err != nil {
		writeError(w, err)
		return
	}
	res, err := sess.ToggleListing(r.Context(), req.Public)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services.NewReportView(res, sess.User(), h.viewOptions(false)))
}

type ratingRequest struct {
	Score int `json:"score"`
}

func (h *AnalysisHandler) Rate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	res, err := sess.Rate(r.Context(), chi.URLParam(r, "id"), req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services.NewReportView(res, sess.User(), h.viewOptions(true)))
}

type suggestionRequest struct {
	Text string `json:"text"`
}

func (h *AnalysisHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	res, err := sess.Suggest(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, services.NewReportView(res, sess.User(), h.viewOptions(true)))
}

// Export uploads the caller's report to object storage.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	url, err := sess.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Warn("export failed", "report_id", chi.URLParam(r, "id"), "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
