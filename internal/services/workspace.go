package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
)

const (
	MinRating        = 1
	MaxRating        = 10
	MaxSuggestionLen = 2000
)

// Analyzer produces the audit fields of a report.
type Analyzer interface {
	Analyze(ctx context.Context, input models.ProductInput) (*models.AnalysisResult, error)
}

// Repository is the persistence the workspace and sessions write through to.
type Repository interface {
	LoadUser(ctx context.Context, sessionID string) (*models.User, error)
	SaveUser(ctx context.Context, sessionID string, u *models.User) error
	ClearUser(ctx context.Context, sessionID string) error
	LoadHistory(ctx context.Context) ([]*models.AnalysisResult, error)
	SaveHistory(ctx context.Context, history []*models.AnalysisResult) error
	LoadSavedProducts(ctx context.Context) ([]*models.SavedProduct, error)
	SaveSavedProducts(ctx context.Context, products []*models.SavedProduct) error
}

// SavedProductDraft is the user-supplied part of a SavedProduct.
type SavedProductDraft struct {
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Workspace owns the global report history and saved products. Every
// mutation runs under one lock and is persisted before it becomes visible;
// a failed write leaves memory untouched.
type Workspace struct {
	mu       sync.RWMutex
	history  []*models.AnalysisResult
	products []*models.SavedProduct

	repo     Repository
	analyzer Analyzer
	log      *logger.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

type WorkspaceOption func(*Workspace)

func WithWorkspaceLogger(l *logger.Logger) WorkspaceOption {
	return func(w *Workspace) { w.log = l }
}

func WithWorkspaceMetrics(m *metrics.Recorder) WorkspaceOption {
	return func(w *Workspace) { w.metrics = m }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(w *Workspace) { w.now = now }
}

func NewWorkspace(repo Repository, analyzer Analyzer, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		repo:     repo,
		analyzer: analyzer,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Load replaces the in-memory lists with what the repository holds.
func (w *Workspace) Load(ctx context.Context) error {
	history, err := w.repo.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	products, err := w.repo.LoadSavedProducts(ctx)
	if err != nil {
		return fmt.Errorf("load saved products: %w", err)
	}

	w.mu.Lock()
	w.history = history
	w.products = products
	w.mu.Unlock()

	w.log.Info("workspace loaded", "reports", len(history), "saved_products", len(products))
	return nil
}

// Submit runs an audit for user and prepends the finished report. The model
// call happens outside the lock, so concurrent submissions land in
// completion order.
func (w *Workspace) Submit(ctx context.Context, user *models.User, input models.ProductInput) (*models.AnalysisResult, error) {
	if user == nil {
		return nil, ErrNoActiveUser
	}
	if strings.TrimSpace(input.Name) == "" && strings.TrimSpace(input.ProductLink) == "" {
		return nil, ErrInvalidInput
	}

	res, err := w.analyzer.Analyze(ctx, input)
	if err != nil {
		w.metrics.ObserveMutation("submit", err)
		return nil, err
	}

	res.ID = uuid.NewString()
	res.UserID = user.ID
	res.UserName = user.Name
	res.Timestamp = w.now().UnixMilli()
	res.IsPublic = false
	res.Ratings = []models.Rating{}
	res.Suggestions = []models.Suggestion{}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]*models.AnalysisResult, 0, len(w.history)+1)
	next = append(next, res)
	next = append(next, w.history...)
	if err := w.repo.SaveHistory(ctx, next); err != nil {
		w.metrics.ObserveMutation("submit", err)
		return nil, fmt.Errorf("persist history: %w", err)
	}
	w.history = next

	w.metrics.ObserveMutation("submit", nil)
	w.log.Info("report created", "report_id", res.ID, "user_id", user.ID, "mode", res.SelectedMode)
	return res.Clone(), nil
}

// SetListing publishes or unpublishes a report. Owner only.
func (w *Workspace) SetListing(ctx context.Context, user *models.User, reportID string, public bool) (*models.AnalysisResult, error) {
	return w.mutateReport(ctx, "listing", user, reportID, func(r *models.AnalysisResult) error {
		if !CanMutate(r, user) {
			return ErrForbidden
		}
		r.IsPublic = public
		return nil
	})
}

// Rate stores user's score, replacing any earlier score by the same user.
func (w *Workspace) Rate(ctx context.Context, user *models.User, reportID string, score int) (*models.AnalysisResult, error) {
	if score < MinRating || score > MaxRating {
		w.metrics.ObserveMutation("rate", ErrInvalidRating)
		return nil, ErrInvalidRating
	}
	return w.mutateReport(ctx, "rate", user, reportID, func(r *models.AnalysisResult) error {
		if !canSee(r, user) {
			return ErrNotFound
		}
		for i := range r.Ratings {
			if r.Ratings[i].UserID == user.ID {
				r.Ratings[i].Score = score
				return nil
			}
		}
		r.Ratings = append(r.Ratings, models.Rating{UserID: user.ID, Score: score})
		return nil
	})
}

// Suggest appends a comment to a report.
func (w *Workspace) Suggest(ctx context.Context, user *models.User, reportID, text string) (*models.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > MaxSuggestionLen {
		w.metrics.ObserveMutation("suggest", ErrInvalidSuggestion)
		return nil, ErrInvalidSuggestion
	}
	return w.mutateReport(ctx, "suggest", user, reportID, func(r *models.AnalysisResult) error {
		if !canSee(r, user) {
			return ErrNotFound
		}
		r.Suggestions = append(r.Suggestions, models.Suggestion{
			UserID:    user.ID,
			UserName:  user.Name,
			Text:      text,
			Timestamp: w.now().UnixMilli(),
		})
		return nil
	})
}

func (w *Workspace) mutateReport(ctx context.Context, op string, user *models.User, reportID string, apply func(*models.AnalysisResult) error) (*models.AnalysisResult, error) {
	if user == nil {
		return nil, ErrNoActiveUser
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.reportIndex(reportID)
	if i < 0 {
		w.metrics.ObserveMutation(op, ErrNotFound)
		return nil, ErrNotFound
	}

	updated := w.history[i].Clone()
	if err := apply(updated); err != nil {
		w.metrics.ObserveMutation(op, err)
		return nil, err
	}

	next := append([]*models.AnalysisResult(nil), w.history...)
	next[i] = updated
	if err := w.repo.SaveHistory(ctx, next); err != nil {
		w.metrics.ObserveMutation(op, err)
		return nil, fmt.Errorf("persist history: %w", err)
	}
	w.history = next

	w.metrics.ObserveMutation(op, nil)
	w.log.Debug("report updated", "op", op, "report_id", reportID, "user_id", user.ID)
	return updated.Clone(), nil
}

func (w *Workspace) reportIndex(id string) int {
	for i, r := range w.history {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// AddSavedProduct prepends a product to user's inventory.
func (w *Workspace) AddSavedProduct(ctx context.Context, user *models.User, draft SavedProductDraft) (*models.SavedProduct, error) {
	if user == nil {
		return nil, ErrNoActiveUser
	}
	name := strings.TrimSpace(draft.Name)
	desc := strings.TrimSpace(draft.Description)
	if name == "" || desc == "" {
		w.metrics.ObserveMutation("save_product", ErrInvalidProduct)
		return nil, ErrInvalidProduct
	}

	p := &models.SavedProduct{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        name,
		Link:        strings.TrimSpace(draft.Link),
		Description: desc,
		Category:    strings.TrimSpace(draft.Category),
		Timestamp:   w.now().UnixMilli(),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]*models.SavedProduct, 0, len(w.products)+1)
	next = append(next, p)
	next = append(next, w.products...)
	if err := w.repo.SaveSavedProducts(ctx, next); err != nil {
		w.metrics.ObserveMutation("save_product", err)
		return nil, fmt.Errorf("persist saved products: %w", err)
	}
	w.products = next

	w.metrics.ObserveMutation("save_product", nil)
	cp := *p
	return &cp, nil
}

// DeleteSavedProduct removes one of user's products.
func (w *Workspace) DeleteSavedProduct(ctx context.Context, user *models.User, productID string) error {
	if user == nil {
		return ErrNoActiveUser
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	idx := -1
	for i, p := range w.products {
		if p.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.metrics.ObserveMutation("delete_product", ErrNotFound)
		return ErrNotFound
	}
	if w.products[idx].UserID != user.ID {
		w.metrics.ObserveMutation("delete_product", ErrForbidden)
		return ErrForbidden
	}

	next := make([]*models.SavedProduct, 0, len(w.products)-1)
	next = append(next, w.products[:idx]...)
	next = append(next, w.products[idx+1:]...)
	if err := w.repo.SaveSavedProducts(ctx, next); err != nil {
		w.metrics.ObserveMutation("delete_product", err)
		return fmt.Errorf("persist saved products: %w", err)
	}
	w.products = next

	w.metrics.ObserveMutation("delete_product", nil)
	return nil
}

// Report returns a copy of the report with id, regardless of visibility.
func (w *Workspace) Report(id string) (*models.AnalysisResult, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i := w.reportIndex(id); i >= 0 {
		return w.history[i].Clone(), nil
	}
	return nil, ErrNotFound
}

// SavedProduct returns a copy of the product with id.
func (w *Workspace) SavedProduct(id string) (*models.SavedProduct, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// UserHistory lists userID's reports, newest first.
func (w *Workspace) UserHistory(userID string) []*models.AnalysisResult {
	out := w.filterReports(func(r *models.AnalysisResult) bool { return r.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// PublicListings lists every report with isPublic set, in history order.
func (w *Workspace) PublicListings() []*models.AnalysisResult {
	return w.filterReports(func(r *models.AnalysisResult) bool { return r.IsPublic })
}

// Reports returns the whole shared history in stored order.
func (w *Workspace) Reports() []*models.AnalysisResult {
	return w.filterReports(func(*models.AnalysisResult) bool { return true })
}

func (w *Workspace) filterReports(keep func(*models.AnalysisResult) bool) []*models.AnalysisResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := []*models.AnalysisResult{}
	for _, r := range w.history {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// UserProducts lists userID's saved products, newest first.
func (w *Workspace) UserProducts(userID string) []*models.SavedProduct {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := []*models.SavedProduct{}
	for _, p := range w.products {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}
