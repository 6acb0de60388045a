package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/models"
)

// SessionState is the externally visible state of one client.
type SessionState struct {
	SessionID        string       `json:"sessionId"`
	User             *models.User `json:"user"`
	View             ViewState    `json:"view"`
	SelectedReportID string       `json:"selectedReportId,omitempty"`
	CompareSelection []string     `json:"compareSelection"`
	Error            string       `json:"error,omitempty"`
}

// Session is one client's controller: who is logged in, which view is
// showing, which report is displayed and what is staged for comparison.
// Shared data lives in the Workspace.
type Session struct {
	mu sync.Mutex

	id       string
	ws       *Workspace
	repo     Repository
	exporter *Exporter
	log      *logger.Logger
	now      func() time.Time

	user      *models.User
	view      ViewState
	selected  string
	fromFeed  bool
	compare   []string
	lastError string
}

func NewSession(id string, ws *Workspace, repo Repository, exporter *Exporter, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		id:       id,
		ws:       ws,
		repo:     repo,
		exporter: exporter,
		log:      log.With("session_id", id),
		now:      time.Now,
		view:     ViewAuth,
		compare:  []string{},
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		SessionID:        s.id,
		User:             copyUser(s.user),
		View:             s.view,
		SelectedReportID: s.selected,
		CompareSelection: append([]string{}, s.compare...),
		Error:            s.lastError,
	}
}

// Restore picks up a user persisted for this session. The session starts on
// home when one exists and on auth otherwise.
func (s *Session) Restore(ctx context.Context) error {
	u, err := s.repo.LoadUser(ctx, s.id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	if u != nil {
		s.view = ViewHome
	} else {
		s.view = ViewAuth
	}
	return nil
}

// Login fabricates a user, defaulting blank fields.
func (s *Session) Login(ctx context.Context, name, email string) (*models.User, error) {
	u := NewUser(name, email, s.now())
	if err := s.repo.SaveUser(ctx, s.id, u); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.view = ViewHome
	s.selected, s.fromFeed = "", false
	s.compare = []string{}
	s.lastError = ""

	s.log.Info("user logged in", "user_id", u.ID)
	return copyUser(u), nil
}

// Logout forgets the user. Reports and saved products are left alone.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.repo.ClearUser(ctx, s.id); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.view = ViewAuth
	s.selected, s.fromFeed = "", false
	s.compare = []string{}
	s.lastError = ""
	return nil
}

// Submit runs an audit. The session shows loading while it runs, then the
// new report, or the form with a failure message.
func (s *Session) Submit(ctx context.Context, input models.ProductInput) (*models.AnalysisResult, error) {
	s.mu.Lock()
	user := copyUser(s.user)
	if user == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveUser
	}
	s.view = ViewLoading
	s.lastError = ""
	s.mu.Unlock()

	res, err := s.ws.Submit(ctx, user, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != user.ID {
		// logged out or switched user while the audit ran
		return res, err
	}
	if err != nil {
		s.view = ViewForm
		if errors.Is(err, ErrValidation) {
			s.lastError = err.Error()
		} else {
			s.lastError = AuditFailedMessage
		}
		s.log.Warn("audit submission failed", "error", err)
		return nil, err
	}
	s.view = ViewResult
	s.selected, s.fromFeed = res.ID, false
	return res, nil
}

// AnalyzeSaved submits one of the user's saved products.
func (s *Session) AnalyzeSaved(ctx context.Context, productID string) (*models.AnalysisResult, error) {
	user := s.User()
	if user == nil {
		return nil, ErrNoActiveUser
	}
	p, err := s.ws.SavedProduct(productID)
	if err != nil {
		return nil, err
	}
	if p.UserID != user.ID {
		return nil, ErrForbidden
	}
	return s.Submit(ctx, models.ProductInput{
		Name:        p.Name,
		ProductLink: p.Link,
		Description: p.Description,
		Category:    p.Category,
	})
}

// Select displays a report. Private reports of other users are reported as
// missing.
func (s *Session) Select(reportID string, fromFeed bool) (*models.AnalysisResult, error) {
	r, err := s.ws.Report(reportID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !canSee(r, s.user) {
		return nil, ErrNotFound
	}
	s.selected, s.fromFeed = r.ID, fromFeed
	s.view = ViewResult
	return r, nil
}

// Displayed returns the selected report as this session's user sees it.
func (s *Session) Displayed(opts ReportViewOptions) (*ReportView, error) {
	s.mu.Lock()
	id, fromFeed, user := s.selected, s.fromFeed, copyUser(s.user)
	s.mu.Unlock()
	if id == "" {
		return nil, ErrNotFound
	}

	r, err := s.ws.Report(id)
	if err != nil {
		return nil, err
	}
	opts.FromFeed = opts.FromFeed || fromFeed
	opts.ExportEnabled = opts.ExportEnabled && s.exporter.Enabled()
	v := NewReportView(r, user, opts)
	return &v, nil
}

// ToggleListing sets the public flag of the displayed report.
func (s *Session) ToggleListing(ctx context.Context, public bool) (*models.AnalysisResult, error) {
	s.mu.Lock()
	id, user := s.selected, copyUser(s.user)
	s.mu.Unlock()
	if user == nil {
		return nil, ErrNoActiveUser
	}
	if id == "" {
		return nil, ErrNotFound
	}
	return s.ws.SetListing(ctx, user, id, public)
}

func (s *Session) Rate(ctx context.Context, reportID string, score int) (*models.AnalysisResult, error) {
	return s.ws.Rate(ctx, s.User(), reportID, score)
}

func (s *Session) Suggest(ctx context.Context, reportID, text string) (*models.AnalysisResult, error) {
	return s.ws.Suggest(ctx, s.User(), reportID, text)
}

func (s *Session) AddSavedProduct(ctx context.Context, draft SavedProductDraft) (*models.SavedProduct, error) {
	return s.ws.AddSavedProduct(ctx, s.User(), draft)
}

func (s *Session) DeleteSavedProduct(ctx context.Context, productID string) error {
	return s.ws.DeleteSavedProduct(ctx, s.User(), productID)
}

func (s *Session) SavedProducts() ([]*models.SavedProduct, error) {
	user := s.User()
	if user == nil {
		return nil, ErrNoActiveUser
	}
	return s.ws.UserProducts(user.ID), nil
}

// Export uploads one of the user's reports.
func (s *Session) Export(ctx context.Context, reportID string) (string, error) {
	user := s.User()
	if user == nil {
		return "", ErrNoActiveUser
	}
	r, err := s.ws.Report(reportID)
	if err != nil {
		return "", err
	}
	if !canSee(r, user) {
		return "", ErrNotFound
	}
	return s.exporter.Export(ctx, r, user)
}

// History lists the user's reports with the comparison selection.
func (s *Session) History() (HistoryView, error) {
	s.mu.Lock()
	user, sel := copyUser(s.user), append([]string{}, s.compare...)
	s.mu.Unlock()
	if user == nil {
		return HistoryView{}, ErrNoActiveUser
	}
	return BuildHistory(s.ws.UserHistory(user.ID), sel), nil
}

// ToggleCompare stages or unstages one of the user's reports. A third
// report is ignored.
func (s *Session) ToggleCompare(reportID string) ([]string, error) {
	r, err := s.ws.Report(reportID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrNoActiveUser
	}
	if !CanViewFull(r, s.user) {
		return nil, ErrForbidden
	}
	s.compare = toggleSelection(s.compare, reportID)
	return append([]string{}, s.compare...), nil
}

// Compare enters the comparison view. It needs exactly two staged reports.
func (s *Session) Compare() (*Comparison, error) {
	s.mu.Lock()
	sel := append([]string{}, s.compare...)
	hasUser := s.user != nil
	s.mu.Unlock()
	if !hasUser {
		return nil, ErrNoActiveUser
	}
	if len(sel) != MaxCompare {
		return nil, ErrCompareSelection
	}

	p1, err := s.ws.Report(sel[0])
	if err != nil {
		return nil, err
	}
	p2, err := s.ws.Report(sel[1])
	if err != nil {
		return nil, err
	}
	c := BuildComparison(p1, p2)

	s.mu.Lock()
	s.view = ViewCompareTwo
	s.mu.Unlock()
	return &c, nil
}

// Navigate moves to view. Without a user every view resolves to auth.
func (s *Session) Navigate(view ViewState) (ViewState, error) {
	if view == ViewLoading {
		return "", ErrInvalidView
	}
	if _, err := ParseView(string(view)); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.user == nil:
		view = ViewAuth
	case view == ViewAuth:
		view = ViewHome
	case view == ViewResult && s.selected == "":
		view = ViewHome
	case view == ViewCompareTwo && len(s.compare) != MaxCompare:
		view = ViewHistory
	}
	if view == ViewForm || view == ViewHome {
		s.lastError = ""
	}
	s.view = view
	return view, nil
}

// Back leaves the current view. The comparison returns to history and keeps
// its selection.
func (s *Session) Back() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.user == nil:
		s.view = ViewAuth
	case s.view == ViewCompareTwo:
		s.view = ViewHistory
	default:
		s.view = ViewHome
	}
	return s.view
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
