package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
)

// Persisted keys. The user slot is suffixed with the session id.
const (
	KeyUser          = "insightcart_user"
	KeyHistory       = "insightcart_history_global"
	KeySavedProducts = "insightcart_saved_products_global"
)

// UserKey is the per-session slot holding the logged-in user.
func UserKey(sessionID string) string {
	if sessionID == "" {
		return KeyUser
	}
	return KeyUser + ":" + sessionID
}

// Repository stores the domain lists as whole JSON blobs. Missing keys load
// as zero values; decode and store failures are returned.
type Repository struct {
	store   core.Store
	metrics *metrics.Recorder
}

func NewRepository(store core.Store, m *metrics.Recorder) *Repository {
	return &Repository{store: store, metrics: m}
}

func (r *Repository) LoadUser(ctx context.Context, sessionID string) (*models.User, error) {
	var u models.User
	found, err := r.load(ctx, UserKey(sessionID), &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) SaveUser(ctx context.Context, sessionID string, u *models.User) error {
	if u == nil {
		return r.ClearUser(ctx, sessionID)
	}
	return r.save(ctx, UserKey(sessionID), u)
}

func (r *Repository) ClearUser(ctx context.Context, sessionID string) error {
	key := UserKey(sessionID)
	if err := r.store.Delete(ctx, key); err != nil {
		r.metrics.ObserveStoreError(KeyUser)
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

func (r *Repository) LoadHistory(ctx context.Context) ([]*models.AnalysisResult, error) {
	var out []*models.AnalysisResult
	if _, err := r.load(ctx, KeyHistory, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SaveHistory(ctx context.Context, history []*models.AnalysisResult) error {
	if history == nil {
		history = []*models.AnalysisResult{}
	}
	return r.save(ctx, KeyHistory, history)
}

func (r *Repository) LoadSavedProducts(ctx context.Context) ([]*models.SavedProduct, error) {
	var out []*models.SavedProduct
	if _, err := r.load(ctx, KeySavedProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SaveSavedProducts(ctx context.Context, products []*models.SavedProduct) error {
	if products == nil {
		products = []*models.SavedProduct{}
	}
	return r.save(ctx, KeySavedProducts, products)
}

func (r *Repository) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.metrics.ObserveStoreError(metricKey(key))
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.metrics.ObserveStoreError(metricKey(key))
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		r.metrics.ObserveStoreError(metricKey(key))
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// metricKey folds per-session user keys into one label value.
func metricKey(key string) string {
	if strings.HasPrefix(key, KeyUser+":") {
		return KeyUser
	}
	return key
}
