package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/models"
)

// Exporter writes full reports to object storage for their owners.
type Exporter struct {
	objects core.ObjectClient
	bucket  string
	log     *logger.Logger
}

// NewExporter returns a disabled exporter when objects is nil.
func NewExporter(objects core.ObjectClient, bucket string, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{objects: objects, bucket: bucket, log: log}
}

func (e *Exporter) Enabled() bool {
	return e != nil && e.objects != nil && e.bucket != ""
}

// Export uploads report as JSON and returns the object URL.
func (e *Exporter) Export(ctx context.Context, report *models.AnalysisResult, user *models.User) (string, error) {
	if !e.Enabled() {
		return "", ErrExportDisabled
	}
	if user == nil {
		return "", ErrNoActiveUser
	}
	if !CanMutate(report, user) {
		return "", ErrForbidden
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	url, err := e.objects.UploadFile(ctx, e.bucket, exportKey(report), bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("export report %s: %w", report.ID, err)
	}
	e.log.Info("report exported", "report_id", report.ID, "user_id", user.ID)
	return url, nil
}

func exportKey(r *models.AnalysisResult) string {
	return path.Join("reports", r.UserID, r.ID+".json")
}
