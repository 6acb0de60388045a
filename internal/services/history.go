package services

import (
	"fmt"

	"github.com/markdave123-py/insightcart/internal/models"
)

// MaxCompare is the size of the comparison selection.
const MaxCompare = 2

type HistoryEntry struct {
	ID               string `json:"id"`
	ProductName      string `json:"productName"`
	Timestamp        int64  `json:"timestamp"`
	SelectedMode     string `json:"selectedMode"`
	FailureRiskScore int    `json:"failureRiskScore"`
	ViabilityScore   int    `json:"viabilityScore"`
	IsPublic         bool   `json:"isPublic"`
	Selected         bool   `json:"selected"`
}

type HistoryView struct {
	Entries        []HistoryEntry `json:"entries"`
	Selection      []string       `json:"selection"`
	SelectionLabel string         `json:"selectionLabel"`
	CanCompare     bool           `json:"canCompare"`
}

// BuildHistory renders the user's own reports with the comparison selection.
func BuildHistory(reports []*models.AnalysisResult, selection []string) HistoryView {
	picked := make(map[string]bool, len(selection))
	for _, id := range selection {
		picked[id] = true
	}

	entries := make([]HistoryEntry, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, HistoryEntry{
			ID:               r.ID,
			ProductName:      r.ProductName,
			Timestamp:        r.Timestamp,
			SelectedMode:     r.SelectedMode,
			FailureRiskScore: r.FailureRiskScore,
			ViabilityScore:   r.ViabilityScore(),
			IsPublic:         r.IsPublic,
			Selected:         picked[r.ID],
		})
	}

	sel := append([]string{}, selection...)
	return HistoryView{
		Entries:        entries,
		Selection:      sel,
		SelectionLabel: fmt.Sprintf("%d/%d", len(sel), MaxCompare),
		CanCompare:     len(sel) == MaxCompare,
	}
}

// toggleSelection adds or removes id. A full selection ignores new ids.
func toggleSelection(selection []string, id string) []string {
	for i, s := range selection {
		if s == id {
			out := append([]string{}, selection[:i]...)
			return append(out, selection[i+1:]...)
		}
	}
	if len(selection) >= MaxCompare {
		return selection
	}
	return append(append([]string{}, selection...), id)
}
