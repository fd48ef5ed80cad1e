package models

import "time"

// AnalysisReport is a generated recommendation report for one company
type AnalysisReport struct {
	ID                  string               `json:"id"`
	Symbol              string               `json:"symbol"`
	Provider            string               `json:"provider"`
	Profile             CompanyProfile       `json:"profile"`
	Peers               []PeerCandidate      `json:"peers"`
	Table               *PeerComparisonTable `json:"table,omitempty"`
	Recommendation      string               `json:"recommendation,omitempty"`
	RecommendationError string               `json:"recommendation_error,omitempty"`
	Markdown            string               `json:"markdown"`
	GeneratedAt         time.Time            `json:"generated_at"`
	Path                string               `json:"path,omitempty"` // set once saved
}
