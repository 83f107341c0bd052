package model

// Confidence thresholds used when accepting a rule match.
const (
	// ConfidenceFloor is the minimum score for a match to be returned at all.
	ConfidenceFloor = 0.5
	// AutoClassifyThreshold marks a result as safe to apply without review.
	AutoClassifyThreshold = 0.6
	// HighConfidenceThreshold marks a result as high confidence.
	HighConfidenceThreshold = 0.9
)

// ConfidenceLevel buckets a confidence score.
type ConfidenceLevel string

// Confidence level constants.
const (
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceHigh   ConfidenceLevel = "HIGH"
)

// ClassificationResult is the best rule match for a transaction.
type ClassificationResult struct {
	MatchingRule     *ClassificationRule
	AccountCode      string
	AccountName      string
	ConfidenceScore  float64
	IsAutoClassified bool
}

// ConfidenceLevel returns HIGH at or above 0.9, MEDIUM at or above 0.6, LOW otherwise.
func (r *ClassificationResult) ConfidenceLevel() ConfidenceLevel {
	switch {
	case r.ConfidenceScore >= HighConfidenceThreshold:
		return ConfidenceHigh
	case r.ConfidenceScore >= AutoClassifyThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// NeedsConfirmation reports whether a person should review the result before it is applied.
func (r *ClassificationResult) NeedsConfirmation() bool {
	return !r.IsAutoClassified
}
