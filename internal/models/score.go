package models

// ScoreResult is the judge's verdict on a transcript.
type ScoreResult struct {
	// Score ranges from 0 (inappropriate or unethical) to 100 (excellent).
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	// ToImprove is nil only when the operator's replies were judged flawless.
	ToImprove *string `json:"toImprove"`
}

// Perfect reports whether the judge found nothing to improve.
func (r *ScoreResult) Perfect() bool {
	return r.ToImprove == nil
}
