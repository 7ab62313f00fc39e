package scoring

import (
	"math"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

const (
	// BasePoints is the fixed award for any accepted submission. It is added
	// by the submission pipeline, not by QualityPoints.
	BasePoints = 10

	// maxQualityPoints caps the quality bonus.
	maxQualityPoints = 25

	// qualityFloor is the mean quality below which no bonus is paid.
	qualityFloor = 0.6
)

// QualityScore returns the mean of specificity, actionability, and novelty.
// Sentiment deliberately does not contribute: critical feedback is as
// valuable as praise.
func QualityScore(m domain.QualityMetrics) float64 {
	return (m.Specificity + m.Actionability + m.Novelty) / 3
}

// QualityPoints converts quality metrics into a bonus point amount. A pure
// function: mean quality below 0.6 earns nothing; otherwise the bonus is
// round(mean*25), clamped to [0,25].
func QualityPoints(m domain.QualityMetrics) int {
	q := QualityScore(m)
	if q < qualityFloor {
		return 0
	}
	bonus := int(math.Round(q * maxQualityPoints))
	if bonus < 0 {
		return 0
	}
	if bonus > maxQualityPoints {
		return maxQualityPoints
	}
	return bonus
}
