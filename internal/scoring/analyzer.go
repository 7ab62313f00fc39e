// Package scoring derives quality metrics from free-text feedback and turns
// them into bonus points. The primary path delegates to an external scoring
// dependency with a bounded timeout; when that dependency errors, times out,
// or is not configured, a fully deterministic local heuristic takes over, so
// analysis never fails the submission pipeline.
package scoring

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// Scorer is the external quality-scoring dependency. Implementations must
// honor context cancellation; scores outside the documented ranges are
// clamped by the analyzer.
type Scorer interface {
	Score(ctx context.Context, content string) (domain.QualityMetrics, error)
}

// Analyzer produces QualityMetrics for feedback content. The zero value is
// usable and always takes the local heuristic path.
type Analyzer struct {
	// Scorer is the remote dependency; nil disables the remote path.
	Scorer Scorer
	// Timeout bounds the remote call. Zero means no extra bound beyond the
	// caller's context.
	Timeout time.Duration
}

// Analyze returns quality metrics for content. It never returns an error:
// empty content yields valid (low) metrics, remote failures fall back to the
// deterministic heuristic, and out-of-range remote scores are clamped.
func (a *Analyzer) Analyze(ctx context.Context, content string) domain.QualityMetrics {
	if a.Scorer != nil {
		sctx := ctx
		if a.Timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(ctx, a.Timeout)
			defer cancel()
		}
		m, err := a.Scorer.Score(sctx, content)
		if err == nil {
			remoteScores.Inc()
			return clampMetrics(m)
		}
		fallbackScores.Inc()
		log.Debug().Err(err).Msg("remote scoring unavailable, using local heuristic")
	}
	return HeuristicMetrics(content)
}

// Neutral is the metrics value of last resort: middling quality, flat
// sentiment. The heuristic is pure and always succeeds, so this is only
// reachable through clamping of non-finite remote scores.
func Neutral() domain.QualityMetrics {
	return domain.QualityMetrics{Specificity: 0.5, Actionability: 0.5, Novelty: 0.5, Sentiment: 0}
}

// positiveLexicon and negativeLexicon are the fixed word lists the sentiment
// heuristic counts against.
var (
	positiveLexicon = lexicon("good", "great", "excellent", "amazing", "love", "like", "helpful", "useful", "impressive")
	negativeLexicon = lexicon("bad", "poor", "terrible", "awful", "hate", "dislike", "confusing", "difficult", "frustrating")
)

// actionabilityMarkers are matched as plain substrings of the lowercased
// content, not as tokens.
var actionabilityMarkers = []string{"should", "could", "would"}

var wordRE = regexp.MustCompile(`\w+`)

// HeuristicMetrics is the deterministic local fallback:
//
//	specificity   = min(0.5 + wordCount/100, 0.9)
//	actionability = 0.7 if content mentions should/could/would, else 0.5
//	novelty       = 0.6 (the heuristic has no basis to estimate novelty)
//	sentiment     = (positive − negative) / max(1, positive + negative)
func HeuristicMetrics(content string) domain.QualityMetrics {
	lower := strings.ToLower(content)
	tokens := wordRE.FindAllString(lower, -1)

	var positive, negative int
	for _, tok := range tokens {
		if _, ok := positiveLexicon[tok]; ok {
			positive++
		}
		if _, ok := negativeLexicon[tok]; ok {
			negative++
		}
	}

	actionability := 0.5
	for _, marker := range actionabilityMarkers {
		if strings.Contains(lower, marker) {
			actionability = 0.7
			break
		}
	}

	return domain.QualityMetrics{
		Specificity:   math.Min(0.5+float64(len(tokens))/100, 0.9),
		Actionability: actionability,
		Novelty:       0.6,
		Sentiment:     float64(positive-negative) / math.Max(1, float64(positive+negative)),
	}
}

// clampMetrics forces remote scores into the documented ranges. Non-finite
// values degrade to the neutral default for that field.
func clampMetrics(m domain.QualityMetrics) domain.QualityMetrics {
	n := Neutral()
	m.Specificity = clamp(m.Specificity, 0, 1, n.Specificity)
	m.Actionability = clamp(m.Actionability, 0, 1, n.Actionability)
	m.Novelty = clamp(m.Novelty, 0, 1, n.Novelty)
	m.Sentiment = clamp(m.Sentiment, -1, 1, n.Sentiment)
	return m
}

func clamp(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

func lexicon(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
