// Package geoscore computes the composite Generative Engine Optimization
// score for an aggregated site audit.
//
// The function is pure and deterministic. Only available signals contribute:
// the weights of missing signals are excluded and the remaining weights
// renormalize, so sparse data is never penalized as if it were a failing
// signal. The weights are empirically chosen; recalibrate against outcome
// data before trusting them as ground truth.
package geoscore

import (
	"math"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// Signal weights. H1 presence only applies when the richer structural
// coverage metric is absent, to avoid double counting.
const (
	weightSchema    = 30.0
	weightStructure = 20.0
	weightAuthor    = 20.0
	weightTone      = 15.0
	weightH1        = 15.0
)

// Signals is the input to Score. A nil pointer marks a signal as unavailable,
// which is different from a present zero value.
type Signals struct {
	SchemaCoveragePercent *float64 // 0-100
	StructurePercent      *float64 // 0-100, from site_metrics.structure_score_percent
	AuthorCoveragePercent *float64 // 0-100
	ToneScore             *float64 // 0-10
	H1CoveragePercent     *float64 // 0-100
}

// Score returns the composite GEO score in [0,100], rounded to 1 decimal.
// Zero available signals yields exactly 0.
func Score(s Signals) float64 {
	var weightedSum, totalWeight float64

	add := func(value, weight float64) {
		weightedSum += clamp(value, 0, 100) * weight
		totalWeight += weight
	}

	if s.SchemaCoveragePercent != nil {
		add(*s.SchemaCoveragePercent, weightSchema)
	}
	if s.StructurePercent != nil {
		add(*s.StructurePercent, weightStructure)
	}
	if s.AuthorCoveragePercent != nil {
		add(*s.AuthorCoveragePercent, weightAuthor)
	}
	if s.ToneScore != nil {
		// Tone arrives on a 0-10 scale and is normalized to 100.
		add(*s.ToneScore*10, weightTone)
	}
	if s.H1CoveragePercent != nil && s.StructurePercent == nil {
		add(*s.H1CoveragePercent, weightH1)
	}

	if totalWeight == 0 {
		return 0
	}
	return round1(clamp(weightedSum/totalWeight, 0, 100))
}

// FromAggregate derives the score input from a SiteAggregate. The aggregate
// always carries the structural metric, so H1 never double counts here;
// partial inputs only occur when callers build Signals by hand.
func FromAggregate(agg *models.SiteAggregate) Signals {
	if agg == nil {
		return Signals{}
	}
	schema := agg.SiteMetrics.SchemaCoveragePercent
	structure := agg.SiteMetrics.StructureScorePercent
	tone := agg.AvgToneScore
	h1 := agg.SiteMetrics.H1CoveragePercent

	var author *float64
	if total := agg.AuthorPresence.PassCount + agg.AuthorPresence.FailCount; total > 0 {
		v := float64(agg.AuthorPresence.PassCount) / float64(total) * 100
		author = &v
	}
	return Signals{
		SchemaCoveragePercent: &schema,
		StructurePercent:      &structure,
		AuthorCoveragePercent: author,
		ToneScore:             &tone,
		H1CoveragePercent:     &h1,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
