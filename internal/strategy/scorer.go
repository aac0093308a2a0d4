package strategy

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"StockDuel/internal/model"
)

// DefaultSignificance is the score gap above which one stock is said to have
// a significant advantage.
const DefaultSignificance = 0.5

// Features are the raw inputs of the composite score, all "higher is better".
type Features struct {
	MarketCapBillions float64
	PEInverse         float64
	EPS               float64
	ROE               float64
}

func (f Features) slice() [4]float64 {
	return [4]float64{f.MarketCapBillions, f.PEInverse, f.EPS, f.ROE}
}

// ExtractFeatures derives the scoring features from a metric set. Missing
// metrics count as 0; a present but non-finite value is an error.
func ExtractFeatures(ms model.MetricSet) (Features, error) {
	for _, m := range []model.MetricName{model.MarketCap, model.PERatio, model.EPS, model.ROE} {
		if v, ok := ms.Get(m).Value(); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return Features{}, fmt.Errorf("metric %s is not a finite number", m)
		}
	}
	f := Features{
		MarketCapBillions: ms.Get(model.MarketCap).Or(0) / 1e9,
		EPS:               ms.Get(model.EPS).Or(0),
		ROE:               ms.Get(model.ROE).Or(0),
	}
	if pe := ms.Get(model.PERatio).Or(0); pe > 0 {
		f.PEInverse = 1 / pe
	}
	return f, nil
}

// Scorer ranks a pair of stocks on a min-max scaled composite score.
type Scorer struct {
	Ties         TiePolicy
	Significance float64
}

// NewScorer creates a Scorer; a non-positive significance falls back to DefaultSignificance.
func NewScorer(ties TiePolicy, significance float64) *Scorer {
	if significance <= 0 {
		significance = DefaultSignificance
	}
	return &Scorer{Ties: ties, Significance: significance}
}

// Score computes both composite scores. Each feature is scaled into [0, 1]
// across exactly the two stocks, 0 when both are equal, and the four scaled
// features are summed. A stock whose features cannot be extracted scores 0.
func (s *Scorer) Score(nameA string, ma model.MetricSet, nameB string, mb model.MetricSet) model.ScoreReport {
	fa, errA := ExtractFeatures(ma)
	if errA != nil {
		log.Warn().Err(errA).Str("stock", nameA).Msg("feature extraction failed, scoring 0")
	}
	fb, errB := ExtractFeatures(mb)
	if errB != nil {
		log.Warn().Err(errB).Str("stock", nameB).Msg("feature extraction failed, scoring 0")
	}

	xa, xb := fa.slice(), fb.slice()
	var scoreA, scoreB float64
	for i := range xa {
		lo, hi := math.Min(xa[i], xb[i]), math.Max(xa[i], xb[i])
		scoreA += scale(xa[i], lo, hi)
		scoreB += scale(xb[i], lo, hi)
	}
	if errA != nil {
		scoreA = 0
	}
	if errB != nil {
		scoreB = 0
	}

	diff := math.Abs(scoreA - scoreB)
	winner := s.Ties.decide(scoreA, scoreB, false)
	adv := model.NoStrongAdvantage
	if diff > s.Significance {
		adv = model.SignificantAdvantage
	}

	return model.ScoreReport{
		A:         model.ScoreResult{Name: nameA, Score: scoreA, Winner: winner == model.WinnerA, Difference: diff},
		B:         model.ScoreResult{Name: nameB, Score: scoreB, Winner: winner == model.WinnerB, Difference: diff},
		Winner:    winner,
		Advantage: adv,
	}
}

func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
