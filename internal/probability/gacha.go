package probability

import "github.com/samdwyer/animearena/internal/gamedata"

// Pack weight tables, ordered Common, Uncommon, Rare, Epic, Legendary.
var (
	BasicWeights     = []float64{55, 30, 10, 4, 1}
	PremiumWeights   = []float64{20, 35, 30, 10, 5}
	LegendaryWeights = []float64{5, 15, 35, 30, 15}
	DefaultWeights   = []float64{40, 30, 20, 7, 3}
)

// GachaWeights returns the weight table for a pack tier. Unknown tiers get
// DefaultWeights.
func GachaWeights(tier gamedata.PackTier) []float64 {
	switch tier {
	case gamedata.PackBasic:
		return BasicWeights
	case gamedata.PackPremium:
		return PremiumWeights
	case gamedata.PackLegendary:
		return LegendaryWeights
	default:
		return DefaultWeights
	}
}
