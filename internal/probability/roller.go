// Package probability provides the seedable random rolls shared by the
// battle engine, the reward calculator and gacha pulls.
package probability

import (
	"math/rand"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// Roller draws independent random values from a single source. Every
// method consumes its own draw; no two rolls share a value.
//
// A Roller is not safe for concurrent use. Each battle owns its own.
type Roller struct {
	rng *rand.Rand
}

// NewRoller creates a roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRollerFromSource wraps an existing generator.
func NewRollerFromSource(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// Rand exposes the underlying generator for helpers that take a *rand.Rand.
func (r *Roller) Rand() *rand.Rand {
	return r.rng
}

// Critical reports whether a critical hit lands for a percentage rate.
func (r *Roller) Critical(rate float64) bool {
	return r.percent(rate)
}

// Dodge reports whether a dodge succeeds for a percentage rate.
func (r *Roller) Dodge(rate float64) bool {
	return r.percent(rate)
}

// Chance is a Bernoulli draw with probability p in [0,1].
func (r *Roller) Chance(p float64) bool {
	return r.rng.Float64() < clamp(p, 0, 1)
}

// IntRange returns a uniform integer in [min, max]. Reversed bounds are swapped.
func (r *Roller) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + r.rng.Intn(max-min+1)
}

// Float64 returns a uniform value in [0,1).
func (r *Roller) Float64() float64 {
	return r.rng.Float64()
}

// Pick returns a uniform index in [0,n). n must be positive.
func (r *Roller) Pick(n int) int {
	return r.rng.Intn(n)
}

// GachaRarity draws a rarity using the weight table for tier.
func (r *Roller) GachaRarity(tier gamedata.PackTier) gamedata.Rarity {
	return r.RollRarity(GachaWeights(tier))
}

// RollRarity draws a rarity from weights indexed like gamedata.Rarities.
// Weights are normalized; a table that sums to zero yields Common.
func (r *Roller) RollRarity(weights []float64) gamedata.Rarity {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return gamedata.RarityCommon
	}

	roll := r.rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		if i >= len(gamedata.Rarities) {
			break
		}
		if w <= 0 {
			continue
		}
		cumulative += w / total
		if roll < cumulative {
			return gamedata.Rarities[i]
		}
	}

	// Float rounding can leave roll just above the last cumulative bound.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 && i < len(gamedata.Rarities) {
			return gamedata.Rarities[i]
		}
	}
	return gamedata.RarityCommon
}

func (r *Roller) percent(rate float64) bool {
	return r.rng.Float64()*100 < clamp(rate, 0, 100)
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
