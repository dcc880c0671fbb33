package probability

import (
	"testing"

	"github.com/samdwyer/animearena/internal/gamedata"
)

func TestRollerDeterministic(t *testing.T) {
	a := NewRoller(42)
	b := NewRoller(42)

	for i := 0; i < 100; i++ {
		if a.Critical(50) != b.Critical(50) {
			t.Fatalf("Critical roll %d differs between equal seeds", i)
		}
		if a.IntRange(1, 6) != b.IntRange(1, 6) {
			t.Fatalf("IntRange roll %d differs between equal seeds", i)
		}
	}
}

func TestRatesAreClamped(t *testing.T) {
	r := NewRoller(7)

	for i := 0; i < 200; i++ {
		if r.Critical(0) {
			t.Fatal("Critical(0) succeeded")
		}
		if r.Dodge(-20) {
			t.Fatal("Dodge(-20) succeeded")
		}
		if !r.Critical(100) {
			t.Fatal("Critical(100) failed")
		}
		if !r.Dodge(250) {
			t.Fatal("Dodge(250) failed")
		}
		if r.Chance(0) || !r.Chance(1) || !r.Chance(3) {
			t.Fatal("Chance bounds not honoured")
		}
	}
}

func TestCriticalAndDodgeUseSeparateDraws(t *testing.T) {
	// With a 50% rate, two rolls that shared one draw would always agree.
	r := NewRoller(99)
	disagreed := false
	for i := 0; i < 100; i++ {
		if r.Critical(50) != r.Dodge(50) {
			disagreed = true
			break
		}
	}
	if !disagreed {
		t.Error("Critical and Dodge always agreed; draws appear shared")
	}
}

func TestIntRange(t *testing.T) {
	r := NewRoller(1)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		v := r.IntRange(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("IntRange(3,7) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("Expected all 5 values, saw %d", len(seen))
	}

	if got := r.IntRange(4, 4); got != 4 {
		t.Errorf("IntRange(4,4) = %d", got)
	}
	if got := r.IntRange(9, 8); got < 8 || got > 9 {
		t.Errorf("IntRange(9,8) = %d", got)
	}
}

func TestGachaWeights(t *testing.T) {
	tests := []struct {
		tier gamedata.PackTier
		want []float64
	}{
		{gamedata.PackBasic, BasicWeights},
		{gamedata.PackPremium, PremiumWeights},
		{gamedata.PackLegendary, LegendaryWeights},
		{"mystery", DefaultWeights},
	}

	for _, tt := range tests {
		got := GachaWeights(tt.tier)
		if len(got) != len(gamedata.Rarities) {
			t.Fatalf("%s: expected %d weights, got %d", tt.tier, len(gamedata.Rarities), len(got))
		}
		sum := 0.0
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s weight %d = %v, want %v", tt.tier, i, got[i], tt.want[i])
			}
			sum += got[i]
		}
		if sum != 100 {
			t.Errorf("%s weights sum to %v", tt.tier, sum)
		}
	}
}

func TestRollRarity(t *testing.T) {
	r := NewRoller(5)

	for i := 0; i < 50; i++ {
		if got := r.RollRarity([]float64{0, 0, 0, 0, 1}); got != gamedata.RarityLegendary {
			t.Fatalf("Expected Legendary from single-weight table, got %s", got)
		}
		if got := r.RollRarity([]float64{0, 0, 0, 0, 0}); got != gamedata.RarityCommon {
			t.Fatalf("Expected Common from zero table, got %s", got)
		}
	}

	counts := make(map[gamedata.Rarity]int)
	for i := 0; i < 10000; i++ {
		counts[r.GachaRarity(gamedata.PackBasic)]++
	}
	if counts[gamedata.RarityCommon] < counts[gamedata.RarityRare] {
		t.Errorf("Basic pack produced more Rare (%d) than Common (%d)", counts[gamedata.RarityRare], counts[gamedata.RarityCommon])
	}
	if counts[gamedata.RarityCommon] < 5000 || counts[gamedata.RarityCommon] > 6000 {
		t.Errorf("Basic pack Common share %d outside expected band", counts[gamedata.RarityCommon])
	}
}
