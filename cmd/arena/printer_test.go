package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samdwyer/animearena/internal/arena"
	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/rewards"
)

func newTestPrinter(t *testing.T, color bool) (*printer, *bytes.Buffer) {
	t.Helper()
	chart, err := gamedata.LoadElementChart(1.5, 0.75)
	if err != nil {
		t.Fatalf("LoadElementChart: %v", err)
	}
	materials, err := gamedata.LoadMaterialRegistry()
	if err != nil {
		t.Fatalf("LoadMaterialRegistry: %v", err)
	}
	var buf bytes.Buffer
	return newPrinter(&buf, chart, materials, color), &buf
}

func TestPrinterOnTurn(t *testing.T) {
	tests := []struct {
		name string
		turn combat.TurnResult
		want []string
	}{
		{
			name: "critical attack",
			turn: combat.TurnResult{Turn: 1, ActorName: "Naruto", TargetName: "Ninja", Action: combat.ActionAttack, Damage: 40, Critical: true},
			want: []string{"T1", "Naruto hits Ninja for 40", "[critical]"},
		},
		{
			name: "dodged",
			turn: combat.TurnResult{Turn: 2, ActorName: "Ninja", TargetName: "Naruto", Action: combat.ActionAttack, Dodged: true},
			want: []string{"Ninja attacks, Naruto dodges"},
		},
		{
			name: "stunned with poison tick",
			turn: combat.TurnResult{
				Turn: 3, ActorName: "Ninja", Action: combat.ActionNone, Stunned: true,
				Ticks: []combat.StatusTick{{Type: gamedata.StatusPoisoned, Amount: 12}},
			},
			want: []string{"Ninja is stunned", "poisoned -12"},
		},
		{
			name: "heal",
			turn: combat.TurnResult{Turn: 4, ActorName: "Sakura", Action: combat.ActionSkill, Skill: "Healing Palm", Healed: 100},
			want: []string{"uses Healing Palm and heals 100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestPrinter(t, false)
			p.OnTurn(tt.turn)
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("line %q missing %q", got, w)
				}
			}
			if strings.Contains(got, "\x1b[") {
				t.Errorf("uncolored printer wrote escapes: %q", got)
			}
		})
	}
}

func TestPrinterColor(t *testing.T) {
	p, buf := newTestPrinter(t, true)
	p.OnTurn(combat.TurnResult{Turn: 1, Actor: combat.Challenger, ActorName: "Naruto", TargetName: "Ninja", Action: combat.ActionAttack, Damage: 1})
	if !strings.Contains(buf.String(), "\x1b[38;2;") || !strings.Contains(buf.String(), ansiReset) {
		t.Errorf("Expected colored actor name, got %q", buf.String())
	}
}

func TestPrinterReport(t *testing.T) {
	p, buf := newTestPrinter(t, false)
	p.report(&arena.Report{
		Outcome: &combat.Outcome{
			State:      combat.StateChallengerWon,
			Reason:     combat.ReasonKnockout,
			Turns:      6,
			Challenger: combat.SideSummary{Name: "Naruto", Level: 10, Element: gamedata.ElementAir},
			Opponent:   combat.SideSummary{Name: "Ninja", Level: 8, Element: gamedata.ElementEarth},
		},
		Reward: rewards.Result{
			Granted:   true,
			Gold:      55,
			BonusGold: 5,
			PlayerXP:  30,
			CardXP:    24,
			Card:      rewards.CardLevelUp{FromLevel: 10, ToLevel: 11, Total: rewards.StatBoost{Attack: 2}},
			Materials: []rewards.MaterialReward{{MaterialID: 1, Quantity: 2}},
		},
	})

	got := buf.String()
	for _, w := range []string{"Naruto wins after 6 turns", "55 gold (+5 bonus)", "Card level 10 -> 11", "Dropped 2 x"} {
		if !strings.Contains(got, w) {
			t.Errorf("report missing %q:\n%s", w, got)
		}
	}

	buf.Reset()
	p.report(&arena.Report{Outcome: &combat.Outcome{State: combat.StateTimedOut, Reason: combat.ReasonMaxTurns, Turns: 100}})
	if !strings.Contains(buf.String(), "timed_out after 100 turns") || !strings.Contains(buf.String(), "No reward.") {
		t.Errorf("timeout report = %q", buf.String())
	}
}

func TestPrinterEvolution(t *testing.T) {
	p, buf := newTestPrinter(t, false)
	p.evolution(&arena.EvolveReport{
		Evolution: arena.Evolution{
			Cost: gamedata.EvolutionCost{
				Gold:      20000,
				Materials: []gamedata.MaterialCost{{MaterialID: 17, Quantity: 2}},
			},
			FromStage: 1,
			Boost:     rewards.StatBoost{Attack: 14, Defense: 9, Speed: 14},
		},
		ToStage:  2,
		MaxLevel: 40,
	})

	got := buf.String()
	for _, w := range []string{"stage 2, level cap 40", "ATK +14 DEF +9 SPD +14", "Spent 20000 gold, 2 x Evolution Core"} {
		if !strings.Contains(got, w) {
			t.Errorf("evolution missing %q:\n%s", w, got)
		}
	}
}
