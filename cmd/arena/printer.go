package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/animearena/internal/arena"
	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
)

const ansiReset = "\x1b[0m"

// Side colors for turn lines. Element colors are only known once the
// battle has been summarized.
var sideColors = [2]tcell.Color{
	combat.Challenger: tcell.ColorDodgerBlue,
	combat.Opponent:   tcell.ColorOrangeRed,
}

// printer writes a readable turn log. It implements combat.Observer.
type printer struct {
	w        io.Writer
	chart    *gamedata.ElementChart
	color    bool
	material func(id int) string
}

func newPrinter(w io.Writer, chart *gamedata.ElementChart, materials *gamedata.MaterialRegistry, color bool) *printer {
	return &printer{w: w, chart: chart, color: color, material: materials.Name}
}

func (p *printer) paint(c tcell.Color, s string) string {
	if !p.color {
		return s
	}
	esc := gamedata.ANSIForeground(c)
	if esc == "" {
		return s
	}
	return esc + s + ansiReset
}

// OnTurn prints one resolved turn.
func (p *printer) OnTurn(r combat.TurnResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "T%-3d %s ", r.Turn, p.paint(sideColors[r.Actor], r.ActorName))

	switch {
	case r.Stunned:
		b.WriteString("is stunned")
	case r.Action == combat.ActionFlee:
		b.WriteString("tries to flee")
	case r.Healed > 0:
		fmt.Fprintf(&b, "uses %s and heals %d", r.Skill, r.Healed)
	case r.Dodged:
		fmt.Fprintf(&b, "attacks, %s dodges", r.TargetName)
	case r.Action == combat.ActionSkill:
		fmt.Fprintf(&b, "uses %s on %s for %d", r.Skill, r.TargetName, r.Damage)
	case r.Action == combat.ActionAttack:
		fmt.Fprintf(&b, "hits %s for %d", r.TargetName, r.Damage)
	default:
		b.WriteString("waits")
	}

	var tags []string
	if r.Critical {
		tags = append(tags, "critical")
	}
	if r.Effective {
		tags = append(tags, "effective")
	}
	if r.Resisted {
		tags = append(tags, "resisted")
	}
	if r.StatusApplied != "" {
		tags = append(tags, string(r.StatusApplied))
	}
	for _, tick := range r.Ticks {
		tags = append(tags, fmt.Sprintf("%s -%d", tick.Type, tick.Amount))
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(tags, ", "))
	}

	fmt.Fprintf(&b, "  (%d/%d vs %d/%d)", r.Challenger.HP, r.Challenger.MaxHP, r.Opponent.HP, r.Opponent.MaxHP)
	fmt.Fprintln(p.w, b.String())
}

func (p *printer) element(e gamedata.Element) string {
	def := p.chart.Def(e)
	if def == nil {
		return string(e)
	}
	return p.paint(def.TCellColor(), string(e))
}

func (p *printer) side(s combat.SideSummary) string {
	return fmt.Sprintf("%s (Lv %d %s) %d/%d HP", s.Name, s.Level, p.element(s.Element), s.Vitals.HP, s.Vitals.MaxHP)
}

// report prints a battle summary and its reward.
func (p *printer) report(r *arena.Report) {
	o := r.Outcome
	fmt.Fprintf(p.w, "\n%s vs %s\n", p.side(o.Challenger), p.side(o.Opponent))

	result := string(o.State)
	if w, ok := o.Winner(); ok {
		result = w.Name + " wins"
	}
	fmt.Fprintf(p.w, "%s after %d turns (%s)\n", result, o.Turns, o.Reason)

	rw := r.Reward
	if !rw.Granted {
		fmt.Fprintln(p.w, "No reward.")
		return
	}
	fmt.Fprintf(p.w, "Reward: %d gold", rw.Gold)
	if rw.BonusGold > 0 {
		fmt.Fprintf(p.w, " (+%d bonus)", rw.BonusGold)
	}
	fmt.Fprintf(p.w, ", %d player XP, %d card XP\n", rw.PlayerXP, rw.CardXP)
	if rw.Card.LeveledUp() {
		t := rw.Card.Total
		fmt.Fprintf(p.w, "Card level %d -> %d (ATK +%d DEF +%d SPD +%d)\n",
			rw.Card.FromLevel, rw.Card.ToLevel, t.Attack, t.Defense, t.Speed)
	}
	if rw.Player.LeveledUp() {
		fmt.Fprintf(p.w, "Player level %d -> %d\n", rw.Player.FromLevel, rw.Player.ToLevel)
	}
	for _, m := range rw.Materials {
		fmt.Fprintf(p.w, "Dropped %d x %s\n", m.Quantity, p.material(m.MaterialID))
	}
}

// player prints the persisted state after the run.
func (p *printer) player(pl arena.Player) {
	fmt.Fprintf(p.w, "\n%s: level %d (%d XP), %d gold, stamina %d/%d, MP %d/%d, %dW/%dL\n",
		pl.Name, pl.Level, pl.XP, pl.Gold, pl.Stamina, pl.MaxStamina, pl.MP, pl.MaxMP, pl.Wins, pl.Losses)
}

// evolution prints a completed evolution and what it cost.
func (p *printer) evolution(r *arena.EvolveReport) {
	b := r.Boost
	fmt.Fprintf(p.w, "Evolved to stage %d, level cap %d (ATK +%d DEF +%d SPD +%d)\n",
		r.ToStage, r.MaxLevel, b.Attack, b.Defense, b.Speed)
	spent := []string{fmt.Sprintf("%d gold", r.Cost.Gold)}
	for _, m := range r.Cost.Materials {
		spent = append(spent, fmt.Sprintf("%d x %s", m.Quantity, p.material(m.MaterialID)))
	}
	fmt.Fprintf(p.w, "Spent %s\n", strings.Join(spent, ", "))
}
