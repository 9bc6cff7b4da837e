package rules

import (
	"reflect"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/genniabot/gbot-core/model"
)

func TestDoctrineRulesCompile(t *testing.T) {
	for _, r := range CompileDoctrine(DefaultDoctrine()) {
		if _, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool()); err != nil {
			t.Errorf("rule %q failed to compile: %v\ncondition: %s", r.Name, err, r.ConditionSrc)
		}
	}
}

func TestNewEngineOrdersTiers(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	want := []string{
		"drain-stale-queue",
		"execute-queued-move",
		"hunt-enemy-homes",
		"defend-home",
		"continue-chase",
		"react-to-threat",
		"rebalance",
		"expand-territory",
	}
	var got []string
	for _, r := range engine.rules {
		got = append(got, r.Name)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tiers = %v, want %v", got, want)
	}
}

func TestEvaluateNotReadyIsNoop(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := model.NewGameState()
	gs.Start(3, 1)
	rec := &recorder{}
	dec, err := engine.Evaluate(gs, rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(dec.Fired) != 0 || len(rec.attacks) != 0 {
		t.Errorf("decision = %+v, attacks = %v; want nothing", dec, rec.attacks)
	}
}

func TestEvaluateHuntsEnemyHome(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 3, 1, map[model.Position]model.Tile{
		{X: 0, Y: 0}: tile(model.Home, us, 10),
		{X: 1, Y: 0}: open(0),
		{X: 2, Y: 0}: tile(model.Home, them, 3),
	})
	gs.EnemyHomes = []model.EnemyHome{{Pos: model.Position{X: 2, Y: 0}, Color: them}}
	rec := &recorder{}

	dec, err := engine.Evaluate(gs, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dec.Fired, []string{"hunt-enemy-homes"}) {
		t.Errorf("turn 0 fired %v", dec.Fired)
	}
	if gs.Queue.Len() != 2 || len(rec.attacks) != 0 {
		t.Fatalf("turn 0: queued %d, attacks %v; want 2 queued and no attack", gs.Queue.Len(), rec.attacks)
	}

	gs.Turn = 1
	if _, err := engine.Evaluate(gs, rec); err != nil {
		t.Fatal(err)
	}
	if want := (attack{from: model.Position{X: 0, Y: 0}, to: model.Position{X: 1, Y: 0}}); len(rec.attacks) != 1 || rec.attacks[0] != want {
		t.Fatalf("turn 1 attacks = %+v, want %+v", rec.attacks, want)
	}

	gs.Turn = 2
	gs.Grid.Set(model.Position{X: 0, Y: 0}, tile(model.Home, us, 1))
	gs.Grid.Set(model.Position{X: 1, Y: 0}, tile(model.Open, us, 9))
	if _, err := engine.Evaluate(gs, rec); err != nil {
		t.Fatal(err)
	}
	if want := (attack{from: model.Position{X: 1, Y: 0}, to: model.Position{X: 2, Y: 0}}); len(rec.attacks) != 2 || rec.attacks[1] != want {
		t.Fatalf("turn 2 attacks = %+v, want second %+v", rec.attacks, want)
	}
}

func TestEvaluateNoProfitableHuntFallsBackToExpand(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 3, 1, map[model.Position]model.Tile{
		{X: 0, Y: 0}: tile(model.Home, us, 5),
		{X: 1, Y: 0}: open(0),
		{X: 2, Y: 0}: tile(model.Home, them, 3),
	})
	gs.EnemyHomes = []model.EnemyHome{{Pos: model.Position{X: 2, Y: 0}, Color: them}}

	dec, err := engine.Evaluate(gs, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dec.Fired, []string{"hunt-enemy-homes"}) {
		t.Errorf("fired %v, want only the hunt tier", dec.Fired)
	}
	if !gs.Queue.IsEmpty() {
		t.Errorf("queued %v, want nothing", gs.Queue.Items())
	}
}

func TestEvaluateDefendsHome(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 3, 3, map[model.Position]model.Tile{
		{X: 0, Y: 0}: tile(model.Open, us, 20),
		{X: 1, Y: 0}: tile(model.Open, us, 1),
		{X: 1, Y: 1}: tile(model.Home, us, 2),
		{X: 2, Y: 2}: tile(model.Open, them, 3),
		{X: 2, Y: 1}: open(0),
		{X: 1, Y: 2}: open(0),
		{X: 0, Y: 1}: open(0),
		{X: 2, Y: 0}: open(0),
		{X: 0, Y: 2}: open(0),
	})

	dec, err := engine.Evaluate(gs, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if !gs.HomeThreatened {
		t.Error("home not flagged as threatened")
	}
	if n := len(dec.Fired); n == 0 || dec.Fired[n-1] != "defend-home" {
		t.Fatalf("fired %v, want defend-home last", dec.Fired)
	}
	items := gs.Queue.Items()
	if len(items) == 0 {
		t.Fatal("no defensive moves queued")
	}
	for _, it := range items {
		if it.Purpose != model.Defend {
			t.Errorf("queued %+v, want defend moves only", it)
		}
	}
}

func TestEvaluateRebalanceExpands(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 2, 1, map[model.Position]model.Tile{
		{X: 0, Y: 0}: tile(model.Home, us, 10),
		{X: 1, Y: 0}: open(0),
	})
	gs.Leaderboard = model.Leaderboard{
		{Color: us, Army: 10, Land: 1},
		{Color: them, Army: 16, Land: 1},
	}
	dec, err := engine.Evaluate(gs, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"react-to-threat", "rebalance"}
	if !reflect.DeepEqual(dec.Fired, want) {
		t.Errorf("fired %v, want %v", dec.Fired, want)
	}
}

func TestEvaluateQuickExpandOnCadence(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 3, 1, map[model.Position]model.Tile{
		{X: 0, Y: 0}: tile(model.Home, us, 10),
		{X: 1, Y: 0}: open(0),
	})
	gs.Turn = 16

	dec, err := engine.Evaluate(gs, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(dec.Fired); n == 0 || dec.Fired[n-1] != "expand-territory" {
		t.Fatalf("fired %v, want expand-territory last", dec.Fired)
	}
	items := gs.Queue.Items()
	if len(items) != 2 {
		t.Fatalf("queued %+v, want a two-step frontier route", items)
	}
	if items[1].To != (model.Position{X: 2, Y: 0}) || items[1].Purpose != model.ExpandTerritory {
		t.Errorf("last move = %+v, want expansion into (2,0)", items[1])
	}
}

func TestEvaluateGrabsLandAfterGrace(t *testing.T) {
	engine := newTestEngine(t, DefaultDoctrine())
	gs := newState(t, 3, 1, map[model.Position]model.Tile{
		{X: 0, Y: 0}: open(0),
		{X: 1, Y: 0}: tile(model.Home, us, 10),
		{X: 2, Y: 0}: open(0),
	})
	gs.Turn = 20

	if _, err := engine.Evaluate(gs, &recorder{}); err != nil {
		t.Fatal(err)
	}
	targets := map[model.Position]bool{}
	for _, it := range gs.Queue.Items() {
		if it.From != (model.Position{X: 1, Y: 0}) {
			t.Errorf("move %+v does not start at home", it)
		}
		targets[it.To] = true
	}
	if !targets[model.Position{X: 0, Y: 0}] || !targets[model.Position{X: 2, Y: 0}] {
		t.Errorf("targets = %v, want both neighbors of home", targets)
	}
}

func TestDiagnosticsRestartWithNewGame(t *testing.T) {
	e := newTestEngine(t, DefaultDoctrine())
	gs := model.NewGameState()

	steps := []struct {
		turn int
		want bool
	}{
		{500, true},
		{510, false},
		{30, true}, // next game
		{40, false},
		{55, true},
	}
	for _, s := range steps {
		gs.Turn = s.turn
		if got := e.logDiagnostics(gs, Decision{Turn: s.turn}); got != s.want {
			t.Errorf("turn %d: logged = %v, want %v", s.turn, got, s.want)
		}
	}
}
