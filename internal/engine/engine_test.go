package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/tuning"
	"github.com/talgya/boomsim/internal/world"
)

func newTestSim() *Simulation {
	return NewSimulation(tuning.Default(), economy.DefaultRecipes())
}

// steps runs n ticks, applying cmd (if any) on the first.
func steps(t *testing.T, e *Engine, n int, cmd Command) {
	t.Helper()
	for i := 0; i < n; i++ {
		var cmds []Command
		if i == 0 && cmd != nil {
			cmds = []Command{cmd}
		}
		ok, err := e.Step(cmds)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("step %d: run ended early with %s", i, e.Outcome)
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFoundationProgressOncePerTick(t *testing.T) {
	s := newTestSim()
	f := &Foundation{Kind: agents.KindHouse, Required: 100, Builders: 3, lastTick: -1}

	for i := 0; i < 4; i++ {
		s.advance(f)
	}
	if want := math.Pow(3, 0.7); !near(f.Progress, want) {
		t.Fatalf("progress after four calls in one tick = %v, want %v", f.Progress, want)
	}

	s.Time++
	s.advance(f)
	if want := 2 * math.Pow(3, 0.7); !near(f.Progress, want) {
		t.Errorf("progress after second tick = %v, want %v", f.Progress, want)
	}
}

func TestFoundationConvertsOnce(t *testing.T) {
	s := newTestSim()
	f, err := s.startFoundation(agents.KindHouse, world.Pos(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	f.Builders = 1
	f.Progress = f.Required
	by := s.Workers[1]

	s.convert(f, by)
	s.convert(f, by)

	if got := len(s.Buildings(agents.KindHouse)); got != 1 {
		t.Errorf("houses = %d, want 1", got)
	}
	if got := s.Ledger.MaxPop; got != 25 {
		t.Errorf("max pop = %d, want 25", got)
	}
	if got := len(s.Foundations(agents.KindHouse)); got != 0 {
		t.Errorf("live foundations = %d, want 0", got)
	}

	s.Time++
	s.advance(f)
	if f.Progress != f.Required {
		t.Errorf("converted foundation progressed to %v", f.Progress)
	}
}

func TestTwoBuildersShareFoundation(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	pos := world.Pos(3, 3)
	builders := s.Workers[1:3]

	steps(t, e, 1, func(s *Simulation) error {
		return s.Build(builders, agents.KindHouse, &pos, BuildOptions{})
	})
	// Walking sqrt(18) takes five ticks; the first build tick is the sixth.
	steps(t, e, 5, nil)

	fs := s.Foundations(agents.KindHouse)
	if len(fs) != 1 {
		t.Fatalf("foundations = %d, want 1", len(fs))
	}
	f := fs[0]
	if f.Builders != 2 {
		t.Fatalf("builders = %d, want 2", f.Builders)
	}
	if got := s.Ledger.Stock[economy.Wood]; got != 225 {
		t.Errorf("wood = %v, want 225 (one house paid)", got)
	}

	before := f.Progress
	steps(t, e, 1, nil)
	if got, want := f.Progress-before, math.Pow(2, 0.7); !near(got, want) {
		t.Errorf("progress per tick = %v, want %v", got, want)
	}

	for i := 0; i < 40 && len(s.Buildings(agents.KindHouse)) == 0; i++ {
		steps(t, e, 1, nil)
	}
	if got := len(s.Buildings(agents.KindHouse)); got != 1 {
		t.Fatalf("houses = %d, want 1", got)
	}
	for _, w := range builders {
		if !w.Idle() {
			t.Errorf("builder %d still %s", w.ID, w.ActionName())
		}
	}
}

func TestTrainFiveMales(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	cc := s.HomeBase()

	steps(t, e, 1, func(s *Simulation) error {
		return s.Train(cc, agents.KindMale, 5, TrainOptions{})
	})
	if got := s.Ledger.Stock; got[economy.Food] != 50 || got[economy.Wood] != 50 {
		t.Fatalf("stock after tick 0 = %v, want 50f 50w", got)
	}
	if s.Ledger.Pop != 15 {
		t.Fatalf("pop = %d, want 15", s.Ledger.Pop)
	}

	want := BatchDuration(10, 5)
	if want != 37 {
		t.Fatalf("BatchDuration(10, 5) = %d, want 37", want)
	}
	steps(t, e, want-1, nil)
	if got := len(s.Workers); got != 10 {
		t.Fatalf("workers before tick %d = %d, want 10", want, got)
	}
	steps(t, e, 1, nil)
	if got := len(s.Workers); got != 15 {
		t.Fatalf("workers after tick %d = %d, want 15", want, got)
	}
	if !cc.Idle() {
		t.Errorf("cc still %s", cc.ActionName())
	}
	if got := s.Ledger.Pop; got != 15 {
		t.Errorf("pop after spawn = %d, want 15", got)
	}
}

func TestMaxBatchingRespectsStockAndHeadroom(t *testing.T) {
	tests := []struct {
		name   string
		food   float64
		maxPop int
		want   int
	}{
		{"food limited", 120, 20, 2},
		{"headroom limited", 300, 11, 1},
		{"requested limited", 1000, 50, 5},
		{"nothing feasible", 40, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim()
			s.Ledger.Stock[economy.Food] = tt.food
			s.Ledger.MaxPop = tt.maxPop
			e := NewEngine(s, 0)

			steps(t, e, 1, func(s *Simulation) error {
				return s.Train(s.HomeBase(), agents.KindMale, 5, TrainOptions{MaxBatching: true})
			})
			if s.Ledger.Stock.Negative() {
				t.Fatalf("stock went negative: %v", s.Ledger.Stock)
			}
			if got := s.Ledger.Pop - 10; got != tt.want {
				t.Errorf("batch = %d, want %d", got, tt.want)
			}
			if s.Ledger.Overpopulated() {
				t.Errorf("pop %d over cap %d", s.Ledger.Pop, s.Ledger.MaxPop)
			}
		})
	}
}

func TestTrainCancelRefundsOnce(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	cc := s.HomeBase()
	start := s.Ledger.Stock

	steps(t, e, 3, func(s *Simulation) error {
		return s.Train(cc, agents.KindMale, 5, TrainOptions{})
	})
	cc.clear(s)
	cc.clear(s)

	if s.Ledger.Stock != start {
		t.Errorf("stock after cancel = %v, want %v", s.Ledger.Stock, start)
	}
	if s.Ledger.Pop != 10 {
		t.Errorf("pop after cancel = %d, want 10", s.Ledger.Pop)
	}
}

func TestResearchCompletesAndCancels(t *testing.T) {
	s := newTestSim()
	store := s.addBuilding("storehouse", world.Pos(2, 0))
	e := NewEngine(s, 0)

	if err := s.Research(s.HomeBase(), "up_chop1", false); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("research at cc: err = %v, want ErrPrecondition", err)
	}

	start := s.Ledger.Stock
	steps(t, e, 1, func(s *Simulation) error {
		return s.Research(store, "up_chop1", false)
	})
	if got := s.Ledger.Stock[economy.Wood]; got != 100 {
		t.Fatalf("wood after start = %v, want 100", got)
	}
	store.clear(s)
	if s.Ledger.Stock != start {
		t.Fatalf("stock after cancel = %v, want %v", s.Ledger.Stock, start)
	}

	steps(t, e, 41, func(s *Simulation) error {
		return s.Research(store, "up_chop1", false)
	})
	if !s.Upgrades.Has("up_chop1") {
		t.Fatal("up_chop1 not researched after 41 ticks")
	}
	if !store.Idle() {
		t.Errorf("storehouse still %s", store.ActionName())
	}
}

func TestChopDepletesForest(t *testing.T) {
	s := newTestSim()
	pos := world.Pos(5, 5)
	node := s.Nodes.Add(world.NodeForest, pos, 10)
	w := s.Workers[1]
	w.Position = pos
	e := NewEngine(s, 0)

	// One tick to arrive, then ceil(10/0.63) = 16 ticks of chopping.
	steps(t, e, 16, func(s *Simulation) error {
		return s.Chop([]*Actor{w}, &pos, false)
	})
	if w.ActionName() != OpChop {
		t.Fatalf("action after 16 ticks = %s, want chop", w.ActionName())
	}
	if node.Remaining <= 0 || node.Remaining >= 0.63 {
		t.Fatalf("remaining before last tick = %v, want a partial amount", node.Remaining)
	}

	steps(t, e, 1, nil)
	if node.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", node.Remaining)
	}
	if !w.Idle() {
		t.Errorf("chopper still %s", w.ActionName())
	}
	if got := s.Ledger.Stock[economy.Wood]; !near(got, 310) {
		t.Errorf("wood = %v, want 310", got)
	}
}

func TestGatherOrderFollowsRoster(t *testing.T) {
	s := newTestSim()
	pos := world.Pos(1, 0)
	node := s.Nodes.Add(world.NodeForest, pos, 1)
	first, second := s.Workers[1], s.Workers[2]
	first.Position, second.Position = pos, pos
	e := NewEngine(s, 0)

	steps(t, e, 2, func(s *Simulation) error {
		return s.Chop([]*Actor{first, second}, &pos, false)
	})
	if node.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", node.Remaining)
	}
	if first.Idle() {
		t.Error("first chopper stopped before noticing the empty forest")
	}
	if !second.Idle() {
		t.Error("second chopper should stop when it empties the forest")
	}
	if got := s.Ledger.Stock[economy.Wood]; !near(got, 300.37) {
		t.Errorf("wood = %v, want 300.37", got)
	}

	steps(t, e, 1, nil)
	if !first.Idle() {
		t.Errorf("first chopper still %s", first.ActionName())
	}
	if got := s.Ledger.Stock[economy.Wood]; !near(got, 301) {
		t.Errorf("wood = %v, want 301", got)
	}
}

func TestWaypointScheduleLookup(t *testing.T) {
	a := Waypoint{Position: world.Pos(1, 0), Op: OpWalk}
	b := Waypoint{Position: world.Pos(2, 0), Op: OpChop}
	c := Waypoint{Position: world.Pos(3, 0), Op: OpFarm}
	ws := NewWaypointSchedule([]ScheduleEntry{{25, c}, {0, a}, {10, b}})

	tests := []struct {
		pop  int
		want Waypoint
	}{
		{0, a},
		{5, a},
		{10, b},
		{15, b},
		{25, c},
		{30, c},
	}
	for _, tt := range tests {
		if got := ws.Lookup(tt.pop); got != tt.want {
			t.Errorf("Lookup(%d) = %+v, want %+v", tt.pop, got, tt.want)
		}
	}

	late := NewWaypointSchedule([]ScheduleEntry{{5, a}})
	if got := late.Lookup(3); got.IsSet() {
		t.Errorf("Lookup below every threshold = %+v, want none", got)
	}
}

func TestDispatchOrder(t *testing.T) {
	s := newTestSim()
	cc := s.HomeBase()
	explicit := Waypoint{Position: world.Pos(1, 0), Op: OpWalk}
	static := Waypoint{Position: world.Pos(2, 0), Op: OpWalk}
	scheduled := Waypoint{Position: world.Pos(3, 0), Op: OpWalk}

	if got := s.waypointFor(cc, Waypoint{}); got.IsSet() {
		t.Errorf("fresh building waypoint = %+v, want none", got)
	}
	if err := s.SetWaypoint(cc, static.Position, OpWalk); err != nil {
		t.Fatal(err)
	}
	if got := s.waypointFor(cc, Waypoint{}); got != static {
		t.Errorf("static waypoint = %+v, want %+v", got, static)
	}
	if got := s.waypointFor(cc, explicit); got != explicit {
		t.Errorf("explicit waypoint = %+v, want %+v", got, explicit)
	}
	if err := s.SetWaypointSchedule(cc, []ScheduleEntry{{10, scheduled}}); err != nil {
		t.Fatal(err)
	}
	if got := s.waypointFor(cc, Waypoint{}); got != scheduled {
		t.Errorf("scheduled waypoint = %+v, want %+v", got, scheduled)
	}
	if err := s.SetWaypoint(cc, world.Pos(0, 0), "swim"); !errors.Is(err, ErrPrecondition) {
		t.Errorf("SetWaypoint(swim) err = %v, want ErrPrecondition", err)
	}
}

func TestTrainedUnitFollowsWaypoint(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	cc := s.HomeBase()
	target := world.Pos(4, 0)

	steps(t, e, 9, func(s *Simulation) error {
		if err := s.SetWaypoint(cc, target, OpWalk); err != nil {
			return err
		}
		return s.Train(cc, agents.KindFemale, 1, TrainOptions{})
	})
	if got := len(s.Workers); got != 11 {
		t.Fatalf("workers = %d, want 11", got)
	}
	u := s.Workers[10]
	walk, ok := u.Active().(*Walk)
	if !ok {
		t.Fatalf("new unit is %s, want walk", u.ActionName())
	}
	if walk.Target != target {
		t.Errorf("walk target = %v, want %v", walk.Target, target)
	}
}

func TestFarmAllocation(t *testing.T) {
	s := newTestSim()
	s.dropSite(world.Origin).assigned = 30

	site, err := s.assignFarmer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := world.Pos(0, 2); site != want {
		t.Fatalf("first overflow site = %v, want %v", site, want)
	}

	for i := 1; i < 20; i++ {
		if got, err := s.assignFarmer(nil); err != nil || got != site {
			t.Fatalf("farmer %d went to %v (err %v), want %v", i, got, err, site)
		}
	}
	next, err := s.assignFarmer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := world.Pos(0, 4); next != want {
		t.Errorf("second overflow site = %v, want %v", next, want)
	}

	if _, err := s.assignFarmer(&site); !errors.Is(err, ErrPrecondition) {
		t.Errorf("explicit full site err = %v, want ErrPrecondition", err)
	}
	home := world.Origin
	if _, err := s.assignFarmer(&home); !errors.Is(err, ErrPrecondition) {
		t.Errorf("explicit full home err = %v, want ErrPrecondition", err)
	}
}

func TestFarmerBuildsFieldThenFarms(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	w := s.Workers[5]

	steps(t, e, 1, func(s *Simulation) error {
		return s.Farm([]*Actor{w}, nil, false)
	})
	for i := 0; i < 100 && w.ActionName() != OpFarm; i++ {
		steps(t, e, 1, nil)
	}
	if w.ActionName() != OpFarm {
		t.Fatalf("farmer is %s, want farm", w.ActionName())
	}
	if got := len(s.BuildingsAt(agents.KindField, world.Origin)); got != 1 {
		t.Errorf("fields at home = %d, want 1", got)
	}
	if assigned, ranks := s.FarmAllocation(world.Origin); assigned != 1 || ranks != 1 {
		t.Errorf("allocation = %d assigned %d ranks, want 1 and 1", assigned, ranks)
	}

	steps(t, e, 1, nil)
	if got := s.Ledger.Income[economy.Food]; !near(got, 0.43) {
		t.Errorf("food income = %v, want 0.43", got)
	}

	w.clear(s)
	if assigned, _ := s.FarmAllocation(world.Origin); assigned != 0 {
		t.Errorf("assigned after cancel = %d, want 0", assigned)
	}
}

func TestRemoteFarmBuildsFarmsteadFirst(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	w := s.Workers[5]
	site := world.Pos(0, 2)

	steps(t, e, 1, func(s *Simulation) error {
		return s.Farm([]*Actor{w}, &site, false)
	})
	for i := 0; i < 200 && w.ActionName() != OpFarm; i++ {
		steps(t, e, 1, nil)
	}
	if got := len(s.BuildingsAt(agents.KindFarmstead, site)); got != 1 {
		t.Errorf("farmsteads = %d, want 1", got)
	}
	if got := len(s.BuildingsAt(agents.KindField, site)); got != 1 {
		t.Errorf("fields = %d, want 1", got)
	}
	if got := s.Ledger.Stock[economy.Wood]; got != 100 {
		t.Errorf("wood = %v, want 100", got)
	}
}

func TestSelectWorkers(t *testing.T) {
	s := newTestSim()

	males := s.SelectWorkers("male", IdleAction, 2, nil)
	if len(males) != 2 || males[0] != s.Workers[1] || males[1] != s.Workers[2] {
		t.Fatalf("SelectWorkers(male, idle, 2) = %v", males)
	}
	if got := s.PreviousSelection(); len(got) != 2 || got[0] != males[0] {
		t.Errorf("PreviousSelection = %v", got)
	}
	if got := s.SelectWorkers("male female", "", 0, nil); len(got) != 8 {
		t.Errorf("males and females = %d, want 8", len(got))
	}

	pos := world.Pos(5, 5)
	if err := s.Walk(males, pos, false); err != nil {
		t.Fatal(err)
	}
	if got := s.SelectWorkers("male", OpWalk, 0, nil); len(got) != 2 {
		t.Errorf("walking males = %d, want 2", len(got))
	}
	if got := s.SelectWorkers("male", IdleAction, 0, nil); len(got) != 2 {
		t.Errorf("idle males = %d, want 2", len(got))
	}
	if got := s.SelectWorkers("", "", 0, &pos); len(got) != 0 {
		t.Errorf("units at %v = %d, want 0 before arrival", pos, len(got))
	}
}

func TestSelectBuildingPrefersIdle(t *testing.T) {
	s := newTestSim()
	first := s.addBuilding(agents.KindBarracks, world.Pos(4, 4))
	second := s.addBuilding(agents.KindBarracks, world.Pos(6, 4))
	if err := s.Train(first, agents.KindMale, 1, TrainOptions{}); err != nil {
		t.Fatal(err)
	}

	if got, err := s.SelectBuilding(agents.KindBarracks, nil, 0); err != nil || got != second {
		t.Errorf("SelectBuilding = %v (err %v), want the idle barracks", got, err)
	}
	if got, err := s.SelectBuilding(agents.KindBarracks, nil, 1); err != nil || got != first {
		t.Errorf("SelectBuilding index 1 = %v (err %v), want the first", got, err)
	}
	pos := world.Pos(4, 4)
	if got, err := s.SelectBuilding(agents.KindBarracks, &pos, 0); err != nil || got != first {
		t.Errorf("SelectBuilding at %v = %v (err %v), want the first", pos, got, err)
	}
	if _, err := s.SelectBuilding("castle", nil, 0); !errors.Is(err, ErrPrecondition) {
		t.Errorf("missing kind err = %v, want ErrPrecondition", err)
	}
}

func TestQueuedCommandsRunAfterCurrentPlan(t *testing.T) {
	s := newTestSim()
	w := s.Workers[1]
	a, b := world.Pos(1, 0), world.Pos(2, 0)

	if err := s.Walk([]*Actor{w}, a, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Walk([]*Actor{w}, b, true); err != nil {
		t.Fatal(err)
	}
	if w.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", w.Pending())
	}
	if got := w.Active().(*Walk).Target; got != a {
		t.Errorf("active walk target = %v, want %v", got, a)
	}

	if err := s.Walk([]*Actor{w}, b, false); err != nil {
		t.Fatal(err)
	}
	if w.Pending() != 1 {
		t.Errorf("pending after unqueued walk = %d, want 1", w.Pending())
	}
}

func TestUnderflowEndsRun(t *testing.T) {
	for _, debug := range []bool{false, true} {
		s := newTestSim()
		s.Ledger.Stock[economy.Wood] = 10
		e := NewEngine(s, 0)
		e.DebugEnd = debug
		e.Surplus = NewSurplusWatch(economy.Resources{100, 100, 100, 100})
		var out strings.Builder
		e.Out = &out
		w := s.Workers[1]

		ok, err := e.Step([]Command{func(s *Simulation) error {
			return s.Build([]*Actor{w}, agents.KindHouse, nil, BuildOptions{})
		}})
		if !ok || err != nil {
			t.Fatalf("walk tick: ok=%v err=%v", ok, err)
		}
		ok, err = e.Step(nil)
		if ok {
			t.Fatal("run continued after underflow")
		}
		if debug && !errors.Is(err, ErrRunFinished) {
			t.Errorf("debugend err = %v, want ErrRunFinished", err)
		}
		if !debug && err != nil {
			t.Errorf("err = %v, want nil", err)
		}
		if e.Outcome != OutcomeUnderflow {
			t.Errorf("outcome = %s, want underflow", e.Outcome)
		}
		if !strings.Contains(out.String(), "No sustained surplus") {
			t.Errorf("output missing surplus report:\n%s", out.String())
		}
		if len(e.Summaries) != 1 {
			t.Errorf("summaries = %d, want the final one", len(e.Summaries))
		}
	}
}

func TestStopConditionEndsRun(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	e.Stop = func(v View) (bool, error) { return v.Time >= 3, nil }

	n := 0
	for {
		ok, err := e.Step(nil)
		if err != nil {
			t.Fatal(err)
		}
		n++
		if !ok {
			break
		}
	}
	if n != 3 || s.Time != 3 {
		t.Errorf("stopped after %d steps at time %d, want 3", n, s.Time)
	}
	if e.Outcome != OutcomeStopped {
		t.Errorf("outcome = %s, want stopped", e.Outcome)
	}
	if ok, _ := e.Step(nil); ok {
		t.Error("Step after the end should report false")
	}
}

func TestOverflowIsFlaggedNotFatal(t *testing.T) {
	s := newTestSim()
	s.Ledger.MaxPop = 12
	e := NewEngine(s, 0)

	steps(t, e, 2, func(s *Simulation) error {
		return s.Train(s.HomeBase(), agents.KindFemale, 5, TrainOptions{})
	})
	if e.Overflows != 1 {
		t.Errorf("overflows = %d, want 1", e.Overflows)
	}
	if e.Outcome != OutcomeRunning {
		t.Errorf("outcome = %s, want running", e.Outcome)
	}
}

func TestSummaryLine(t *testing.T) {
	s := newTestSim()
	want := "000:00 300f+0 300w+0 300s+0 300m+0 10/20pop 4women 10idle 0farm 0chop 0build 0barracks 1idlebarracks/cc"
	if got := s.Summarize().String(); got != want {
		t.Errorf("summary =\n%s\nwant\n%s", got, want)
	}
}

func TestSurplusWatch(t *testing.T) {
	w := NewSurplusWatch(economy.Resources{100, 100, 0, 0})
	w.Observe(0, economy.Resources{150, 150, 0, 0})
	w.Observe(1, economy.Resources{50, 150, 0, 0})
	w.Observe(2, economy.Resources{150, 150, 0, 0})
	w.Observe(3, economy.Resources{200, 100, 0, 0})

	since, ok := w.Since()
	if !ok || since != 2 {
		t.Errorf("Since = %d, %v; want 2, true", since, ok)
	}
	if got := w.Report(); !strings.Contains(got, "000:02") {
		t.Errorf("Report = %q", got)
	}
}

func TestViewCounts(t *testing.T) {
	s := newTestSim()
	s.addBuilding(agents.KindHouse, world.Pos(3, 3))
	s.Upgrades.Add("up_gather")
	v := s.View()

	if v.Food != 300 || v.Pop != 10 || v.MaxPop != 20 || v.Workers != 10 || v.Idle != 10 {
		t.Errorf("view = %+v", v)
	}
	if v.Buildings(agents.KindHouse) != 1 || v.Units(agents.KindMale) != 4 {
		t.Errorf("houses = %d, males = %d", v.Buildings(agents.KindHouse), v.Units(agents.KindMale))
	}
	if !v.HasUpgrade("up_gather") || v.HasUpgrade("up_farm1") {
		t.Error("HasUpgrade mismatch")
	}
}

func TestSimTime(t *testing.T) {
	tests := map[int]string{0: "000:00", 59: "000:59", 61: "001:01", 900: "015:00"}
	for tick, want := range tests {
		if got := SimTime(tick); got != want {
			t.Errorf("SimTime(%d) = %q, want %q", tick, got, want)
		}
	}
}

func TestRepeatingBuildReusesSibling(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	pos := world.Pos(3, 3)
	builders := s.Workers[1:3]
	for _, w := range builders {
		w.Position = pos
	}
	const start = 10000.0
	s.Ledger.Stock[economy.Wood] = start

	steps(t, e, 1, func(s *Simulation) error {
		return s.Build(builders, agents.KindHouse, &pos, BuildOptions{Repeating: true})
	})
	houses, converted := 0, false
	for i := 0; i < 200; i++ {
		steps(t, e, 1, nil)
		fs := s.Foundations(agents.KindHouse)
		if len(fs) != 1 {
			t.Fatalf("tick %d: live foundations = %d, want 1", s.Time, len(fs))
		}
		if converted && fs[0].Builders != 2 {
			t.Fatalf("tick %d: builders on restarted foundation = %d, want 2", s.Time, fs[0].Builders)
		}
		converted = false
		if n := len(s.Buildings(agents.KindHouse)); n != houses {
			houses, converted = n, true
			if want := start - 75*float64(houses+1); s.Ledger.Stock[economy.Wood] != want {
				t.Fatalf("wood after %d houses = %v, want %v", houses, s.Ledger.Stock[economy.Wood], want)
			}
		}
	}
	if houses < 5 {
		t.Errorf("houses after 200 ticks = %d, want at least 5", houses)
	}
	for _, w := range builders {
		if w.ActionName() != "build house" {
			t.Errorf("builder %d is %s, want build house", w.ID, w.ActionName())
		}
	}
}

func TestRepeatingTrainRestarts(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	cc := s.HomeBase()

	// One female takes eight ticks; she appears on the ninth.
	steps(t, e, 9, func(s *Simulation) error {
		return s.Train(cc, agents.KindFemale, 1, TrainOptions{Repeating: true})
	})
	if got := len(s.Workers); got != 11 {
		t.Fatalf("workers after first batch = %d, want 11", got)
	}
	if got := s.Ledger.Stock[economy.Food]; got != 250 {
		t.Fatalf("food after first batch = %v, want 250", got)
	}

	steps(t, e, 1, nil)
	if got := s.Ledger.Stock[economy.Food]; got != 200 {
		t.Errorf("food after second batch starts = %v, want 200", got)
	}
	if s.Ledger.Pop != 12 {
		t.Errorf("pop = %d, want 12", s.Ledger.Pop)
	}
	if cc.ActionName() != "train female" {
		t.Errorf("cc is %s, want train female", cc.ActionName())
	}

	steps(t, e, 8, nil)
	if got := len(s.Workers); got != 12 {
		t.Errorf("workers after second batch = %d, want 12", got)
	}
	if cc.ActionName() != "train female" {
		t.Errorf("cc is %s after second batch, want train female", cc.ActionName())
	}
}

func TestGatherCancelFlushesCarriedOnce(t *testing.T) {
	s := newTestSim()
	pos := world.Pos(5, 5)
	s.Nodes.Add(world.NodeForest, pos, 100)
	w := s.Workers[1]
	w.Position = pos
	e := NewEngine(s, 0)

	// One tick to arrive, three of chopping.
	steps(t, e, 4, func(s *Simulation) error {
		return s.Chop([]*Actor{w}, &pos, false)
	})
	g, ok := w.Active().(*Gather)
	if !ok {
		t.Fatalf("active action = %s, want chop", w.ActionName())
	}
	carried := g.Carried()
	if carried <= 0 || carried >= agents.CarryCapacity(w.Kind) {
		t.Fatalf("carried = %v, want a partial load", carried)
	}
	before := s.Ledger.Stock[economy.Wood]

	w.clear(s)
	if got := s.Ledger.Stock[economy.Wood]; !near(got, before+carried) {
		t.Errorf("wood after cancel = %v, want %v", got, before+carried)
	}
	if g.Carried() != 0 {
		t.Errorf("carried after cancel = %v, want 0", g.Carried())
	}

	g.cancel(s, w)
	w.clear(s)
	if got := s.Ledger.Stock[economy.Wood]; !near(got, before+carried) {
		t.Errorf("wood after second cancel = %v, want %v", got, before+carried)
	}
}

func TestRejectedFarmKeepsPlan(t *testing.T) {
	s := newTestSim()
	e := NewEngine(s, 0)
	w := s.Workers[5]
	home := world.Origin
	for i := 0; i < homeFieldCap*farmersPerField; i++ {
		if _, err := s.assignFarmer(&home); err != nil {
			t.Fatal(err)
		}
	}

	steps(t, e, 1, func(s *Simulation) error {
		return s.Walk([]*Actor{w}, world.Pos(0, 20), false)
	})
	if err := s.Farm([]*Actor{w}, &home, false); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Farm on a full drop-site err = %v, want ErrPrecondition", err)
	}
	if w.ActionName() != OpWalk {
		t.Errorf("worker is %s after rejected farm, want walk", w.ActionName())
	}
}

func TestReorderedFarmerReleasesSlot(t *testing.T) {
	tests := []struct {
		name string
		site world.Position
		on   string // action on top when re-ordered
	}{
		{"walking", world.Pos(0, 10), OpWalk},
		{"building fields", world.Origin, "build field"},
		{"building farmstead", world.Pos(0, 2), "build farmstead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim()
			e := NewEngine(s, 0)
			w := s.Workers[5]
			site := tt.site

			steps(t, e, 1, func(s *Simulation) error {
				return s.Farm([]*Actor{w}, &site, false)
			})
			for i := 0; i < 20 && w.ActionName() != tt.on; i++ {
				steps(t, e, 1, nil)
			}
			if w.ActionName() != tt.on {
				t.Fatalf("farmer is %s, want %s", w.ActionName(), tt.on)
			}
			if assigned, _ := s.FarmAllocation(site); assigned != 1 {
				t.Fatalf("assigned = %d, want 1", assigned)
			}

			if err := s.Walk([]*Actor{w}, world.Pos(1, 1), false); err != nil {
				t.Fatal(err)
			}
			if assigned, _ := s.FarmAllocation(site); assigned != 0 {
				t.Errorf("assigned after re-order = %d, want 0", assigned)
			}
			w.clear(s)
			if assigned, _ := s.FarmAllocation(site); assigned != 0 {
				t.Errorf("assigned after second clear = %d, want 0", assigned)
			}
		})
	}
}
