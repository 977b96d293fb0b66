// Production — batch training of units and single-item research, both paid
// in full when their timer starts and refunded if cancelled mid-timer.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/boomsim/internal/economy"
)

// batchExponent makes larger batches cheaper per unit in time.
const batchExponent = 0.8

// BatchDuration returns the ticks needed to train count units that take
// unitTime each alone: ceil(unitTime × count^0.8).
func BatchDuration(unitTime float64, count int) int {
	return int(math.Ceil(unitTime * math.Pow(float64(count), batchExponent)))
}

// Train produces batches of Unit at a building.
type Train struct {
	Unit        string
	Requested   int
	Waypoint    Waypoint
	Repeating   bool
	MaxBatching bool

	recipe   economy.Recipe
	count    int // Size of the batch in progress
	duration int
	timer    int
}

func (t *Train) Name() string { return "train " + t.Unit }

// Batch returns the size of the batch in progress, or 0 between batches.
func (t *Train) Batch() int {
	if t.timer == 0 {
		return 0
	}
	return t.count
}

// Timer returns the ticks spent on the current batch.
func (t *Train) Timer() int { return t.timer }

// Duration returns the ticks the current batch needs.
func (t *Train) Duration() int { return t.duration }

func (t *Train) act(s *Simulation, b *Actor) error {
	if t.timer == 0 {
		t.count = t.Requested
		if t.MaxBatching {
			t.count = min(economy.MaxBatch(s.Ledger.Stock, t.recipe.Cost, s.Ledger.Headroom()), t.Requested)
		}
		t.duration = BatchDuration(t.recipe.Duration, t.count)
		s.Ledger.Spend(t.recipe.Cost, t.count)
		s.Ledger.Pop += t.count
	}
	t.timer++
	if t.timer <= t.duration {
		return nil
	}

	for i := 0; i < t.count; i++ {
		u := s.spawnUnit(t.Unit, b.Position)
		if err := s.dispatch(b, u, t.Waypoint); err != nil {
			return fmt.Errorf("%s waypoint: %w", b.Kind, err)
		}
	}
	if t.count > 0 {
		s.record("train", fmt.Sprintf("%s trained %d %s", b.Kind, t.count, t.Unit), "count", t.count)
	}
	t.timer = 0
	if !t.Repeating {
		b.pop()
	}
	return nil
}

func (t *Train) cancel(s *Simulation, b *Actor) {
	if t.timer == 0 {
		return
	}
	s.Ledger.Refund(t.recipe.Cost, t.count)
	s.Ledger.Pop -= t.count
	t.timer = 0
}

// Research unlocks Tech at a building.
type Research struct {
	Tech string

	recipe economy.Recipe
	timer  int
}

func (r *Research) Name() string { return "research " + r.Tech }

// Timer returns the ticks spent so far.
func (r *Research) Timer() int { return r.timer }

func (r *Research) act(s *Simulation, b *Actor) error {
	if r.timer == 0 {
		s.Ledger.Spend(r.recipe.Cost, 1)
	}
	r.timer++
	if float64(r.timer) > r.recipe.Duration {
		s.Upgrades.Add(r.Tech)
		s.record("research", fmt.Sprintf("%s researched %s", b.Kind, r.Tech))
		slog.Info("research complete", "tech", r.Tech, "time", SimTime(s.Time))
		b.pop()
	}
	return nil
}

func (r *Research) cancel(s *Simulation, b *Actor) {
	if r.timer == 0 {
		return
	}
	s.Ledger.Refund(r.recipe.Cost, 1)
	r.timer = 0
}
