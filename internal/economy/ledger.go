package economy

import "math"

// Ledger is the player's shared economic state: the stockpile, this tick's
// gathered income, and population counters.
type Ledger struct {
	Stock  Resources `json:"stock"`
	Income Resources `json:"income"` // Gathered during the current tick
	Pop    int       `json:"pop"`
	MaxPop int       `json:"max_pop"`
}

// NewLedger creates a ledger with the given starting stock and population.
func NewLedger(start Resources, pop, maxPop int) *Ledger {
	return &Ledger{Stock: start, Pop: pop, MaxPop: maxPop}
}

// Spend deducts count copies of cost from the stock. The stock is allowed to
// go negative; callers check for underflow at the tick boundary.
func (l *Ledger) Spend(cost Resources, count int) {
	l.Stock.Add(cost, -float64(count))
}

// Refund returns count copies of cost to the stock.
func (l *Ledger) Refund(cost Resources, count int) {
	l.Stock.Add(cost, float64(count))
}

// Deposit adds a gathered amount of one resource to the stock.
func (l *Ledger) Deposit(r ResourceType, qty float64) {
	l.Stock[r] += qty
}

// RecordIncome notes qty of r gathered this tick (reporting only).
func (l *Ledger) RecordIncome(r ResourceType, qty float64) {
	l.Income[r] += qty
}

// ResetIncome clears the per-tick income accumulator.
func (l *Ledger) ResetIncome() {
	l.Income = Resources{}
}

// Headroom returns the free population capacity, never negative.
func (l *Ledger) Headroom() int {
	if l.Pop >= l.MaxPop {
		return 0
	}
	return l.MaxPop - l.Pop
}

// Overpopulated returns true if population exceeds capacity.
func (l *Ledger) Overpopulated() bool {
	return l.Pop > l.MaxPop
}

// MaxBatch returns how many units costing cost each can be paid for from
// stock without exceeding headroom. A zero-cost resource imposes no limit.
func MaxBatch(stock, cost Resources, headroom int) int {
	limit := float64(headroom)
	for i, c := range cost {
		if c <= 0 {
			continue
		}
		n := math.Floor(stock[i] / c)
		if n < limit {
			limit = n
		}
	}
	if limit < 0 {
		return 0
	}
	return int(limit)
}
