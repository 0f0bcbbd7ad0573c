package service

import (
	"errors"
	"math"
	"math/big"
	"sync"
)

var ErrTallyOverflow = errors.New("tally sum overflows int64")

// Tally is the process wide, append-only sequence of ballots. It is shared by
// every proposal; nothing in the service ever clears it.
type Tally struct {
	mu      sync.Mutex
	ballots []int64
}

func NewTally() *Tally {
	return &Tally{ballots: make([]int64, 0)}
}

// Append adds a ballot.
func (t *Tally) Append(v int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ballots = append(t.ballots, v)
}

// Sum returns the arithmetic sum of all ballots, or ErrTallyOverflow when it
// does not fit in an int64.
func (t *Tally) Sum() (int64, error) {
	sum, _, err := t.Snapshot()
	return sum, err
}

// Snapshot returns the sum and the number of ballots as of a single instant.
func (t *Tally) Snapshot() (int64, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sum, err := checkedSum(t.ballots)
	return sum, len(t.ballots), err
}

// Len returns the number of ballots counted so far.
func (t *Tally) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ballots)
}

// Ballots returns a copy of the ballots in arrival order.
func (t *Tally) Ballots() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]int64, len(t.ballots))
	copy(out, t.ballots)
	return out
}

// checkedSum adds in int64 and only falls back to big.Int when a partial
// sum leaves the range, since later ballots may bring it back.
func checkedSum(ballots []int64) (int64, error) {
	var sum int64
	for _, v := range ballots {
		if (v > 0 && sum > math.MaxInt64-v) || (v < 0 && sum < math.MinInt64-v) {
			return bigSum(ballots)
		}
		sum += v
	}
	return sum, nil
}

func bigSum(ballots []int64) (int64, error) {
	total := new(big.Int)
	for _, v := range ballots {
		total.Add(total, big.NewInt(v))
	}
	if !total.IsInt64() {
		return 0, ErrTallyOverflow
	}
	return total.Int64(), nil
}
