package domain

// Snapshot describes the ledger after one price observation: the position
// opened during the call (if any), the positions closed during the call, and
// the full position list in chronological buy order. The slices are copies;
// callers may not reach the ledger's internal state through them.
type Snapshot struct {
	Sample    PriceSample
	Opened    *Position
	Closed    []Position
	Positions []Position
}

// OpenCount returns the number of positions still open.
func (s Snapshot) OpenCount() int {
	n := 0
	for _, p := range s.Positions {
		if p.IsOpen() {
			n++
		}
	}
	return n
}
