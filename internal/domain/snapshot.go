package domain

// Position is one valued holding inside a treasury snapshot.
type Position struct {
	Token    string  `json:"token"`
	Balance  float64 `json:"balance"`
	USDValue float64 `json:"usdValue"`
}

// TreasurySnapshot is a point-in-time valuation of an address's holdings.
// Snapshots are value objects: built once per scan, never mutated.
type TreasurySnapshot struct {
	Address       string     `json:"address"`
	TotalUSDValue float64    `json:"totalUsdValue"`
	Positions     []Position `json:"positions"`
}

// NewTreasurySnapshot builds a snapshot whose total is the sum of its position
// values, making the total/positions invariant hold by construction.
func NewTreasurySnapshot(address string, positions []Position) TreasurySnapshot {
	var total float64
	for _, p := range positions {
		total += p.USDValue
	}
	return TreasurySnapshot{
		Address:       address,
		TotalUSDValue: total,
		Positions:     positions,
	}
}
