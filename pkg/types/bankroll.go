package types

// BankrollState is a read-only snapshot of the bankroll ledger.
// Currency amounts are in the configured currency, units in stake units.
type BankrollState struct {
	StartingBankroll  float64 `json:"starting_bankroll"`
	UnitValue         float64 `json:"unit_value"`
	Balance           float64 `json:"balance"`
	RealizedUnits     float64 `json:"realized_units"`
	RealizedPL        float64 `json:"realized_pl"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Pushes            int     `json:"pushes"`
	SettledStakeUnits float64 `json:"settled_stake_units"`
	ROI               float64 `json:"roi"`
}
