package models

import "time"

// TradeDateSummary describes what has been persisted for a single trade date.
//
// Fields:
//   - TradeDate: the bulletin session date.
//   - Rows: number of persisted records for that date.
//   - Volume: sum of contract volume in units of measure.
//   - Total: sum of contract value.
//   - Count: sum of contract counts.
//
// swagger:model TradeDateSummary
type TradeDateSummary struct {
	TradeDate time.Time `json:"trade_date" example:"2024-03-15T00:00:00Z"`
	Rows      int64     `json:"rows" example:"412"`
	Volume    float64   `json:"volume" example:"125000"`
	Total     float64   `json:"total" example:"8450000000"`
	Count     int64     `json:"count" example:"950"`
}
