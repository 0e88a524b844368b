package dto

import (
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

// TradingResultResponse is one row of GET /api/v1/trading-results.
//
// Optional numeric columns are rendered as null when the bulletin cell was empty.
type TradingResultResponse struct {
	ExchangeProductID   string   `json:"exchange_product_id" example:"A100ANK060F"`
	ExchangeProductName string   `json:"exchange_product_name" example:"Бензин (АИ-100-К5), ст. Ангарск-группа станций"`
	OilID               *string  `json:"oil_id" example:"A100"`
	DeliveryBasisID     string   `json:"delivery_basis_id" example:"ANK"`
	DeliveryBasisName   string   `json:"delivery_basis_name" example:""`
	DeliveryTypeID      *string  `json:"delivery_type_id"`
	Volume              *float64 `json:"volume" example:"60"`
	Total               *float64 `json:"total" example:"4500000"`
	Count               *int64   `json:"count" example:"1"`
	TradeDate           string   `json:"trade_date" example:"2024-03-15"`
}

// TradingResultsResponse wraps every row persisted for a trade date.
type TradingResultsResponse struct {
	TradeDate string                  `json:"trade_date" example:"2024-03-15"`
	Count     int                     `json:"count" example:"1"`
	Results   []TradingResultResponse `json:"results"`
}

// TradingDatesResponse lists the most recent ingested trade dates.
type TradingDatesResponse struct {
	Dates []models.TradeDateSummary `json:"dates"`
}

// NewTradingResultsResponse maps domain records into the API shape.
func NewTradingResultsResponse(date time.Time, recs []models.TradeRecord) TradingResultsResponse {
	out := TradingResultsResponse{
		TradeDate: date.Format(time.DateOnly),
		Count:     len(recs),
		Results:   make([]TradingResultResponse, 0, len(recs)),
	}
	for _, r := range recs {
		out.Results = append(out.Results, TradingResultResponse{
			ExchangeProductID:   r.ExchangeProductID,
			ExchangeProductName: r.ExchangeProductName,
			OilID:               r.OilID,
			DeliveryBasisID:     r.DeliveryBasisID,
			DeliveryBasisName:   r.DeliveryBasisName,
			DeliveryTypeID:      r.DeliveryTypeID,
			Volume:              r.Volume,
			Total:               r.Total,
			Count:               r.Count,
			TradeDate:           r.TradeDate.Format(time.DateOnly),
		})
	}
	return out
}
