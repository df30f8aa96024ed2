package models

// Requests for the dashboard HTTP endpoints. Defined in domain for
// consistency and reuse.

type PlanRequest struct {
	Total int64   `query:"total" json:"total" default:"30000000" validate:"gte=0"`
	Rate  float64 `query:"rate" json:"rate" validate:"gte=0"`
}

type AlertsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
}

type HistoryAppendRequest struct {
	Total int64   `query:"total" json:"total" default:"30000000" validate:"gte=0"`
	Rate  float64 `query:"rate" json:"rate" validate:"gte=0"`
}
