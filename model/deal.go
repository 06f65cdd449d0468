package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncentiveLineItem is one incentive attached to a deal. Only the type tag
// participates in department resolution; everything else is advisory.
type IncentiveLineItem struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Value       decimal.Decimal        `json:"value"`
	MetaData    map[string]interface{} `json:"meta_data,omitempty"`
}

// Deal is the commercial record an approval pipeline is attached to.
type Deal struct {
	ID           int64                  `json:"-"`
	DealID       string                 `json:"deal_id"`
	Name         string                 `json:"name"`
	TotalValue   decimal.Decimal        `json:"total_value"`
	DealType     string                 `json:"deal_type"`
	SalesChannel string                 `json:"sales_channel"`
	Incentives   []IncentiveLineItem    `json:"incentives"`
	MetaData     map[string]interface{} `json:"meta_data"`
	CreatedAt    time.Time              `json:"created_at"`
}
