package model

import (
	"github.com/shopspring/decimal"

	"github.com/dealdeskhq/dealdesk/model"
)

type IncentiveLineItem struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Value       decimal.Decimal        `json:"value"`
	MetaData    map[string]interface{} `json:"meta_data"`
}

type CreateDeal struct {
	Name         string                 `json:"name"`
	TotalValue   decimal.Decimal        `json:"total_value"`
	DealType     string                 `json:"deal_type"`
	SalesChannel string                 `json:"sales_channel"`
	Incentives   []IncentiveLineItem    `json:"incentives"`
	MetaData     map[string]interface{} `json:"meta_data"`
}

type UpdateDealCommercials struct {
	TotalValue   decimal.Decimal     `json:"total_value"`
	DealType     string              `json:"deal_type"`
	SalesChannel string              `json:"sales_channel"`
	Incentives   []IncentiveLineItem `json:"incentives"`
}

func toIncentives(items []IncentiveLineItem) []model.IncentiveLineItem {
	incentives := make([]model.IncentiveLineItem, 0, len(items))
	for _, item := range items {
		incentives = append(incentives, model.IncentiveLineItem{
			Type:        item.Type,
			Description: item.Description,
			Value:       item.Value,
			MetaData:    item.MetaData,
		})
	}
	return incentives
}

func (d *CreateDeal) ToDeal() model.Deal {
	return model.Deal{
		Name:         d.Name,
		TotalValue:   d.TotalValue,
		DealType:     d.DealType,
		SalesChannel: d.SalesChannel,
		Incentives:   toIncentives(d.Incentives),
		MetaData:     d.MetaData,
	}
}

func (u *UpdateDealCommercials) ToDeal(dealID string) model.Deal {
	return model.Deal{
		DealID:       dealID,
		TotalValue:   u.TotalValue,
		DealType:     u.DealType,
		SalesChannel: u.SalesChannel,
		Incentives:   toIncentives(u.Incentives),
	}
}
