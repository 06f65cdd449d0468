package database

import "github.com/dealdeskhq/dealdesk/model"

type IDataSource interface {
	deal
	requirement
}

type deal interface {
	CreateDeal(deal model.Deal) (model.Deal, error)
	GetDealByID(id string) (*model.Deal, error)
	GetAllDeals() ([]model.Deal, error)
	UpdateDealCommercials(deal *model.Deal) error
}

type requirement interface {
	UpsertRequirements(dealID string, requirements []model.ApprovalRequirement) error
	GetRequirementByID(id string) (*model.ApprovalRequirement, error)
	GetRequirementsByDealID(dealID string) ([]model.ApprovalRequirement, error)
	UpdateRequirementStatus(requirement *model.ApprovalRequirement) error
}
