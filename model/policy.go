/*
Copyright 2025 Dealdesk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import "github.com/shopspring/decimal"

// DepartmentCode identifies a reviewing team.
type DepartmentCode string

const (
	DepartmentFinance   DepartmentCode = "finance"
	DepartmentTrading   DepartmentCode = "trading"
	DepartmentProduct   DepartmentCode = "product"
	DepartmentCreative  DepartmentCode = "creative"
	DepartmentAnalytics DepartmentCode = "analytics"
)

// StageCode identifies an ordered phase of the approval pipeline.
type StageCode string

const (
	StageIncentiveReview StageCode = "incentive_review"
	StageMarginReview    StageCode = "margin_review"
	StageFinalReview     StageCode = "final_review"
)

// ApproverTier is the seniority level required for final sign-off.
type ApproverTier string

const (
	TierMD        ApproverTier = "MD"
	TierExecutive ApproverTier = "Executive"
)

// DepartmentDef describes a reviewing department and the incentive tags
// that pull it into a deal's pipeline.
type DepartmentDef struct {
	Code           DepartmentCode `json:"code"`
	DisplayName    string         `json:"display_name"`
	ContactChannel string         `json:"contact_channel"`
	TriggerTags    []string       `json:"trigger_tags"`
}

// StageDef describes one phase of the pipeline.
type StageDef struct {
	Code          StageCode        `json:"code"`
	DisplayName   string           `json:"display_name"`
	Parallel      bool             `json:"parallel"`
	Departments   []DepartmentCode `json:"departments"`
	EstimatedTime string           `json:"estimated_time"`
}

// PipelinePolicy carries the configuration tables that drive department
// resolution, requirement generation and escalation. Production code uses
// DefaultPolicy; tests substitute their own tables and thresholds.
type PipelinePolicy struct {
	Departments []DepartmentDef `json:"departments"`
	Stages      []StageDef      `json:"stages"`

	// ExecutiveThreshold is the director-level ceiling. Deals at or above
	// this total value require Executive sign-off.
	ExecutiveThreshold decimal.Decimal `json:"executive_threshold"`

	// StandardDealType is the only deal type that does not escalate on its own.
	StandardDealType string `json:"standard_deal_type"`

	// HoldingChannels lists the sales channels that always escalate.
	HoldingChannels []string `json:"holding_channels"`
}

// DefaultPolicy returns the production approval tables.
func DefaultPolicy() PipelinePolicy {
	return PipelinePolicy{
		Departments: []DepartmentDef{
			{
				Code:           DepartmentFinance,
				DisplayName:    "Finance",
				ContactChannel: "#finance-approvals",
				TriggerTags:    []string{"financial_incentive", "rebate", "payment_terms"},
			},
			{
				Code:           DepartmentTrading,
				DisplayName:    "Trading",
				ContactChannel: "#trading-desk",
				TriggerTags:    []string{"margin_incentive", "inventory_commitment"},
			},
			{
				Code:           DepartmentProduct,
				DisplayName:    "Product",
				ContactChannel: "#product-reviews",
				TriggerTags:    []string{"product_incentive", "beta_access"},
			},
			{
				Code:           DepartmentCreative,
				DisplayName:    "Creative Services",
				ContactChannel: "#creative-studio",
				TriggerTags:    []string{"creative_incentive", "added_value_media"},
			},
			{
				Code:           DepartmentAnalytics,
				DisplayName:    "Analytics",
				ContactChannel: "#analytics-support",
				TriggerTags:    []string{"data_incentive", "measurement_study"},
			},
		},
		Stages: []StageDef{
			{
				Code:          StageIncentiveReview,
				DisplayName:   "Incentive Review",
				Parallel:      true,
				Departments:   []DepartmentCode{DepartmentFinance},
				EstimatedTime: "1-2 business days",
			},
			{
				Code:          StageMarginReview,
				DisplayName:   "Margin Review",
				Parallel:      false,
				Departments:   []DepartmentCode{DepartmentTrading},
				EstimatedTime: "2-3 business days",
			},
			{
				Code:          StageFinalReview,
				DisplayName:   "Final Review",
				Parallel:      false,
				Departments:   []DepartmentCode{DepartmentFinance},
				EstimatedTime: "1-5 business days",
			},
		},
		ExecutiveThreshold: decimal.NewFromInt(500000),
		StandardDealType:   "grow",
		HoldingChannels:    []string{"holding_company"},
	}
}

// Department returns the definition for a department code.
func (p PipelinePolicy) Department(code DepartmentCode) (DepartmentDef, bool) {
	for _, d := range p.Departments {
		if d.Code == code {
			return d, true
		}
	}
	return DepartmentDef{}, false
}

// Stage returns the definition for a stage code.
func (p PipelinePolicy) Stage(code StageCode) (StageDef, bool) {
	for _, s := range p.Stages {
		if s.Code == code {
			return s, true
		}
	}
	return StageDef{}, false
}

// StageIndex returns the position of a stage in pipeline order, or -1 for
// stages the policy does not know about.
func (p PipelinePolicy) StageIndex(code StageCode) int {
	for i, s := range p.Stages {
		if s.Code == code {
			return i
		}
	}
	return -1
}
