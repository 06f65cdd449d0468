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

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	estimatedTimeMDFinal        = "1 business day"
	estimatedTimeExecutiveFinal = "3-5 business days"
)

// RequiredApproverTier applies the final-approver rule. Any one trigger
// escalates to Executive: total value at or above the director-level ceiling,
// a non-standard deal type, or a holding-company sales channel. Unrecognized
// deal types and channels fall through to the non-escalating branch.
func (p PipelinePolicy) RequiredApproverTier(totalValue decimal.Decimal, dealType, salesChannel string) ApproverTier {
	if totalValue.GreaterThanOrEqual(p.ExecutiveThreshold) {
		return TierExecutive
	}
	if dealType != p.StandardDealType {
		return TierExecutive
	}
	for _, ch := range p.HoldingChannels {
		if ch == salesChannel {
			return TierExecutive
		}
	}
	return TierMD
}

// GenerateRequirements builds the full approval pipeline for a deal: which
// requirements exist, which stage and department owns each, and how they
// depend on one another.
//
// The output is deterministic: identical inputs always produce the same
// requirement identities, dependency sets and ordering, which makes
// regeneration idempotent.
//
// Each stage currently carries a single requirement. The resolved department
// set informs the incentive-review coverage tags, but finance acts as the
// proxy reviewer for the incentive stage and for final sign-off; trading owns
// margin review. See TestGenerateRequirements_SingleFinanceRequirementPerStage.
func (p PipelinePolicy) GenerateRequirements(dealID string, totalValue decimal.Decimal, dealType, salesChannel string, items []IncentiveLineItem) []ApprovalRequirement {
	tier := p.RequiredApproverTier(totalValue, dealType, salesChannel)
	now := time.Now()

	incentiveID := RequirementID(dealID, StageIncentiveReview, DepartmentFinance)
	marginID := RequirementID(dealID, StageMarginReview, DepartmentTrading)
	finalID := RequirementID(dealID, StageFinalReview, DepartmentFinance)

	incentiveStage, _ := p.Stage(StageIncentiveReview)
	marginStage, _ := p.Stage(StageMarginReview)

	finalEstimate := estimatedTimeMDFinal
	if tier == TierExecutive {
		finalEstimate = estimatedTimeExecutiveFinal
	}

	return []ApprovalRequirement{
		{
			RequirementID:  incentiveID,
			DealID:         dealID,
			Stage:          StageIncentiveReview,
			Department:     DepartmentFinance,
			Status:         StatusPending,
			RequiredFor:    incentiveTags(items),
			CanRunParallel: incentiveStage.Parallel,
			Dependencies:   []string{},
			EstimatedTime:  incentiveStage.EstimatedTime,
			CreatedAt:      now,
		},
		{
			RequirementID:  marginID,
			DealID:         dealID,
			Stage:          StageMarginReview,
			Department:     DepartmentTrading,
			Status:         StatusPending,
			RequiredFor:    []string{"margin", "profitability"},
			CanRunParallel: marginStage.Parallel,
			Dependencies:   []string{incentiveID},
			EstimatedTime:  marginStage.EstimatedTime,
			CreatedAt:      now,
		},
		{
			RequirementID:  finalID,
			DealID:         dealID,
			Stage:          StageFinalReview,
			Department:     DepartmentFinance,
			Status:         StatusPending,
			RequiredFor:    []string{"final_signoff"},
			CanRunParallel: false,
			Dependencies:   []string{incentiveID, marginID},
			ApproverTier:   tier,
			EstimatedTime:  finalEstimate,
			CreatedAt:      now,
		},
	}
}

// incentiveTags collects the distinct incentive types present on a deal, in
// sorted order. Falls back to a generic tag when the deal carries no typed
// incentives so the requirement still reads sensibly in messages.
func incentiveTags(items []IncentiveLineItem) []string {
	seen := map[string]bool{}
	for _, item := range items {
		if item.Type != "" {
			seen[item.Type] = true
		}
	}
	if len(seen) == 0 {
		return []string{"incentive_terms"}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
