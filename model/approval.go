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
	"fmt"
	"time"
)

const (
	StatusPending           = "pending"
	StatusApproved          = "approved"
	StatusRevisionRequested = "revision_requested"
)

const (
	OverallPending           = "pending"
	OverallInProgress        = "in_progress"
	OverallCompleted         = "completed"
	OverallRevisionRequested = "revision_requested"
)

// ApprovalRequirement is one department's review obligation for one stage of
// one deal. Its identity is deterministic: regenerating the pipeline for the
// same deal always produces the same requirement IDs.
type ApprovalRequirement struct {
	ID             int64          `json:"-"`
	RequirementID  string         `json:"requirement_id"`
	DealID         string         `json:"deal_id"`
	Stage          StageCode      `json:"stage"`
	Department     DepartmentCode `json:"department"`
	Status         string         `json:"status"`
	RequiredFor    []string       `json:"required_for"`
	CanRunParallel bool           `json:"can_run_parallel"`
	Dependencies   []string       `json:"dependencies"`
	ApproverTier   ApproverTier   `json:"approver_tier,omitempty"`
	EstimatedTime  string         `json:"estimated_time"`
	Comments       string         `json:"comments,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// RequirementID builds the deterministic identity for a deal/stage/department
// combination.
func RequirementID(dealID string, stage StageCode, department DepartmentCode) string {
	return fmt.Sprintf("req_%s_%s_%s", dealID, stage, department)
}

// Approve marks a pending requirement as approved. Approval is terminal.
func (r *ApprovalRequirement) Approve() error {
	if r.Status != StatusPending {
		return fmt.Errorf("requirement %s cannot move from %s to %s", r.RequirementID, r.Status, StatusApproved)
	}
	now := time.Now()
	r.Status = StatusApproved
	r.CompletedAt = &now
	return nil
}

// RequestRevision marks a pending requirement as needing changes. The comment
// tells the submitter what to fix.
func (r *ApprovalRequirement) RequestRevision(comment string) error {
	if r.Status != StatusPending {
		return fmt.Errorf("requirement %s cannot move from %s to %s", r.RequirementID, r.Status, StatusRevisionRequested)
	}
	now := time.Now()
	r.Status = StatusRevisionRequested
	r.CompletedAt = &now
	r.Comments = comment
	return nil
}

// ResetForRevision returns a revision-requested requirement to pending for
// re-review. There is no direct path from revision_requested to approved;
// a revised requirement always cycles back through pending.
func (r *ApprovalRequirement) ResetForRevision() error {
	if r.Status != StatusRevisionRequested {
		return fmt.Errorf("requirement %s cannot be reset from %s", r.RequirementID, r.Status)
	}
	r.Status = StatusPending
	r.CompletedAt = nil
	return nil
}

// StageProgress is the aggregated view of one stage.
type StageProgress struct {
	Stage          StageCode `json:"stage"`
	DisplayName    string    `json:"display_name"`
	Status         string    `json:"status"`
	CompletedCount int       `json:"completed_count"`
	TotalCount     int       `json:"total_count"`
	Progress       int       `json:"progress"`
}

// PipelineStatus is a transient projection over a deal's requirement set.
// It is recomputed on demand and never stored.
type PipelineStatus struct {
	OverallStatus string                `json:"overall_status"`
	CurrentStage  StageCode             `json:"current_stage"`
	Stages        []StageProgress       `json:"stages"`
	Bottlenecks   []ApprovalRequirement `json:"bottlenecks"`
	NextActions   []string              `json:"next_actions"`
}
