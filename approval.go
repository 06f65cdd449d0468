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

package dealdesk

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dealdeskhq/dealdesk/internal/apierror"
	redlock "github.com/dealdeskhq/dealdesk/internal/lock"
	"github.com/dealdeskhq/dealdesk/internal/notification"
	"github.com/dealdeskhq/dealdesk/model"
)

var tracer = otel.Tracer("Approval pipeline")

// logAndRecordError logs an operational error and attaches it to the active span.
func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}

const (
	pipelineLockTimeout = 10 * time.Second
	pipelineLockWait    = 5 * time.Second
	pipelineCacheTTL    = 5 * time.Minute
)

func pipelineCacheKey(dealID string) string {
	return fmt.Sprintf("pipeline-status:%s", dealID)
}

// lockPipeline serializes status mutations on one deal's pipeline so
// concurrent reviewers never interleave read-modify-write cycles.
func (d *Dealdesk) lockPipeline(ctx context.Context, dealID string) (*redlock.Locker, error) {
	locker := redlock.NewLocker(d.redis, fmt.Sprintf("pipeline-lock:%s", dealID), model.GenerateUUIDWithSuffix("lock"))
	if err := locker.WaitLock(ctx, pipelineLockTimeout, pipelineLockWait); err != nil {
		return nil, err
	}
	return locker, nil
}

func (d *Dealdesk) invalidatePipelineCache(dealID string) error {
	return d.cache.Delete(context.Background(), pipelineCacheKey(dealID))
}

// SubmitForApproval builds (or rebuilds) a deal's approval pipeline from its
// current commercial terms. Requirements that were already acted on keep
// their recorded decisions; membership and dependency shape come from the
// regenerated set.
func (d *Dealdesk) SubmitForApproval(ctx context.Context, dealID string) ([]model.ApprovalRequirement, error) {
	ctx, span := tracer.Start(ctx, "Submitting deal for approval")
	defer span.End()

	locker, err := d.lockPipeline(ctx, dealID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire pipeline lock: ", err)
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Error(err)
		}
	}()

	deal, err := d.datasource.GetDealByID(dealID)
	if err != nil {
		return nil, err
	}

	desired := d.policy.GenerateRequirements(deal.DealID, deal.TotalValue, deal.DealType, deal.SalesChannel, deal.Incentives)

	existing, err := d.datasource.GetRequirementsByDealID(dealID)
	if err != nil {
		return nil, err
	}

	merged := model.MergeRequirements(existing, desired)
	if err := d.datasource.UpsertRequirements(dealID, merged); err != nil {
		return nil, logAndRecordError(span, "failed to persist requirements: ", err)
	}
	span.AddEvent("pipeline requirements persisted")

	if err := d.invalidatePipelineCache(dealID); err != nil {
		logrus.Error(err)
	}
	d.postApprovalActions(EventApprovalSubmitted, merged)

	return merged, nil
}

// ListRequirements returns the stored requirement set for a deal.
func (d *Dealdesk) ListRequirements(dealID string) ([]model.ApprovalRequirement, error) {
	return d.datasource.GetRequirementsByDealID(dealID)
}

// ApproveRequirement records a department's approval. When the approval
// settles the last open requirement, the pipeline-completed event fires.
func (d *Dealdesk) ApproveRequirement(ctx context.Context, requirementID string) (*model.ApprovalRequirement, error) {
	requirement, err := d.mutateRequirement(ctx, requirementID, func(r *model.ApprovalRequirement) error {
		return r.Approve()
	})
	if err != nil {
		return nil, err
	}

	d.postApprovalActions(EventRequirementApproved, requirement)

	requirements, err := d.datasource.GetRequirementsByDealID(requirement.DealID)
	if err != nil {
		return requirement, nil
	}
	if d.policy.EvaluatePipeline(requirements).OverallStatus == model.OverallCompleted {
		d.postApprovalActions(EventPipelineCompleted, requirements)
	}

	return requirement, nil
}

// RequestRevision sends a requirement back to the submitter with a comment
// explaining what to fix.
func (d *Dealdesk) RequestRevision(ctx context.Context, requirementID, comment string) (*model.ApprovalRequirement, error) {
	if comment == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "A revision comment is required", nil)
	}

	requirement, err := d.mutateRequirement(ctx, requirementID, func(r *model.ApprovalRequirement) error {
		return r.RequestRevision(comment)
	})
	if err != nil {
		return nil, err
	}

	d.postApprovalActions(EventRevisionRequested, requirement)
	return requirement, nil
}

// ResetForRevision returns a revision-requested requirement to pending once
// the submitter has addressed the feedback, re-opening it for review.
func (d *Dealdesk) ResetForRevision(ctx context.Context, requirementID string) (*model.ApprovalRequirement, error) {
	requirement, err := d.mutateRequirement(ctx, requirementID, func(r *model.ApprovalRequirement) error {
		return r.ResetForRevision()
	})
	if err != nil {
		return nil, err
	}

	d.postApprovalActions(EventRevisionReset, requirement)
	return requirement, nil
}

// GetPipelineStatus evaluates a deal's pipeline, serving repeated dashboard
// reads from cache between status changes.
func (d *Dealdesk) GetPipelineStatus(ctx context.Context, dealID string) (*model.PipelineStatus, error) {
	var cached model.PipelineStatus
	if err := d.cache.Get(ctx, pipelineCacheKey(dealID), &cached); err == nil && cached.OverallStatus != "" {
		return &cached, nil
	}

	requirements, err := d.datasource.GetRequirementsByDealID(dealID)
	if err != nil {
		return nil, err
	}

	status := d.policy.EvaluatePipeline(requirements)
	if err := d.cache.Set(ctx, pipelineCacheKey(dealID), status, pipelineCacheTTL); err != nil {
		logrus.Error(err)
	}
	return &status, nil
}

// mutateRequirement runs a state transition on one requirement under the
// deal's pipeline lock and persists the outcome.
func (d *Dealdesk) mutateRequirement(ctx context.Context, requirementID string, transition func(*model.ApprovalRequirement) error) (*model.ApprovalRequirement, error) {
	ctx, span := tracer.Start(ctx, "Updating requirement status")
	defer span.End()

	requirement, err := d.datasource.GetRequirementByID(requirementID)
	if err != nil {
		return nil, err
	}

	locker, err := d.lockPipeline(ctx, requirement.DealID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Error(err)
		}
	}()

	// Re-read under the lock so two reviewers acting at once cannot both
	// observe pending.
	requirement, err = d.datasource.GetRequirementByID(requirementID)
	if err != nil {
		return nil, err
	}

	if err := transition(requirement); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrConflict, err.Error(), err)
	}

	if err := d.datasource.UpdateRequirementStatus(requirement); err != nil {
		return nil, logAndRecordError(span, "failed to update requirement status: ", err)
	}
	span.AddEvent("requirement status updated")

	if err := d.invalidatePipelineCache(requirement.DealID); err != nil {
		logrus.Error(err)
	}
	return requirement, nil
}

func (d *Dealdesk) postApprovalActions(event string, payload interface{}) {
	go func() {
		if err := SendWebhook(NewWebhook{Event: event, Payload: payload}); err != nil {
			notification.NotifyError(err)
		}
	}()
}
