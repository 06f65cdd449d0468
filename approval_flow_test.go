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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/dealdeskhq/dealdesk/internal/apierror"
	"github.com/dealdeskhq/dealdesk/model"
)

var requirementColumns = []string{
	"requirement_id", "deal_id", "stage", "department", "status",
	"required_for", "can_run_parallel", "dependencies", "approver_tier",
	"estimated_time", "comments", "created_at", "completed_at",
}

func pendingRequirementRow(rows *sqlmock.Rows, dealID string, stage model.StageCode, department model.DepartmentCode, deps string) *sqlmock.Rows {
	return rows.AddRow(
		model.RequirementID(dealID, stage, department), dealID, string(stage), string(department), model.StatusPending,
		[]byte(`["incentive_terms"]`), true, []byte(deps), nil,
		"1-2 business days", nil, time.Now(), nil,
	)
}

func TestSubmitForApproval_GeneratesPipeline(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_7f1a"

	dealRows := sqlmock.NewRows([]string{"deal_id", "name", "total_value", "deal_type", "sales_channel", "incentives", "meta_data", "created_at"}).
		AddRow(dealID, "Q3 retail push", "250000", "grow", "direct", []byte(`[{"type":"financial_incentive","description":"Volume rebate","value":"50000"}]`), []byte(`{}`), time.Now())

	mock.ExpectQuery("SELECT deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data, created_at FROM dealdesk.deals").
		WithArgs(dealID).
		WillReturnRows(dealRows)
	mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
		WithArgs(dealID).
		WillReturnRows(sqlmock.NewRows(requirementColumns))

	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO dealdesk.approval_requirements").
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	requirements, err := d.SubmitForApproval(context.Background(), dealID)

	assert.NoError(t, err)
	assert.Len(t, requirements, 3)
	assert.Equal(t, model.StageIncentiveReview, requirements[0].Stage)
	assert.Equal(t, model.StageMarginReview, requirements[1].Stage)
	assert.Equal(t, model.StageFinalReview, requirements[2].Stage)
	assert.Equal(t, model.TierMD, requirements[2].ApproverTier)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSubmitForApproval_ResubmissionKeepsDecisions(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_resub"
	approvedAt := time.Now().Add(-time.Hour)

	dealRows := sqlmock.NewRows([]string{"deal_id", "name", "total_value", "deal_type", "sales_channel", "incentives", "meta_data", "created_at"}).
		AddRow(dealID, "Expanded retail push", "750000", "grow", "direct", []byte(`[{"type":"financial_incentive","description":"Volume rebate","value":"90000"}]`), []byte(`{}`), time.Now())

	existing := sqlmock.NewRows(requirementColumns).
		AddRow(
			model.RequirementID(dealID, model.StageIncentiveReview, model.DepartmentFinance), dealID,
			string(model.StageIncentiveReview), string(model.DepartmentFinance), model.StatusApproved,
			[]byte(`["financial_incentive"]`), true, []byte(`[]`), nil,
			"1-2 business days", nil, time.Now().Add(-2*time.Hour), approvedAt,
		)

	mock.ExpectQuery("SELECT deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data, created_at FROM dealdesk.deals").
		WithArgs(dealID).
		WillReturnRows(dealRows)
	mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
		WithArgs(dealID).
		WillReturnRows(existing)

	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO dealdesk.approval_requirements").
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	requirements, err := d.SubmitForApproval(context.Background(), dealID)

	assert.NoError(t, err)
	assert.Len(t, requirements, 3)
	// The incentive approval granted before the resubmission survives, while
	// the final requirement escalates with the new deal value.
	assert.Equal(t, model.StatusApproved, requirements[0].Status)
	assert.NotNil(t, requirements[0].CompletedAt)
	assert.Equal(t, model.TierExecutive, requirements[2].ApproverTier)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestApproveRequirement(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_appr"
	requirementID := model.RequirementID(dealID, model.StageIncentiveReview, model.DepartmentFinance)

	// Fetched once to learn the owning deal, then re-read under the lock.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
			WithArgs(requirementID).
			WillReturnRows(pendingRequirementRow(sqlmock.NewRows(requirementColumns), dealID, model.StageIncentiveReview, model.DepartmentFinance, `[]`))
	}
	mock.ExpectExec("UPDATE dealdesk.approval_requirements").
		WithArgs(requirementID, model.StatusApproved, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
		WithArgs(dealID).
		WillReturnRows(pendingRequirementRow(sqlmock.NewRows(requirementColumns), dealID, model.StageMarginReview, model.DepartmentTrading, `[]`))

	requirement, err := d.ApproveRequirement(context.Background(), requirementID)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, requirement.Status)
	assert.NotNil(t, requirement.CompletedAt)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestApproveRequirement_AlreadyApprovedConflicts(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_dup"
	requirementID := model.RequirementID(dealID, model.StageMarginReview, model.DepartmentTrading)
	completedAt := time.Now()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
			WithArgs(requirementID).
			WillReturnRows(sqlmock.NewRows(requirementColumns).AddRow(
				requirementID, dealID, string(model.StageMarginReview), string(model.DepartmentTrading), model.StatusApproved,
				[]byte(`["margin","profitability"]`), true, []byte(`[]`), nil,
				"2-3 business days", nil, time.Now(), completedAt,
			))
	}

	_, err := d.ApproveRequirement(context.Background(), requirementID)

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRequestRevision_RequiresComment(t *testing.T) {
	d, _ := newTestDealdesk(t)

	_, err := d.RequestRevision(context.Background(), "req_x_incentive_review_finance", "")

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestRequestRevision(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_rev"
	requirementID := model.RequirementID(dealID, model.StageIncentiveReview, model.DepartmentFinance)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
			WithArgs(requirementID).
			WillReturnRows(pendingRequirementRow(sqlmock.NewRows(requirementColumns), dealID, model.StageIncentiveReview, model.DepartmentFinance, `[]`))
	}
	mock.ExpectExec("UPDATE dealdesk.approval_requirements").
		WithArgs(requirementID, model.StatusRevisionRequested, "Rebate exceeds the agreed ceiling", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	requirement, err := d.RequestRevision(context.Background(), requirementID, "Rebate exceeds the agreed ceiling")

	assert.NoError(t, err)
	assert.Equal(t, model.StatusRevisionRequested, requirement.Status)
	assert.Equal(t, "Rebate exceeds the agreed ceiling", requirement.Comments)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestResetForRevision(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_reset"
	requirementID := model.RequirementID(dealID, model.StageIncentiveReview, model.DepartmentFinance)
	flaggedAt := time.Now()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
			WithArgs(requirementID).
			WillReturnRows(sqlmock.NewRows(requirementColumns).AddRow(
				requirementID, dealID, string(model.StageIncentiveReview), string(model.DepartmentFinance), model.StatusRevisionRequested,
				[]byte(`["financial_incentive"]`), true, []byte(`[]`), nil,
				"1-2 business days", "Rebate exceeds the agreed ceiling", time.Now(), flaggedAt,
			))
	}
	mock.ExpectExec("UPDATE dealdesk.approval_requirements").
		WithArgs(requirementID, model.StatusPending, "Rebate exceeds the agreed ceiling", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	requirement, err := d.ResetForRevision(context.Background(), requirementID)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, requirement.Status)
	assert.Nil(t, requirement.CompletedAt)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetPipelineStatus_CachesBetweenReads(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_cache"

	mock.ExpectQuery("SELECT requirement_id, deal_id, stage, department, status").
		WithArgs(dealID).
		WillReturnRows(pendingRequirementRow(sqlmock.NewRows(requirementColumns), dealID, model.StageIncentiveReview, model.DepartmentFinance, `[]`))

	first, err := d.GetPipelineStatus(context.Background(), dealID)
	assert.NoError(t, err)
	assert.Equal(t, model.OverallPending, first.OverallStatus)

	// The second read is served from cache, so no further query is expected.
	second, err := d.GetPipelineStatus(context.Background(), dealID)
	assert.NoError(t, err)
	assert.Equal(t, first.OverallStatus, second.OverallStatus)
	assert.Equal(t, first.CurrentStage, second.CurrentStage)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
