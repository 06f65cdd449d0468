package database

import (
	"database/sql"
	"encoding/json"

	"github.com/dealdeskhq/dealdesk/internal/apierror"
	"github.com/dealdeskhq/dealdesk/model"
)

// UpsertRequirements writes a deal's desired requirement set in one
// transaction. Requirement identities are deterministic, so a conflict means
// the requirement already exists; existing status, completion time and
// comments are left untouched while the dependency shape, coverage tags and
// estimates refresh from the regenerated set.
func (d Datasource) UpsertRequirements(dealID string, requirements []model.ApprovalRequirement) error {
	tx, err := d.Conn.Begin()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	for _, r := range requirements {
		requiredForJSON, err := json.Marshal(r.RequiredFor)
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal coverage tags", err)
		}
		dependenciesJSON, err := json.Marshal(r.Dependencies)
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal dependencies", err)
		}

		_, err = tx.Exec(`
			INSERT INTO dealdesk.approval_requirements
				(requirement_id, deal_id, stage, department, status, required_for, can_run_parallel, dependencies, approver_tier, estimated_time, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (requirement_id) DO UPDATE
			SET required_for = EXCLUDED.required_for,
				can_run_parallel = EXCLUDED.can_run_parallel,
				dependencies = EXCLUDED.dependencies,
				approver_tier = EXCLUDED.approver_tier,
				estimated_time = EXCLUDED.estimated_time
		`, r.RequirementID, dealID, r.Stage, r.Department, r.Status, requiredForJSON, r.CanRunParallel, dependenciesJSON, r.ApproverTier, r.EstimatedTime, r.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert requirement", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit requirements", err)
	}
	return nil
}

func (d Datasource) GetRequirementByID(id string) (*model.ApprovalRequirement, error) {
	row := d.Conn.QueryRow(`
		SELECT requirement_id, deal_id, stage, department, status, required_for, can_run_parallel, dependencies, approver_tier, estimated_time, comments, created_at, completed_at
		FROM dealdesk.approval_requirements
		WHERE requirement_id = $1
	`, id)

	requirement, err := scanRequirement(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Approval requirement not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve requirement", err)
	}
	return requirement, nil
}

func (d Datasource) GetRequirementsByDealID(dealID string) ([]model.ApprovalRequirement, error) {
	rows, err := d.Conn.Query(`
		SELECT requirement_id, deal_id, stage, department, status, required_for, can_run_parallel, dependencies, approver_tier, estimated_time, comments, created_at, completed_at
		FROM dealdesk.approval_requirements
		WHERE deal_id = $1
		ORDER BY created_at, requirement_id
	`, dealID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve requirements", err)
	}
	defer rows.Close()

	requirements := []model.ApprovalRequirement{}
	for rows.Next() {
		requirement, err := scanRequirement(rows.Scan)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan requirement data", err)
		}
		requirements = append(requirements, *requirement)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over requirements", err)
	}
	return requirements, nil
}

func (d Datasource) UpdateRequirementStatus(requirement *model.ApprovalRequirement) error {
	result, err := d.Conn.Exec(`
		UPDATE dealdesk.approval_requirements
		SET status = $2, comments = $3, completed_at = $4
		WHERE requirement_id = $1
	`, requirement.RequirementID, requirement.Status, requirement.Comments, requirement.CompletedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update requirement status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update requirement status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Approval requirement not found", nil)
	}
	return nil
}

func scanRequirement(scan func(dest ...interface{}) error) (*model.ApprovalRequirement, error) {
	requirement := model.ApprovalRequirement{}
	var requiredForJSON []byte
	var dependenciesJSON []byte
	var approverTier sql.NullString
	var comments sql.NullString
	var completedAt sql.NullTime

	err := scan(
		&requirement.RequirementID,
		&requirement.DealID,
		&requirement.Stage,
		&requirement.Department,
		&requirement.Status,
		&requiredForJSON,
		&requirement.CanRunParallel,
		&dependenciesJSON,
		&approverTier,
		&requirement.EstimatedTime,
		&comments,
		&requirement.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requiredForJSON, &requirement.RequiredFor); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dependenciesJSON, &requirement.Dependencies); err != nil {
		return nil, err
	}
	if approverTier.Valid {
		requirement.ApproverTier = model.ApproverTier(approverTier.String)
	}
	if comments.Valid {
		requirement.Comments = comments.String
	}
	if completedAt.Valid {
		requirement.CompletedAt = &completedAt.Time
	}
	return &requirement, nil
}
