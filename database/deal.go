package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/dealdeskhq/dealdesk/internal/apierror"
	"github.com/dealdeskhq/dealdesk/model"
)

func (d Datasource) CreateDeal(deal model.Deal) (model.Deal, error) {
	metaDataJSON, err := json.Marshal(deal.MetaData)
	if err != nil {
		return model.Deal{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}
	incentivesJSON, err := json.Marshal(deal.Incentives)
	if err != nil {
		return model.Deal{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal incentives", err)
	}

	deal.DealID = model.GenerateUUIDWithSuffix("deal")
	deal.CreatedAt = time.Now()

	_, err = d.Conn.Exec(`
		INSERT INTO dealdesk.deals (deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, deal.DealID, deal.Name, deal.TotalValue, deal.DealType, deal.SalesChannel, incentivesJSON, metaDataJSON)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.Deal{}, apierror.NewAPIError(apierror.ErrConflict, "Deal with this ID already exists", err)
			default:
				return model.Deal{}, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return model.Deal{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create deal", err)
	}

	return deal, nil
}

func (d Datasource) GetDealByID(id string) (*model.Deal, error) {
	deal := model.Deal{}

	row := d.Conn.QueryRow(`
		SELECT deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data, created_at
		FROM dealdesk.deals
		WHERE deal_id = $1
	`, id)

	var incentivesJSON []byte
	var metaDataJSON []byte
	err := row.Scan(&deal.DealID, &deal.Name, &deal.TotalValue, &deal.DealType, &deal.SalesChannel, &incentivesJSON, &metaDataJSON, &deal.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Deal not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve deal", err)
	}

	if err := json.Unmarshal(incentivesJSON, &deal.Incentives); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal incentives", err)
	}
	if err := json.Unmarshal(metaDataJSON, &deal.MetaData); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
	}

	return &deal, nil
}

func (d Datasource) GetAllDeals() ([]model.Deal, error) {
	rows, err := d.Conn.Query(`
		SELECT deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data, created_at
		FROM dealdesk.deals
		ORDER BY created_at DESC
		LIMIT 20
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve deals", err)
	}
	defer rows.Close()

	deals := []model.Deal{}

	for rows.Next() {
		deal := model.Deal{}
		var incentivesJSON []byte
		var metaDataJSON []byte
		err = rows.Scan(&deal.DealID, &deal.Name, &deal.TotalValue, &deal.DealType, &deal.SalesChannel, &incentivesJSON, &metaDataJSON, &deal.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan deal data", err)
		}

		if err := json.Unmarshal(incentivesJSON, &deal.Incentives); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal incentives", err)
		}
		if err := json.Unmarshal(metaDataJSON, &deal.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}

		deals = append(deals, deal)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over deals", err)
	}

	return deals, nil
}

func (d Datasource) UpdateDealCommercials(deal *model.Deal) error {
	incentivesJSON, err := json.Marshal(deal.Incentives)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal incentives", err)
	}

	result, err := d.Conn.Exec(`
		UPDATE dealdesk.deals
		SET total_value = $2, deal_type = $3, sales_channel = $4, incentives = $5
		WHERE deal_id = $1
	`, deal.DealID, deal.TotalValue, deal.DealType, deal.SalesChannel, incentivesJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update deal", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update deal", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Deal not found", nil)
	}
	return nil
}
