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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dealdeskhq/dealdesk/model"
)

func TestCreateDeal(t *testing.T) {
	d, mock := newTestDealdesk(t)

	deal := model.Deal{
		Name:         gofakeit.Company(),
		TotalValue:   decimal.NewFromInt(250000),
		DealType:     "grow",
		SalesChannel: "direct",
		Incentives: []model.IncentiveLineItem{
			{Type: "financial_incentive", Description: "Volume rebate", Value: decimal.NewFromInt(50000)},
		},
		MetaData: map[string]interface{}{"region": "emea"},
	}

	mock.ExpectExec("INSERT INTO dealdesk.deals").
		WithArgs(sqlmock.AnyArg(), deal.Name, sqlmock.AnyArg(), deal.DealType, deal.SalesChannel, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := d.CreateDeal(deal)

	assert.NoError(t, err)
	assert.Contains(t, result.DealID, "deal_")
	assert.WithinDuration(t, time.Now(), result.CreatedAt, time.Second)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetDealByID(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_" + gofakeit.UUID()

	rows := sqlmock.NewRows([]string{"deal_id", "name", "total_value", "deal_type", "sales_channel", "incentives", "meta_data", "created_at"}).
		AddRow(dealID, "Q3 retail push", "750000", "protect", "holding_company", []byte(`[{"type":"margin_incentive","description":"Price support","value":"120000"}]`), []byte(`{"region":"emea"}`), time.Now())

	mock.ExpectQuery("SELECT deal_id, name, total_value, deal_type, sales_channel, incentives, meta_data, created_at FROM dealdesk.deals").
		WithArgs(dealID).
		WillReturnRows(rows)

	deal, err := d.GetDealByID(dealID)

	assert.NoError(t, err)
	assert.Equal(t, dealID, deal.DealID)
	assert.True(t, deal.TotalValue.Equal(decimal.NewFromInt(750000)))
	assert.Len(t, deal.Incentives, 1)
	assert.Equal(t, "margin_incentive", deal.Incentives[0].Type)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestUpdateDealCommercials(t *testing.T) {
	d, mock := newTestDealdesk(t)
	dealID := "deal_update"

	deal := &model.Deal{
		DealID:       dealID,
		TotalValue:   decimal.NewFromInt(900000),
		DealType:     "grow",
		SalesChannel: "direct",
	}

	mock.ExpectExec("UPDATE dealdesk.deals").
		WithArgs(dealID, sqlmock.AnyArg(), deal.DealType, deal.SalesChannel, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := d.UpdateDealCommercials(deal)

	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
