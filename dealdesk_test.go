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

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dealdeskhq/dealdesk/config"
	"github.com/dealdeskhq/dealdesk/database"
)

// newTestDealdesk wires the service against sqlmock and miniredis so tests
// exercise the real orchestration without external infrastructure.
func newTestDealdesk(t *testing.T) (*Dealdesk, sqlmock.Sqlmock) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	d, err := NewDealdesk(&database.Datasource{Conn: db})
	if err != nil {
		t.Fatalf("Error creating Dealdesk instance: %s", err)
	}
	return d, mock
}

func TestPolicyFromConfig_Overrides(t *testing.T) {
	policy := policyFromConfig(&config.Configuration{
		Approval: config.ApprovalConfig{
			ExecutiveThreshold: "250000",
			StandardDealType:   "standard",
			HoldingChannels:    []string{"holding_company", "house_account"},
		},
	})

	assert.True(t, policy.ExecutiveThreshold.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, "standard", policy.StandardDealType)
	assert.Equal(t, []string{"holding_company", "house_account"}, policy.HoldingChannels)
}

func TestPolicyFromConfig_DefaultsWhenUnset(t *testing.T) {
	policy := policyFromConfig(&config.Configuration{})

	assert.True(t, policy.ExecutiveThreshold.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, "grow", policy.StandardDealType)
	assert.Equal(t, []string{"holding_company"}, policy.HoldingChannels)
}

func TestPolicyFromConfig_IgnoresBadThreshold(t *testing.T) {
	policy := policyFromConfig(&config.Configuration{
		Approval: config.ApprovalConfig{ExecutiveThreshold: "not-a-number"},
	})

	assert.True(t, policy.ExecutiveThreshold.Equal(decimal.NewFromInt(500000)))
}
