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
	"embed"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dealdeskhq/dealdesk/config"
	"github.com/dealdeskhq/dealdesk/database"
	"github.com/dealdeskhq/dealdesk/internal/cache"
	redis_db "github.com/dealdeskhq/dealdesk/internal/redis-db"
	"github.com/dealdeskhq/dealdesk/model"
)

// Dealdesk is the service facade: deal records, approval pipelines and the
// post-action plumbing around them.
type Dealdesk struct {
	datasource database.IDataSource
	redis      redis.UniversalClient
	cache      cache.Cache
	policy     model.PipelinePolicy
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewDealdesk initializes the service from the loaded configuration.
func NewDealdesk(db database.IDataSource) (*Dealdesk, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	redisClient, err := redis_db.NewRedisClient([]string{configuration.Redis.Dns})
	if err != nil {
		return nil, err
	}

	statusCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	return &Dealdesk{
		datasource: db,
		redis:      redisClient.Client(),
		cache:      statusCache,
		policy:     policyFromConfig(configuration),
	}, nil
}

// Policy returns the pipeline policy in effect.
func (d *Dealdesk) Policy() model.PipelinePolicy {
	return d.policy
}

// policyFromConfig starts from the built-in tables and applies any overrides
// the deployment configured.
func policyFromConfig(cnf *config.Configuration) model.PipelinePolicy {
	policy := model.DefaultPolicy()

	if cnf.Approval.ExecutiveThreshold != "" {
		if threshold, err := decimal.NewFromString(cnf.Approval.ExecutiveThreshold); err == nil {
			policy.ExecutiveThreshold = threshold
		}
	}
	if cnf.Approval.StandardDealType != "" {
		policy.StandardDealType = cnf.Approval.StandardDealType
	}
	if len(cnf.Approval.HoldingChannels) > 0 {
		policy.HoldingChannels = cnf.Approval.HoldingChannels
	}
	return policy
}
