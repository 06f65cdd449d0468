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
	"github.com/dealdeskhq/dealdesk/internal/notification"
	"github.com/dealdeskhq/dealdesk/model"
)

func (d *Dealdesk) postDealActions(deal *model.Deal) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   EventDealCreated,
			Payload: deal,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}

func (d *Dealdesk) CreateDeal(deal model.Deal) (model.Deal, error) {
	deal, err := d.datasource.CreateDeal(deal)
	if err != nil {
		return model.Deal{}, err
	}
	d.postDealActions(&deal)
	return deal, nil
}

func (d *Dealdesk) GetAllDeals() ([]model.Deal, error) {
	return d.datasource.GetAllDeals()
}

func (d *Dealdesk) GetDealByID(id string) (*model.Deal, error) {
	return d.datasource.GetDealByID(id)
}

// UpdateDealCommercials changes a deal's value, type, channel or incentive
// mix. When the deal already has an approval pipeline, the caller should
// resubmit it so the requirement set is regenerated against the new terms.
func (d *Dealdesk) UpdateDealCommercials(deal *model.Deal) error {
	if err := d.datasource.UpdateDealCommercials(deal); err != nil {
		return err
	}
	return d.invalidatePipelineCache(deal.DealID)
}
