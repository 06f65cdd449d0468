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
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func incentivesValidation(items []IncentiveLineItem) validation.RuleFunc {
	return func(value interface{}) error {
		for _, item := range items {
			if item.Type == "" {
				return errors.New("every incentive line item needs a type")
			}
			if item.Value.IsNegative() {
				return errors.New("incentive value cannot be negative")
			}
		}
		return nil
	}
}

func (d *CreateDeal) ValidateCreateDeal() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.DealType, validation.Required),
		validation.Field(&d.SalesChannel, validation.Required),
		validation.Field(&d.TotalValue, validation.By(func(value interface{}) error {
			if d.TotalValue.IsNegative() {
				return errors.New("total value cannot be negative")
			}
			return nil
		})),
		validation.Field(&d.Incentives, validation.By(incentivesValidation(d.Incentives))),
	)
}

func (u *UpdateDealCommercials) ValidateUpdateDealCommercials() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.DealType, validation.Required),
		validation.Field(&u.SalesChannel, validation.Required),
		validation.Field(&u.TotalValue, validation.By(func(value interface{}) error {
			if u.TotalValue.IsNegative() {
				return errors.New("total value cannot be negative")
			}
			return nil
		})),
		validation.Field(&u.Incentives, validation.By(incentivesValidation(u.Incentives))),
	)
}

func (r *RequestRevision) ValidateRequestRevision() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Comment, validation.Required),
	)
}
