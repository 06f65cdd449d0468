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

import "sort"

// ResolveDepartments determines which departments must review a deal based on
// its incentive line items.
//
// Finance is always in the set regardless of incentive mix, and trading joins
// unconditionally because margin review applies to every deal. Beyond those,
// a department is pulled in whenever one of its trigger tags matches a line
// item's incentive type. Line items with no type, and types that match no
// department, are ignored rather than rejected.
//
// The result is sorted and de-duplicated so callers and tests see a stable
// ordering for the same incentive mix.
func (p PipelinePolicy) ResolveDepartments(items []IncentiveLineItem) []DepartmentCode {
	required := map[DepartmentCode]bool{
		DepartmentFinance: true,
		DepartmentTrading: true,
	}

	for _, item := range items {
		if item.Type == "" {
			continue
		}
		for _, dept := range p.Departments {
			for _, tag := range dept.TriggerTags {
				if tag == item.Type {
					required[dept.Code] = true
				}
			}
		}
	}

	codes := make([]DepartmentCode, 0, len(required))
	for code := range required {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
