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
	"fmt"
	"math"
	"strings"
)

// EvaluatePipeline projects a deal's requirement set into a pipeline status:
// per-stage progress, overall status, the current active stage, and the
// requirements that are unblocked but still waiting on a reviewer.
//
// The evaluation is a pure function of the requirement list. It never fails:
// an empty list yields the documented defaults, and a dependency that points
// at a missing requirement counts as unapproved, which conservatively keeps
// the dependent requirement blocked instead of crashing or unblocking it.
func (p PipelinePolicy) EvaluatePipeline(requirements []ApprovalRequirement) PipelineStatus {
	if len(requirements) == 0 {
		return PipelineStatus{
			OverallStatus: OverallPending,
			CurrentStage:  p.firstStage(),
			Stages:        []StageProgress{},
			Bottlenecks:   []ApprovalRequirement{},
			NextActions:   []string{},
		}
	}

	stages := p.stageProgress(requirements)
	blocked := bottlenecks(requirements)

	return PipelineStatus{
		OverallStatus: overallStatus(stages),
		CurrentStage:  p.currentStage(stages),
		Stages:        stages,
		Bottlenecks:   blocked,
		NextActions:   p.nextActions(blocked),
	}
}

func (p PipelinePolicy) firstStage() StageCode {
	if len(p.Stages) == 0 {
		return StageIncentiveReview
	}
	return p.Stages[0].Code
}

// stageProgress groups requirements by stage, in pipeline order, and
// aggregates each group's counts and status. Stages with no requirements are
// left out of the projection entirely.
func (p PipelinePolicy) stageProgress(requirements []ApprovalRequirement) []StageProgress {
	byStage := map[StageCode][]ApprovalRequirement{}
	for _, r := range requirements {
		byStage[r.Stage] = append(byStage[r.Stage], r)
	}

	stages := make([]StageProgress, 0, len(p.Stages))
	for _, def := range p.Stages {
		group, ok := byStage[def.Code]
		if !ok {
			continue
		}

		completed := 0
		revision := false
		for _, r := range group {
			if r.Status == StatusApproved {
				completed++
			}
			if r.Status == StatusRevisionRequested {
				revision = true
			}
		}

		status := StatusPending
		switch {
		case revision:
			status = StatusRevisionRequested
		case completed == len(group):
			status = StatusApproved
		}

		stages = append(stages, StageProgress{
			Stage:          def.Code,
			DisplayName:    def.DisplayName,
			Status:         status,
			CompletedCount: completed,
			TotalCount:     len(group),
			Progress:       int(math.Round(float64(completed) / float64(len(group)) * 100)),
		})
	}
	return stages
}

// currentStage is the first stage still pending; when every stage is settled
// the last stage is reported as current.
func (p PipelinePolicy) currentStage(stages []StageProgress) StageCode {
	for _, s := range stages {
		if s.Status == StatusPending {
			return s.Stage
		}
	}
	if len(stages) > 0 {
		return stages[len(stages)-1].Stage
	}
	return p.firstStage()
}

// overallStatus rolls stage statuses up. A revision request anywhere overrides
// everything else, including completion.
func overallStatus(stages []StageProgress) string {
	completed := 0
	inProgress := false
	for _, s := range stages {
		if s.Status == StatusRevisionRequested {
			return OverallRevisionRequested
		}
		if s.Status == StatusApproved {
			completed++
		}
		if s.Progress > 0 {
			inProgress = true
		}
	}
	if len(stages) > 0 && completed == len(stages) {
		return OverallCompleted
	}
	if inProgress {
		return OverallInProgress
	}
	return OverallPending
}

// bottlenecks returns the requirements that are actionable right now: still
// pending with every dependency approved. Requirements queued behind an
// unapproved dependency are not bottlenecks; neither are revision-requested
// requirements, which are already back in the submitter's court.
func bottlenecks(requirements []ApprovalRequirement) []ApprovalRequirement {
	statusByID := map[string]string{}
	for _, r := range requirements {
		statusByID[r.RequirementID] = r.Status
	}

	blocked := []ApprovalRequirement{}
	for _, r := range requirements {
		if r.Status != StatusPending {
			continue
		}
		unblocked := true
		for _, dep := range r.Dependencies {
			if statusByID[dep] != StatusApproved {
				unblocked = false
				break
			}
		}
		if unblocked {
			blocked = append(blocked, r)
		}
	}
	return blocked
}

// nextActions renders one advisory follow-up line per bottleneck.
func (p PipelinePolicy) nextActions(blocked []ApprovalRequirement) []string {
	actions := make([]string, 0, len(blocked))
	for _, r := range blocked {
		name := string(r.Department)
		if def, ok := p.Department(r.Department); ok {
			name = def.DisplayName
		}
		actions = append(actions, fmt.Sprintf("Awaiting %s review covering %s", name, strings.Join(r.RequiredFor, ", ")))
	}
	return actions
}
