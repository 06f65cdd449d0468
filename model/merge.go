package model

// MergeRequirements reconciles a freshly generated requirement set with the
// records already on file for the same deal. The desired set decides which
// requirements exist and how they depend on each other; any requirement whose
// identity already exists keeps its recorded status, completion time and
// comments, so regeneration never resurrects or duplicates reviews that have
// already been acted on.
func MergeRequirements(existing, desired []ApprovalRequirement) []ApprovalRequirement {
	byID := make(map[string]ApprovalRequirement, len(existing))
	for _, r := range existing {
		byID[r.RequirementID] = r
	}

	merged := make([]ApprovalRequirement, 0, len(desired))
	for _, r := range desired {
		if prev, ok := byID[r.RequirementID]; ok {
			r.ID = prev.ID
			r.Status = prev.Status
			r.CompletedAt = prev.CompletedAt
			r.Comments = prev.Comments
			r.CreatedAt = prev.CreatedAt
		}
		merged = append(merged, r)
	}
	return merged
}
