package domain

import "strings"

// terminalChildStatuses are the work item statuses counted as finished
// when rolling up the overall batch status. Older rows may carry
// legacy "Done"/"Completed" labels.
var terminalChildStatuses = map[string]bool{
	"Done":                 true,
	"Completed":            true,
	StatusCuttingCompleted: true,
}

// ComputeOverallStatus rolls child work item statuses up into the
// batch level status. Pending approval always wins; a batch with at
// least one child and every child terminal is completed; any child in
// progress or pending at a stage marks the batch in progress; children
// uniformly waiting for a schedule keep the batch schedule pending.
// When no rule matches the previous status is kept.
func ComputeOverallStatus(approvalStatus ApprovalStatus, childStatuses []string, previous string) string {
	if approvalStatus == ApprovalPending {
		return StatusPendingApproval
	}

	if len(childStatuses) > 0 {
		allTerminal := true
		for _, s := range childStatuses {
			if !terminalChildStatuses[s] {
				allTerminal = false
				break
			}
		}
		if allTerminal {
			return StatusCompleted
		}
	}

	for _, s := range childStatuses {
		if s == StatusInProgress || strings.HasPrefix(s, "In ") {
			return StatusInProgress
		}
	}

	if len(childStatuses) > 0 {
		allSchedulePending := true
		for _, s := range childStatuses {
			if s != StatusSchedulePending {
				allSchedulePending = false
				break
			}
		}
		if allSchedulePending {
			return StatusSchedulePending
		}
	}

	for _, s := range childStatuses {
		if strings.HasSuffix(s, "Pending") {
			return StatusInProgress
		}
	}

	if previous == "" {
		return StatusSchedulePending
	}
	return previous
}
