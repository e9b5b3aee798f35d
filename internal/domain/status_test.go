package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		approval ApprovalStatus
		children []string
		previous string
		expected string
	}{
		{
			name:     "pending approval overrides children",
			approval: ApprovalPending,
			children: []string{StatusCuttingCompleted},
			previous: StatusInProgress,
			expected: StatusPendingApproval,
		},
		{
			name:     "all children terminal completes the batch",
			approval: ApprovalApproved,
			children: []string{StatusCuttingCompleted, "Done", "Completed"},
			previous: StatusInProgress,
			expected: StatusCompleted,
		},
		{
			name:     "no children never completes",
			approval: ApprovalApproved,
			children: nil,
			previous: StatusSchedulePending,
			expected: StatusSchedulePending,
		},
		{
			name:     "any child in progress wins over pending",
			approval: ApprovalApproved,
			children: []string{StatusInProgress, StatusSchedulePending},
			previous: StatusSchedulePending,
			expected: StatusInProgress,
		},
		{
			name:     "active stage counts as in progress",
			approval: ApprovalApproved,
			children: []string{"In Welding", StatusSchedulePending},
			previous: StatusSchedulePending,
			expected: StatusInProgress,
		},
		{
			name:     "all schedule pending stays schedule pending",
			approval: ApprovalApproved,
			children: []string{StatusSchedulePending, StatusSchedulePending},
			previous: StatusSchedulePending,
			expected: StatusSchedulePending,
		},
		{
			name:     "stage pending child means in progress",
			approval: ApprovalApproved,
			children: []string{"Bending Pending", StatusCuttingCompleted},
			previous: StatusSchedulePending,
			expected: StatusInProgress,
		},
		{
			name:     "no rule keeps previous status",
			approval: ApprovalApproved,
			children: []string{"Scheduled"},
			previous: StatusScheduled,
			expected: StatusScheduled,
		},
		{
			name:     "empty previous defaults to schedule pending",
			approval: ApprovalApproved,
			children: []string{"Scheduled"},
			previous: "",
			expected: StatusSchedulePending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverallStatus(tt.approval, tt.children, tt.previous)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeOverallStatusIdempotent(t *testing.T) {
	children := []string{"Bending Pending", StatusSchedulePending}

	first := ComputeOverallStatus(ApprovalApproved, children, StatusSchedulePending)
	second := ComputeOverallStatus(ApprovalApproved, children, first)

	assert.Equal(t, first, second)
}
