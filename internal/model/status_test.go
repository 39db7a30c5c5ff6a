package model

import "testing"

func TestTaskStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusStarting, true},
		{TaskStatusRunning, true},
		{TaskStatusStopping, true},
		{TaskStatusStopped, false},
		{TaskStatusCompleted, false},
		{TaskStatusError, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusStarting, false},
		{TaskStatusRunning, false},
		{TaskStatusStopping, false},
		{TaskStatusStopped, true},
		{TaskStatusCompleted, true},
		{TaskStatusError, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestJobState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    JobState
		expected bool
	}{
		{JobStateAccepted, false},
		{JobStatePending, false},
		{JobStateRunning, false},
		{JobStateCompleted, true},
		{JobStateFailed, true},
		{JobState("Whatever"), false},
	}

	for _, test := range tests {
		if result := test.state.IsTerminal(); result != test.expected {
			t.Errorf("JobState(%s).IsTerminal() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestBatchState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    BatchState
		expected bool
	}{
		{BatchStateInit, false},
		{BatchStateUploading, false},
		{BatchStateStarted, false},
		{BatchStatePolling, false},
		{BatchStateCompleted, true},
		{BatchStateFailed, true},
	}

	for _, test := range tests {
		if result := test.state.IsTerminal(); result != test.expected {
			t.Errorf("BatchState(%s).IsTerminal() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestBatchState_Outcome(t *testing.T) {
	tests := []struct {
		state    BatchState
		expected TaskStatus
	}{
		{BatchStateCompleted, TaskStatusCompleted},
		{BatchStateFailed, TaskStatusError},
		{BatchStatePolling, TaskStatusError},
		{BatchState(""), TaskStatusError},
	}

	for _, test := range tests {
		if result := test.state.Outcome(); result != test.expected {
			t.Errorf("BatchState(%q).Outcome() = %s, expected %s", test.state, result, test.expected)
		}
	}
}
