package model

// Three status vocabularies meet in a transcription: TaskStatus is what the
// UI shows for a local run or download, BatchState tracks the orchestrator
// and JobState is whatever the remote service reports.

// TaskStatus is the lifecycle of a local download or transcription run
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusStarting  TaskStatus = "Starting"
	TaskStatusRunning   TaskStatus = "Running"
	TaskStatusStopping  TaskStatus = "Stopping" // cancel requested, work winding down
	TaskStatusStopped   TaskStatus = "Stopped"  // cancelled by the user
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusError     TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusStarting || ts == TaskStatusRunning || ts == TaskStatusStopping
}

// IsFinished returns true for Completed, Stopped and Error
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusStopped || ts == TaskStatusError
}

// JobState is the lifecycle state reported by the remote transcription service
type JobState string

const (
	JobStateAccepted  JobState = "Accepted"
	JobStatePending   JobState = "Pending"
	JobStateRunning   JobState = "Running"
	JobStateCompleted JobState = "Completed"
	JobStateFailed    JobState = "Failed"
)

// String returns the string representation of JobState
func (js JobState) String() string {
	return string(js)
}

// IsTerminal returns true once the remote job will not change state anymore
func (js JobState) IsTerminal() bool {
	return js == JobStateCompleted || js == JobStateFailed
}

// BatchState is the local orchestration state of one batch transcription
type BatchState string

const (
	BatchStateInit      BatchState = "Init"
	BatchStateUploading BatchState = "Uploading"
	BatchStateStarted   BatchState = "Started"
	BatchStatePolling   BatchState = "Polling"
	BatchStateCompleted BatchState = "Completed"
	BatchStateFailed    BatchState = "Failed"
)

// String returns the string representation of BatchState
func (bs BatchState) String() string {
	return string(bs)
}

// IsTerminal returns true for Completed and Failed
func (bs BatchState) IsTerminal() bool {
	return bs == BatchStateCompleted || bs == BatchStateFailed
}

// Outcome maps a batch state onto the run status shown to the user.
// Anything short of Completed is an error; cancellation is decided by the caller.
func (bs BatchState) Outcome() TaskStatus {
	if bs == BatchStateCompleted {
		return TaskStatusCompleted
	}
	return TaskStatusError
}
