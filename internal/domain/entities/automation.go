package entities

import "time"

// Automation task names, in the order a full sweep runs them.
const (
	TaskBoostSolo           = "boost_solo"
	TaskExpireInvites       = "expire_invites"
	TaskLockProfiles        = "lock_profiles"
	TaskDisableAvailability = "disable_availability"
)

// AutomationTaskResult is the outcome of one sweeper task.
type AutomationTaskResult struct {
	Task     string        `json:"task"`
	Affected int64         `json:"affected"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// AutomationReport summarizes a full sweep.
type AutomationReport struct {
	StartedAt time.Time              `json:"startedAt"`
	Tasks     []AutomationTaskResult `json:"tasks"`
}

// Failed counts tasks that returned an error.
func (r *AutomationReport) Failed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Error != "" {
			n++
		}
	}
	return n
}
