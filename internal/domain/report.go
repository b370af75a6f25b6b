package domain

import "time"

type TaskOutcome struct {
	ActivityID string
	Title      string
	Claimed    bool
}

// AccountReport is what one account pass leaves behind. It carries no session data.
type AccountReport struct {
	Address     string
	DisplayName string
	Points      float64
	CheckIn     CheckInStatus
	Proxy       string
	Claimed     []string
	Tasks       []TaskOutcome
	Failure     string
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (r AccountReport) Failed() bool {
	return r.Failure != ""
}

func (r AccountReport) VerifiedTasks() []string {
	return r.taskTitles(true)
}

func (r AccountReport) UnverifiedTasks() []string {
	return r.taskTitles(false)
}

func (r AccountReport) taskTitles(claimed bool) []string {
	titles := make([]string, 0, len(r.Tasks))
	for _, task := range r.Tasks {
		if task.Claimed == claimed {
			titles = append(titles, task.Title)
		}
	}
	return titles
}
