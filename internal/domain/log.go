package domain

import "time"

// DeployLog represents a progress line emitted during a deployment workflow.
type DeployLog struct {
	ID        int64
	Task      string
	Stage     string
	Level     string
	Message   string
	Metadata  []byte
	CreatedAt time.Time
}
