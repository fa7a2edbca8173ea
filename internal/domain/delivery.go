package domain

import "time"

// Notification outcomes recorded on a delivery.
const (
	NotifySuccess = "success"
	NotifyFailed  = "failed"
)

// Delivery records the result of a completed deployment workflow.
type Delivery struct {
	ID           string
	Email        string
	Task         string
	Round        int
	Nonce        string
	RepoURL      string
	CommitSHA    string
	PagesURL     string
	NotifyStatus string
	NotifiedAt   time.Time
	CreatedAt    time.Time
}
