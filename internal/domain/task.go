package domain

import "time"

// Attachment is a named payload shipped with a task brief, usually a data URL.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Task captures an accepted deployment request.
type Task struct {
	ID            string
	Email         string
	Name          string
	Round         int
	Nonce         string
	Brief         string
	Checks        []string
	Attachments   []Attachment
	EvaluationURL string
	SecretHash    string
	CreatedAt     time.Time
}
