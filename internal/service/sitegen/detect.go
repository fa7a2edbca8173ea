package sitegen

import (
	"regexp"
	"strings"
)

// TaskType selects which page template a brief maps to.
type TaskType string

// Known task types.
const (
	TypeCaptchaSolver     TaskType = "captcha-solver"
	TypeSumOfSales        TaskType = "sum-of-sales"
	TypeMarkdownToHTML    TaskType = "markdown-to-html"
	TypeGitHubUserCreated TaskType = "github-user-created"
	TypeGeneric           TaskType = "generic"
)

// Detect picks the template for a brief based on keyword matching.
func Detect(brief string) TaskType {
	lower := strings.ToLower(brief)
	switch {
	case strings.Contains(lower, "captcha"):
		return TypeCaptchaSolver
	case strings.Contains(lower, "sales") || strings.Contains(lower, "sum") || strings.Contains(lower, "csv"):
		return TypeSumOfSales
	case strings.Contains(lower, "markdown") || strings.Contains(lower, ".md"):
		return TypeMarkdownToHTML
	case strings.Contains(lower, "github") && strings.Contains(lower, "user"):
		return TypeGitHubUserCreated
	default:
		return TypeGeneric
	}
}

var seedPattern = regexp.MustCompile(`seed[:\s]+([a-zA-Z0-9-]+)`)

// ExtractSeed pulls a seed token out of a brief, defaulting to "default".
func ExtractSeed(brief string) string {
	if m := seedPattern.FindStringSubmatch(brief); len(m) == 2 && m[1] != "" {
		return m[1]
	}
	return "default"
}
