package sitegen

import "strings"

// Readme renders the README.md shipped with every generated bundle.
func Readme(title, brief string, checks []string) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString("## Summary\n" + brief + "\n\n")
	b.WriteString("## Features\nThis application implements the following requirements:\n")
	for _, check := range checks {
		b.WriteString("- " + check + "\n")
	}
	b.WriteString("\n## Usage\n")
	b.WriteString("1. Open the GitHub Pages URL in your browser\n")
	b.WriteString("2. The application will automatically load and display the required functionality\n")
	b.WriteString("3. For parameterized features, use query parameters (e.g., `?url=...`, `?token=...`)\n")
	b.WriteString("\n## Setup\n")
	b.WriteString("This is a static HTML application hosted on GitHub Pages. No build process required.\n")
	return b.String()
}
