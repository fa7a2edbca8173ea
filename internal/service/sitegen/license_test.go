package sitegen

import (
	"strings"
	"testing"
)

func TestLicenseContainsCopyrightLine(t *testing.T) {
	text := License(2025, "alice")
	if !strings.HasPrefix(text, "MIT License\n\nCopyright (c) 2025 alice\n") {
		t.Fatalf("unexpected license prefix:\n%s", text[:80])
	}
	if !strings.Contains(text, "Permission is hereby granted, free of charge") {
		t.Fatal("expected grant paragraph")
	}
	if !strings.Contains(text, `THE SOFTWARE IS PROVIDED "AS IS"`) {
		t.Fatal("expected warranty disclaimer")
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatal("expected trailing newline")
	}
}

func TestLicenseMatchesCanonicalText(t *testing.T) {
	const want = "MIT License\n" +
		"\n" +
		"Copyright (c) 2025 alice\n" +
		"\n" +
		"Permission is hereby granted, free of charge, to any person obtaining a copy\n" +
		"of this software and associated documentation files (the \"Software\"), to deal\n" +
		"in the Software without restriction, including without limitation the rights\n" +
		"to use, copy, modify, merge, publish, distribute, sublicense, and/or sell\n" +
		"copies of the Software, and to permit persons to whom the Software is\n" +
		"furnished to do so, subject to the following conditions:\n" +
		"\n" +
		"THE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR\n" +
		"IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,\n" +
		"FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE\n" +
		"AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER\n" +
		"LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,\n" +
		"OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN\n" +
		"THE SOFTWARE.\n"

	got := License(2025, "alice")
	if got != want {
		t.Fatalf("license text drifted from the canonical template:\n--- want ---\n%s\n--- got ---\n%s", want, got)
	}
}

func TestLicenseDefaultsOwner(t *testing.T) {
	text := License(2024, "")
	if !strings.Contains(text, "Copyright (c) 2024 Student") {
		t.Fatalf("expected default owner in copyright line, got:\n%s", text[:60])
	}
}

func TestLicenseStableForFixedInputs(t *testing.T) {
	first := License(2023, "bob")
	second := License(2023, "bob")
	if first != second {
		t.Fatal("expected identical output for identical inputs")
	}
}

func TestOwnerFromEnv(t *testing.T) {
	t.Setenv("GITHUB_USERNAME", "octocat")
	if got := OwnerFromEnv(); got != "octocat" {
		t.Fatalf("expected octocat, got %q", got)
	}

	t.Setenv("GITHUB_USERNAME", "")
	if got := OwnerFromEnv(); got != DefaultOwner {
		t.Fatalf("expected default owner, got %q", got)
	}
}
