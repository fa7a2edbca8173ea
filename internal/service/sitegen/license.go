package sitegen

import (
	"fmt"
	"os"
)

// DefaultOwner is used when no copyright holder is configured.
const DefaultOwner = "Student"

const licenseTemplate = `MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
`

// License renders the MIT license text with the given copyright year and
// owner. The output is stable for a fixed pair of inputs.
func License(year int, owner string) string {
	if owner == "" {
		owner = DefaultOwner
	}
	return fmt.Sprintf(licenseTemplate, year, owner)
}

// OwnerFromEnv resolves the license copyright holder from GITHUB_USERNAME,
// falling back to DefaultOwner when the variable is unset or empty.
func OwnerFromEnv() string {
	if owner := os.Getenv("GITHUB_USERNAME"); owner != "" {
		return owner
	}
	return DefaultOwner
}
