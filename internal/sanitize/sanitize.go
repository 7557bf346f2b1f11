// Package sanitize strips markup from user-submitted text. The site
// accepts plain text only (contact messages, event descriptions), so the
// policy removes every HTML element and keeps the text content.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from user input and trims surrounding whitespace.
// Must be called on every user-provided string before it is stored.
func Text(input string) string {
	return strings.TrimSpace(getPolicy().Sanitize(input))
}
