package api

import (
	"regexp"
	"time"
)

// Filters is used to describe which rows should be kept, and how they should
// be ordered. A nil matcher or bound disables the corresponding filter.
type Filters struct {
	// Name is matched against the tag name.
	Name *regexp.Regexp
	// Architecture is matched against the architecture composite.
	Architecture *regexp.Regexp
	// OS is matched against the operating system composite.
	OS *regexp.Regexp

	After  *time.Time
	Before *time.Time

	// Below is the inclusive image size ceiling in bytes, 0 disables it.
	Below int64

	// Sort orders the result by image size, smallest first.
	Sort bool
}
