package search

import (
	"fmt"
	"regexp"
	"strings"
)

// WildcardToRegex converts a wildcard pattern, where `*` matches any
// sequence of characters, into an anchored regular expression. Every other
// character is matched literally. An empty pattern returns the empty string.
func WildcardToRegex(pattern string) string {
	if len(pattern) == 0 {
		return ""
	}

	segments := strings.Split(pattern, "*")
	for i, segment := range segments {
		segments[i] = regexp.QuoteMeta(segment)
	}

	return "^" + strings.Join(segments, ".*") + "$"
}

// CompileWildcard compiles a wildcard pattern case-insensitively. An empty
// pattern returns nil, disabling the filter it is used for.
func CompileWildcard(pattern string) (*regexp.Regexp, error) {
	return compile(WildcardToRegex(pattern))
}

// CompileRegex compiles a user regular expression case-insensitively. The
// expression must match at the start of the value but may stop anywhere.
func CompileRegex(expr string) (*regexp.Regexp, error) {
	if len(expr) == 0 {
		return nil, nil
	}

	return compile("^(?:" + expr + ")")
}

func compile(expr string) (*regexp.Regexp, error) {
	if len(expr) == 0 {
		return nil, nil
	}

	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}

	return re, nil
}
