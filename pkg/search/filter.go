package search

import (
	"regexp"
	"sort"
	"time"

	"github.com/jetstack/tag-search/pkg/api"
)

// Expand flattens tags into one row per image, in listing order. Tags
// without images produce no rows.
func Expand(tags []api.Tag) []api.Row {
	var rows []api.Row
	for _, tag := range tags {
		for _, image := range tag.Images {
			rows = append(rows, api.NewRow(tag, image))
		}
	}

	return rows
}

// FilterName keeps rows whose tag name matches re.
func FilterName(rows []api.Row, re *regexp.Regexp) []api.Row {
	return filterMatch(rows, re, func(r api.Row) string { return r.Name })
}

// FilterArchitecture keeps rows whose architecture, features and variant
// composite matches re.
func FilterArchitecture(rows []api.Row, re *regexp.Regexp) []api.Row {
	return filterMatch(rows, re, api.Row.Architecture)
}

// FilterOS keeps rows whose os, os_features and os_version composite matches
// re.
func FilterOS(rows []api.Row, re *regexp.Regexp) []api.Row {
	return filterMatch(rows, re, api.Row.OS)
}

// FilterDate keeps rows pushed within [after, before]. Either bound may be
// nil. Rows without any push time are dropped once a bound is set.
func FilterDate(rows []api.Row, after, before *time.Time) []api.Row {
	if after == nil && before == nil {
		return rows
	}

	return filter(rows, func(r api.Row) bool {
		pushed := r.PushedAt()
		if pushed == nil {
			return false
		}
		if after != nil && pushed.Before(*after) {
			return false
		}
		if before != nil && pushed.After(*before) {
			return false
		}
		return true
	})
}

// FilterSize keeps rows whose image size is at most below bytes. A ceiling
// of 0 disables the filter.
func FilterSize(rows []api.Row, below int64) []api.Row {
	if below <= 0 {
		return rows
	}

	return filter(rows, func(r api.Row) bool {
		return r.ImageSize <= below
	})
}

// SortBySize orders rows by image size, smallest first. Rows of equal size
// keep their relative order.
func SortBySize(rows []api.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ImageSize < rows[j].ImageSize
	})
}

// Apply runs every filter set in filters over rows, then sorts the result if
// requested.
func Apply(rows []api.Row, filters *api.Filters) []api.Row {
	if filters == nil {
		return rows
	}

	rows = FilterName(rows, filters.Name)
	rows = FilterArchitecture(rows, filters.Architecture)
	rows = FilterOS(rows, filters.OS)
	rows = FilterDate(rows, filters.After, filters.Before)
	rows = FilterSize(rows, filters.Below)

	if filters.Sort {
		SortBySize(rows)
	}

	return rows
}

func filterMatch(rows []api.Row, re *regexp.Regexp, value func(api.Row) string) []api.Row {
	if re == nil {
		return rows
	}

	return filter(rows, func(r api.Row) bool {
		return re.MatchString(value(r))
	})
}

func filter(rows []api.Row, keep func(api.Row) bool) []api.Row {
	var kept []api.Row
	for _, r := range rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}

	return kept
}
