package utils

import (
	"strings"

	"topmarketingjobs/internal/search"
)

func JobURL(base, jobID string) string {
	return strings.TrimRight(base, "/") + "/jobs/" + jobID
}

// SearchURL is the shareable website link of a search.
func SearchURL(base string, fs search.FilterSet) string {
	return strings.TrimRight(base, "/") + "/jobs?" + search.Encode(fs)
}
