// Package search holds the listing search pipeline shared by the job, candidate
// and company directories: the URL filter codec, the query builder, result
// formatting, keyword re-ranking and pagination.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// URL query keys understood by the codec.
const (
	KeyQuery           = "q"
	KeyLocation        = "location"
	KeyCategory        = "category"
	KeyJobType         = "jobType"
	KeyExperienceLevel = "experienceLevel"
	KeySalary          = "salary"
	KeySalaryRange     = "salaryRange"
	KeyFeaturedOnly    = "featuredOnly"
	KeyPage            = "page"
	KeySort            = "sort"
)

// SentinelAll is the select-box value meaning "no constraint".
const SentinelAll = "all"

var (
	ErrMalformedSalaryRange = errors.New("malformed salary range")
	ErrUnknownKey           = errors.New("unknown filter key")
)

type SortBy string

const (
	SortRecent   SortBy = "recent"
	SortRelevant SortBy = "relevant"
	SortFeatured SortBy = "featured"
)

// ParseSortBy falls back to SortRecent for anything it does not recognise.
func ParseSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortRelevant, SortFeatured:
		return SortBy(s)
	default:
		return SortRecent
	}
}

// SalaryRange is a (min, max) pair in millions of VND.
type SalaryRange struct {
	Min float64
	Max float64
}

// FilterSet is the decoded search intent. Empty strings mean "not set".
type FilterSet struct {
	Keyword         string
	Location        string
	CategoryID      string
	JobType         string
	ExperienceLevel string
	SalaryText      string
	SalaryRange     *SalaryRange
	FeaturedOnly    bool
	SortBy          SortBy
	Page            int
}

// NewFilterSet returns an empty set at its defaults.
func NewFilterSet() FilterSet {
	return FilterSet{SortBy: SortRecent, Page: 1}
}

// Decode parses a raw URL query string (with or without the leading '?').
// It always returns a usable FilterSet; a non-nil error reports the fields
// that had to be dropped, e.g. a salaryRange that is not a JSON number pair.
func Decode(rawQuery string) (FilterSet, error) {
	values, parseErr := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	fs, err := FromValues(values)
	if parseErr != nil {
		err = errors.Join(fmt.Errorf("parse query: %w", parseErr), err)
	}
	return fs, err
}

// FromValues decodes already-parsed URL values. Unknown keys are ignored.
func FromValues(values url.Values) (FilterSet, error) {
	fs := NewFilterSet()

	fs.Keyword = strings.TrimSpace(values.Get(KeyQuery))
	fs.Location = values.Get(KeyLocation)
	fs.CategoryID = values.Get(KeyCategory)
	fs.JobType = values.Get(KeyJobType)
	fs.ExperienceLevel = values.Get(KeyExperienceLevel)
	fs.SalaryText = values.Get(KeySalary)
	fs.FeaturedOnly = parseBool(values.Get(KeyFeaturedOnly))
	fs.SortBy = ParseSortBy(values.Get(KeySort))
	fs.Page = parsePage(values.Get(KeyPage))

	var err error
	if raw := values.Get(KeySalaryRange); raw != "" {
		fs.SalaryRange, err = parseSalaryRange(raw)
	}

	return fs, err
}

// Encode writes the filters that are set plus page and sort, so a shared link
// reproduces the exact page that was on screen.
func Encode(fs FilterSet) string {
	return fs.Values().Encode()
}

// Values is the url.Values form of Encode.
func (fs FilterSet) Values() url.Values {
	values := url.Values{}

	setIf := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}

	setIf(KeyQuery, fs.Keyword)
	setIf(KeyLocation, fs.Location)
	setIf(KeyCategory, fs.CategoryID)
	setIf(KeyJobType, fs.JobType)
	setIf(KeyExperienceLevel, fs.ExperienceLevel)
	setIf(KeySalary, fs.SalaryText)

	if fs.SalaryRange != nil {
		values.Set(KeySalaryRange, formatSalaryRange(*fs.SalaryRange))
	}

	if fs.FeaturedOnly {
		values.Set(KeyFeaturedOnly, "true")
	}

	page := fs.Page
	if page < 1 {
		page = 1
	}
	values.Set(KeyPage, strconv.Itoa(page))
	values.Set(KeySort, string(ParseSortBy(string(fs.SortBy))))

	return values
}

// Update applies a single control change. Changing any filter sends the user
// back to page 1; changing only page or sort keeps the other one as is.
func (fs FilterSet) Update(key, value string) (FilterSet, error) {
	switch key {
	case KeyPage:
		fs.Page = parsePage(value)
		return fs, nil
	case KeySort:
		fs.SortBy = ParseSortBy(value)
		return fs, nil
	}

	var err error
	switch key {
	case KeyQuery:
		fs.Keyword = strings.TrimSpace(value)
	case KeyLocation:
		fs.Location = value
	case KeyCategory:
		fs.CategoryID = value
	case KeyJobType:
		fs.JobType = value
	case KeyExperienceLevel:
		fs.ExperienceLevel = value
	case KeySalary:
		fs.SalaryText = value
	case KeySalaryRange:
		fs.SalaryRange = nil
		if value != "" {
			fs.SalaryRange, err = parseSalaryRange(value)
		}
	case KeyFeaturedOnly:
		fs.FeaturedOnly = parseBool(value)
	default:
		return fs, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	fs.Page = 1
	return fs, err
}

// HasFilters reports whether anything other than page/sort is set.
func (fs FilterSet) HasFilters() bool {
	return fs.Keyword != "" ||
		isSet(fs.Location) ||
		isSet(fs.CategoryID) ||
		fs.JobType != "" ||
		fs.ExperienceLevel != "" ||
		fs.SalaryText != "" ||
		fs.SalaryRange != nil ||
		fs.FeaturedOnly
}

func isSet(v string) bool {
	return v != "" && v != SentinelAll
}

// parsePage falls back to 1 for anything that is not a page in [1, MaxPage].
func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxPage {
		return 1
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSalaryRange(raw string) (*SalaryRange, error) {
	var pair []float64
	if err := json.Unmarshal([]byte(raw), &pair); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedSalaryRange, raw, err)
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: %q: want 2 values, got %d", ErrMalformedSalaryRange, raw, len(pair))
	}
	return &SalaryRange{Min: pair[0], Max: pair[1]}, nil
}

func formatSalaryRange(r SalaryRange) string {
	data, _ := json.Marshal([2]float64{r.Min, r.Max})
	return string(data)
}

// salaryLabel renders a range bound the way it appears in salary text ("15", "7.5").
func salaryLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
