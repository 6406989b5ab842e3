package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SmartCriteria is a predicate over Video metadata. Every present field must
// be satisfied for a Video to match; an empty SmartCriteria matches all
// videos.
type SmartCriteria struct {
	NameFilters  []string // substrings, case-insensitive, ANY-match
	StartDate    *time.Time
	EndDate      *time.Time
	MinDuration  *float64
	MaxDuration  *float64
	MinSize      *int64
	MaxSize      *int64
	Keywords     []string
	PathPatterns []string
}

// Matches reports whether v satisfies every present field of c.
func (c SmartCriteria) Matches(v *Video) bool {
	if len(c.NameFilters) > 0 {
		title := strings.ToLower(v.Title)
		matched := false
		for _, f := range c.NameFilters {
			if strings.Contains(title, strings.ToLower(f)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if c.StartDate != nil && v.DateAdded.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && v.DateAdded.After(*c.EndDate) {
		return false
	}

	if c.MinDuration != nil && v.Duration < *c.MinDuration {
		return false
	}
	if c.MaxDuration != nil && v.Duration > *c.MaxDuration {
		return false
	}

	if c.MinSize != nil {
		if v.FileSize == nil || *v.FileSize < *c.MinSize {
			return false
		}
	}
	if c.MaxSize != nil {
		if v.FileSize == nil || *v.FileSize > *c.MaxSize {
			return false
		}
	}

	if len(c.Keywords) > 0 {
		haystack := strings.ToLower(v.Title + " " + strings.Join(metadataValues(v), " "))
		for _, kw := range c.Keywords {
			if !strings.Contains(haystack, strings.ToLower(kw)) {
				return false
			}
		}
	}

	if len(c.PathPatterns) > 0 {
		matched := false
		for _, p := range c.PathPatterns {
			if strings.Contains(v.URL, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func metadataValues(v *Video) []string {
	out := make([]string, 0, len(v.CustomMetadata))
	for _, val := range v.CustomMetadata {
		out = append(out, val)
	}
	return out
}

// CanonicalForm renders c as the pipe-joined key:value string used as the
// smart-folder result cache key, e.g. "name:foo|minSize:1048576".
func (c SmartCriteria) CanonicalForm() string {
	var parts []string

	if len(c.NameFilters) > 0 {
		sorted := append([]string(nil), c.NameFilters...)
		sort.Strings(sorted)
		parts = append(parts, "name:"+strings.Join(sorted, ","))
	}
	if c.StartDate != nil {
		parts = append(parts, "startDate:"+c.StartDate.UTC().Format(time.RFC3339))
	}
	if c.EndDate != nil {
		parts = append(parts, "endDate:"+c.EndDate.UTC().Format(time.RFC3339))
	}
	if c.MinDuration != nil {
		parts = append(parts, "minDuration:"+strconv.FormatFloat(*c.MinDuration, 'f', -1, 64))
	}
	if c.MaxDuration != nil {
		parts = append(parts, "maxDuration:"+strconv.FormatFloat(*c.MaxDuration, 'f', -1, 64))
	}
	if c.MinSize != nil {
		parts = append(parts, "minSize:"+strconv.FormatInt(*c.MinSize, 10))
	}
	if c.MaxSize != nil {
		parts = append(parts, "maxSize:"+strconv.FormatInt(*c.MaxSize, 10))
	}
	if len(c.Keywords) > 0 {
		sorted := append([]string(nil), c.Keywords...)
		sort.Strings(sorted)
		parts = append(parts, "keywords:"+strings.Join(sorted, ","))
	}
	if len(c.PathPatterns) > 0 {
		sorted := append([]string(nil), c.PathPatterns...)
		sort.Strings(sorted)
		parts = append(parts, "path:"+strings.Join(sorted, ","))
	}

	return strings.Join(parts, "|")
}

// criteriaJSON mirrors SmartCriteria with plain field names for round-trip
// encoding, independent of the canonical cache-key form.
type criteriaJSON struct {
	NameFilters  []string   `json:"name_filters,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	MinDuration  *float64   `json:"min_duration,omitempty"`
	MaxDuration  *float64   `json:"max_duration,omitempty"`
	MinSize      *int64     `json:"min_size,omitempty"`
	MaxSize      *int64     `json:"max_size,omitempty"`
	Keywords     []string   `json:"keywords,omitempty"`
	PathPatterns []string   `json:"path_patterns,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c SmartCriteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(criteriaJSON{
		NameFilters:  c.NameFilters,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		MinDuration:  c.MinDuration,
		MaxDuration:  c.MaxDuration,
		MinSize:      c.MinSize,
		MaxSize:      c.MaxSize,
		Keywords:     c.Keywords,
		PathPatterns: c.PathPatterns,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *SmartCriteria) UnmarshalJSON(data []byte) error {
	var j criteriaJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("unmarshal smart criteria: %w", err)
	}
	c.NameFilters = j.NameFilters
	c.StartDate = j.StartDate
	c.EndDate = j.EndDate
	c.MinDuration = j.MinDuration
	c.MaxDuration = j.MaxDuration
	c.MinSize = j.MinSize
	c.MaxSize = j.MaxSize
	c.Keywords = j.Keywords
	c.PathPatterns = j.PathPatterns
	return nil
}
