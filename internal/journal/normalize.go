package journal

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen       = 200
	maxMoodLen        = 50
	maxSecondaryMoods = 2
	listSeparator     = ","
	defaultPageSize   = 10
	maxPageSize       = 100
	maxPageIndex      = math.MaxInt / maxPageSize
	maxLookbackDays   = 3660
)

// EntryInput carries the user-editable fields of an entry.
type EntryInput struct {
	Title          string
	Content        string
	PrimaryMood    string
	SecondaryMoods []string
	Tags           []string
}

type normalizedInput struct {
	title     string
	content   string
	primary   string
	secondary []string
	tags      []string
}

func normalizeInput(in EntryInput) (normalizedInput, error) {
	out := normalizedInput{
		title:   strings.TrimSpace(in.Title),
		content: strings.TrimSpace(in.Content),
		primary: strings.TrimSpace(in.PrimaryMood),
	}
	if utf8.RuneCountInString(out.title) > maxTitleLen {
		return normalizedInput{}, validationf("title exceeds %d characters", maxTitleLen)
	}
	if out.primary == "" {
		return normalizedInput{}, validationf("primary mood is required")
	}
	if utf8.RuneCountInString(out.primary) > maxMoodLen {
		return normalizedInput{}, validationf("primary mood exceeds %d characters", maxMoodLen)
	}

	secondary, err := uniqueFold(in.SecondaryMoods, "secondary mood", out.primary)
	if err != nil {
		return normalizedInput{}, err
	}
	if len(secondary) > maxSecondaryMoods {
		secondary = secondary[:maxSecondaryMoods]
	}
	for _, m := range secondary {
		if utf8.RuneCountInString(m) > maxMoodLen {
			return normalizedInput{}, validationf("secondary mood exceeds %d characters", maxMoodLen)
		}
	}
	out.secondary = secondary

	tags, err := uniqueFold(in.Tags, "tag")
	if err != nil {
		return normalizedInput{}, err
	}
	out.tags = tags
	return out, nil
}

// uniqueFold trims values, drops blanks and anything equal to one of
// exclude, and removes case-insensitive duplicates keeping the first
// spelling in encounter order.  Values may not contain the storage
// separator.
func uniqueFold(values []string, what string, exclude ...string) ([]string, error) {
	seen := make(map[string]struct{}, len(values)+len(exclude))
	for _, x := range exclude {
		seen[strings.ToLower(x)] = struct{}{}
	}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, listSeparator) {
			return nil, validationf("%s %q must not contain %q", what, v, listSeparator)
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// cleanFilter trims and dedupes a search filter set.  Values containing the
// separator can never match a stored element and are dropped; unmatchable
// reports that the caller asked for a filter of which nothing is left.
func cleanFilter(values []string) (out []string, unmatchable bool) {
	seen := make(map[string]struct{}, len(values))
	asked := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		asked = true
		if strings.Contains(v, listSeparator) {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out, asked && len(out) == 0
}
