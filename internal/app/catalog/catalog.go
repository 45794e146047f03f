// Package catalog maps student course codes to canonical program names.
//
// The alias table below is the only course-code lookup in the codebase. Codes that
// are not listed fall back to a mechanical transform, see CanonicalName.
package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// AliasTableVersion is bumped whenever an entry in aliases changes so clients
// caching the table can detect drift.
const AliasTableVersion = 3

// aliases maps a normalised course code to its canonical program name.
var aliases = map[string]string{
	"agric_6":      "Agriculture Extension Level 6",
	"auto_5":       "Automotive Engineering Level 5",
	"auto_6":       "Automotive Engineering Level 6",
	"beauty_4":     "Hairdressing and Beauty Therapy Level 4",
	"building_6":   "Building Technology Level 6",
	"elec_3":       "Electrical Installation Level 3",
	"elec_5":       "Electrical Installation Level 5",
	"elec_6":       "Electrical and Electronics Engineering Level 6",
	"fashion_5":    "Fashion Design and Garment Making Level 5",
	"food_bev_5":   "Food and Beverage Production Level 5",
	"ict_5":        "ICT Technician Level 5",
	"ict_6":        "ICT Technician Level 6",
	"masonry_4":    "Masonry Level 4",
	"plumbing_4":   "Plumbing Level 4",
	"plumbing_5":   "Plumbing Level 5",
	"welding_4":    "Welding and Fabrication Level 4",
	"accounts_6":   "Accountancy Level 6",
	"social_wk_6":  "Social Work and Community Development Level 6",
	"supply_ch_6":  "Supply Chain Management Level 6",
	"hospitality6": "Hospitality Management Level 6",
}

// Alias is one entry of the alias table.
type Alias struct {
	CourseCode  string `json:"courseCode"`
	ProgramName string `json:"programName"`
}

// Aliases returns a copy of the alias table sorted by course code.
func Aliases() []Alias {
	out := make([]Alias, 0, len(aliases))
	for code, name := range aliases {
		out = append(out, Alias{CourseCode: code, ProgramName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out
}

// CanonicalName resolves a course code to a program name. The second result is
// false only for blank input. Matching against stored programs is left to the caller.
func CanonicalName(courseCode string) (string, bool) {
	code := normalize(courseCode)
	if code == "" {
		return "", false
	}
	if name, ok := aliases[code]; ok {
		return name, true
	}
	return fallbackName(code), true
}

// normalize lower-cases the code and folds spaces and hyphens to underscores.
func normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.NewReplacer(" ", "_", "-", "_").Replace(code)
	for strings.Contains(code, "__") {
		code = strings.ReplaceAll(code, "__", "_")
	}
	return strings.Trim(code, "_")
}

// fallbackName turns "plumbing_4" into "Plumbing Level 4". An explicit "level"
// token is not duplicated.
func fallbackName(code string) string {
	words := strings.Split(code, "_")

	last := len(words) - 1
	if last > 0 && isDigits(words[last]) {
		level := words[last]
		words = words[:last]
		if strings.EqualFold(words[len(words)-1], "level") {
			words = words[:len(words)-1]
		}
		words = append(words, "level", level)
	}

	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
