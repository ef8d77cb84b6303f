// Package placeholder finds and fills bracketed fields in generated tender text.
//
// A placeholder is a named gap marked by one of three delimiter families:
// [Name], {Name} or <Name>. Names are compared case-insensitively and a name
// appearing under several delimiter families is one logical field.
package placeholder

import (
	"regexp"
	"sort"
	"strings"
)

// Each family is matched independently over the same text. Matches are
// non-greedy, so a name containing its own closing delimiter terminates at
// the first closer and nested delimiters are not supported.
var delimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(.*?)\]`),
	regexp.MustCompile(`\{(.*?)\}`),
	regexp.MustCompile(`<(.*?)>`),
}

// Detect returns the normalized placeholder names found in text, deduplicated
// across delimiter families and repeats, sorted for deterministic output.
// Whitespace-only names are degenerate and excluded.
func Detect(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]string)
	for _, re := range delimPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := seen[key]; !ok {
				seen[key] = name
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for _, name := range seen {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Substitute replaces every delimited occurrence of each resolved field with
// its value and returns the rewritten text. The match on the field name is
// case-insensitive and covers all three delimiter families; everything outside
// the matched spans is preserved exactly. Fields absent from values are left
// untouched. Substitution order across distinct names does not matter because
// detected names occupy disjoint spans.
func Substitute(text string, values map[string]string) string {
	if text == "" || len(values) == 0 {
		return text
	}
	out := text
	for name, value := range values {
		if strings.TrimSpace(name) == "" {
			continue
		}
		// The name came out of free text, so it must be treated as a
		// literal, never as a pattern fragment. Detect trims padding
		// inside the delimiters, so the match tolerates it too.
		re, err := regexp.Compile(`(?i)[\[{<]\s*` + regexp.QuoteMeta(name) + `\s*[\]}>]`)
		if err != nil {
			continue
		}
		out = re.ReplaceAllLiteralString(out, value)
	}
	return out
}
