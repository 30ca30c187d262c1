package text

import (
	"regexp"
	"strings"
)

// DefaultSection labels content that precedes any structural header.
const DefaultSection = "general"

// Group is a run of lines that share one section label: either a detected
// regulation-style header, a positional tag emitted by the table/slide
// extractors, or "general".
type Group struct {
	Section string
	Content string
}

// Matches regulation-style headers: 제1조, 제 12 장, Article 3, Chapter 2.
var sectionHeaderRe = regexp.MustCompile(`^(제\s*\d+\s*[조장]|(?i:article|chapter)\s+\d+)`)

// Matches the positional tags extractors place at group boundaries,
// e.g. "[budget.xlsx-Sheet1]" or "[Slide 3]".
var bracketTagRe = regexp.MustCompile(`^\[([^\[\]\n]+)\]\s*(.*)$`)

// Segment walks raw extracted text and groups lines under section labels.
//
// Structural header lines update the running section and stay in the group
// verbatim. A bracketed tag opens a group labeled by the tag; the tag itself
// is stripped from every tagged line so it appears only at the group
// boundary, and it does not disturb the running header section: prose after
// a tagged block resumes under the last seen header. Blank lines are
// dropped.
func Segment(raw string) []Group {
	var (
		groups  []Group
		lines   []string
		label   = DefaultSection
		current = DefaultSection
	)

	flush := func() {
		if len(lines) == 0 {
			return
		}
		groups = append(groups, Group{Section: label, Content: strings.Join(lines, "\n")})
		lines = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := sectionHeaderRe.FindString(trimmed); m != "" {
			current = normalizeHeader(m)
			flush()
			label = current
			lines = append(lines, trimmed)
			continue
		}

		if m := bracketTagRe.FindStringSubmatch(trimmed); m != nil {
			tag := strings.TrimSpace(m[1])
			if label != tag {
				flush()
				label = tag
			}
			if rest := strings.TrimSpace(m[2]); rest != "" {
				lines = append(lines, rest)
			}
			continue
		}

		// Plain line: belongs under the running header section.
		if label != current {
			flush()
			label = current
		}
		lines = append(lines, line)
	}
	flush()

	return groups
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), " ")
}
