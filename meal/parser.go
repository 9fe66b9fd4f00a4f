/*
parser.go - Meal extraction from delivery notification emails

PURPOSE:
  Turns the delivery service's free-text/HTML notification email into
  structured meal records. The emails arrive quoted-printable encoded,
  sometimes HTML, sometimes plain text, and the meal list sits under a
  "What's In Your Box" heading.

STRATEGY:
  1. Decode quoted-printable (=20, =3D, soft line breaks).
  2. Strip HTML tags when the body is HTML.
  3. Find the meal section and collect candidate lines as meal names.
  4. Extract the shipped date from "will arrive on ..." / "Week of ..."
     phrasing; fall back to the provided default date.

  Parsing is deliberately forgiving: a malformed email yields zero meals,
  never an error.
*/
package meal

import (
	"bufio"
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"
	"time"

	"github.com/warp/household-engine/household"
)

// ParsedEmail is the result of parsing one notification email.
type ParsedEmail struct {
	Meals       []ParsedMeal
	DateShipped household.CivilDate
}

// ParsedMeal is one meal name/description pair found in an email.
type ParsedMeal struct {
	Name        string
	Description string
}

var (
	sectionPattern  = regexp.MustCompile(`(?i)what.?s in your box`)
	arrivePattern   = regexp.MustCompile(`(?i)will arrive on\s+(?:\w+,\s*)?([A-Za-z]+\s+\d{1,2})`)
	weekOfPattern   = regexp.MustCompile(`(?i)week of\s+\w+,?\s+([A-Za-z]+\s+\d{1,2})`)
	htmlTagPattern  = regexp.MustCompile(`(?s)<[^>]*>`)
	htmlHeadPattern = regexp.MustCompile(`(?is)<(head|style|script)[^>]*>.*?</(head|style|script)>`)
)

// ParseEmail extracts meals and the shipped date from a raw email body.
// defaultDate is used when no delivery date phrasing is found.
func ParseEmail(raw string, defaultDate household.CivilDate) ParsedEmail {
	content := DecodeQuotedPrintable(raw)

	if strings.Contains(strings.ToLower(content), "<html") || htmlTagPattern.MatchString(content) {
		content = stripHTML(content)
	}

	return ParsedEmail{
		Meals:       extractMeals(content),
		DateShipped: extractShippedDate(content, defaultDate),
	}
}

// DecodeQuotedPrintable decodes quoted-printable content, falling back
// to manual replacement of the common escape pairs when the proper
// decoder chokes on a malformed sequence.
func DecodeQuotedPrintable(content string) string {
	decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(content)))
	if err == nil {
		return string(decoded)
	}

	replacer := strings.NewReplacer(
		"=\r\n", "", "=\n", "", // soft line breaks
		"=20", " ",
		"=3D", "=",
		"=0D=0A", "\n",
		"=0A", "\n",
		"=0D", "\r",
		"=E2=80=99", "'",
	)
	return replacer.Replace(content)
}

// extractMeals collects candidate meal lines after the box heading.
// Without a heading the whole body is scanned, which keeps plain-text
// forwards working.
func extractMeals(content string) []ParsedMeal {
	section := content
	if loc := sectionPattern.FindStringIndex(content); loc != nil {
		section = content[loc[1]:]
	}

	var meals []ParsedMeal
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(section))
	var pending *ParsedMeal
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if pending != nil {
				meals = append(meals, *pending)
				pending = nil
			}
			continue
		}

		if isMealCandidate(line) {
			if pending != nil {
				meals = append(meals, *pending)
			}
			if seen[line] {
				pending = nil
				continue
			}
			seen[line] = true
			pending = &ParsedMeal{Name: line}
		} else if pending != nil && pending.Description == "" && len(line) <= MaxDescriptionLen {
			pending.Description = line
		}
	}
	if pending != nil {
		meals = append(meals, *pending)
	}
	return meals
}

// isMealCandidate filters section lines down to plausible meal names:
// short title-ish lines starting with a capital letter, containing the
// "with"/"&" phrasing meal kits use, and free of boilerplate wording.
func isMealCandidate(line string) bool {
	if len(line) < 8 || len(line) > MaxMealNameLen {
		return false
	}
	if line[0] < 'A' || line[0] > 'Z' {
		return false
	}

	lower := strings.ToLower(line)
	for _, boilerplate := range []string{
		"your box", "delivery", "arrive", "unsubscribe", "view in browser",
		"manage", "account", "http", "week of", "hello", "hi ",
	} {
		if strings.Contains(lower, boilerplate) {
			return false
		}
	}

	return strings.Contains(lower, " with ") ||
		strings.Contains(line, " & ") ||
		strings.Contains(lower, " and ")
}

// extractShippedDate finds a "Month Day" delivery date and resolves it
// to a civil date near the default date's year.
func extractShippedDate(content string, defaultDate household.CivilDate) household.CivilDate {
	var dateStr string
	if m := arrivePattern.FindStringSubmatch(content); m != nil {
		dateStr = m[1]
	} else if m := weekOfPattern.FindStringSubmatch(content); m != nil {
		dateStr = m[1]
	}
	if dateStr == "" {
		return defaultDate
	}

	anchor := defaultDate.Time(time.UTC)
	parsed, err := time.Parse("January 2", dateStr)
	if err != nil {
		if parsed, err = time.Parse("Jan 2", dateStr); err != nil {
			return defaultDate
		}
	}

	// "December 5" in a January email means last December, not next.
	candidate := time.Date(anchor.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Sub(anchor) > 180*24*time.Hour {
		candidate = candidate.AddDate(-1, 0, 0)
	} else if anchor.Sub(candidate) > 180*24*time.Hour {
		candidate = candidate.AddDate(1, 0, 0)
	}

	return household.CivilDate(candidate.Format("2006-01-02"))
}

func stripHTML(content string) string {
	content = htmlHeadPattern.ReplaceAllString(content, "")
	content = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</td>|</tr>|</h\d>|</li>`).ReplaceAllString(content, "\n")
	content = htmlTagPattern.ReplaceAllString(content, "")
	content = strings.NewReplacer("&amp;", "&", "&nbsp;", " ", "&#39;", "'", "&quot;", `"`).Replace(content)
	return content
}
