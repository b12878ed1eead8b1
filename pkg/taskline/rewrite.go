package taskline

import (
	"strings"
	"unicode"
)

// ToggleStatus flips the checkbox between open and done. Lines without a
// checkbox come back unchanged.
func ToggleStatus(line string) string {
	switch {
	case strings.Contains(line, "- [ ]"):
		return strings.ReplaceAll(line, "- [ ]", "- [x]")
	case strings.Contains(line, "- [x]"), strings.Contains(line, "- [X]"):
		line = strings.ReplaceAll(line, "- [x]", "- [ ]")

		return strings.ReplaceAll(line, "- [X]", "- [ ]")
	default:
		return line
	}
}

// HasID reports whether the line already carries an id comment.
func HasID(line string) bool {
	return tidPattern.MatchString(line)
}

// AddID appends an id comment to the line. Lines that already have one
// come back unchanged: ids are stable once assigned.
func AddID(line, id string) string {
	if HasID(line) {
		return line
	}

	return strings.TrimRightFunc(line, unicode.IsSpace) + " <!-- tid: " + id + " -->"
}

// SetDue replaces the @due(...) property with value, inserting before the
// id comment so the comment stays at the end of the line. An empty value
// removes the property.
func SetDue(line, value string) string {
	line = duePattern.ReplaceAllString(line, "")
	if value == "" {
		return line
	}

	return insertBeforeID(line, " @due("+value+")")
}

// SetPriority replaces the priority marker with the one for value (high,
// medium or low). An empty value removes the marker.
func SetPriority(line, value string) string {
	line = priorityPattern.ReplaceAllString(line, "")
	if value == "" {
		return line
	}

	var marker string

	switch value {
	case "high":
		marker = "!p1"
	case "medium":
		marker = "!p2"
	case "low":
		marker = "!p4"
	default:
		marker = "!p3"
	}

	return insertBeforeID(line, " "+marker)
}

func insertBeforeID(line, insert string) string {
	if loc := tidPattern.FindStringIndex(line); loc != nil {
		head := strings.TrimRightFunc(line[:loc[0]], unicode.IsSpace)

		return head + insert + " " + line[loc[0]:]
	}

	return strings.TrimRightFunc(line, unicode.IsSpace) + insert
}
