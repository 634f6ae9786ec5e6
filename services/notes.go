package services

import (
	"strings"

	"personal-data-assistant/models"
)

// actionKeywords mark a note line as an action item. Matching is
// case-insensitive; the keywords are stored upper-case.
var actionKeywords = []string{"TODO", "ACTION", "FOLLOW UP", "FOLLOW-UP", "NEXT"}

// ExtractNotes pulls action items and hashtag topics out of note lines.
// Blank lines count towards TotalLines and are otherwise skipped.
func ExtractNotes(lines []string) models.NotesExtraction {
	out := models.NotesExtraction{
		ActionItems: make([]string, 0),
		Topics:      make(map[string]int),
	}

	for _, line := range lines {
		out.TotalLines++

		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		if isActionItem(s) {
			out.ActionItems = append(out.ActionItems, s)
		}

		for _, token := range strings.Fields(s) {
			if strings.HasPrefix(token, "#") && len(token) > 1 {
				out.Topics[token]++
			}
		}
	}

	return out
}

func isActionItem(line string) bool {
	upper := strings.ToUpper(line)
	for _, k := range actionKeywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}
