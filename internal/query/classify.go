package query

import (
	"regexp"
	"strings"

	"ctm/internal/models"
)

// Classification is an ordered rule list, first match wins. The order is
// load-bearing: "who modified config.py" must resolve to author search even
// though it also names a file.
type rule struct {
	mode  models.Mode
	match func(q string) bool
}

var classifyRules = []rule{
	{models.ModeAuthor, containsAny("author", "who")},
	{models.ModeFile, isFileQuery},
	{models.ModeTimeRange, isTimeQuery},
}

// Classify maps a free-text query to a search mode. Queries matching no
// rule fall through to semantic search.
func Classify(query string) models.Mode {
	q := strings.ToLower(query)
	for _, r := range classifyRules {
		if r.match(q) {
			return r.mode
		}
	}
	return models.ModeSemantic
}

func containsAny(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

// fileExtensions are the tokens that mark a query as file-oriented even
// without the word "file".
var fileExtensions = []string{
	".py", ".js", ".ts", ".go", ".java", ".rb", ".rs",
	".c", ".cpp", ".h", ".css", ".html", ".md", ".yaml", ".yml", ".json",
}

func isFileQuery(q string) bool {
	if strings.Contains(q, "file") {
		return true
	}
	for _, ext := range fileExtensions {
		if strings.Contains(q, ext) {
			return true
		}
	}
	return false
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func isTimeQuery(q string) bool {
	for _, term := range []string{"before", "after", "during"} {
		if strings.Contains(q, term) {
			return true
		}
	}
	return yearPattern.MatchString(q)
}

// triggerWords are stripped from a query before author/file dispatch.
var triggerWords = []string{"author", "who", "file", "modified"}

// extractFragment removes the trigger words from the query to leave the
// search fragment. This is a best-effort substring strip, not a parser: a
// query whose payload itself contains a trigger word (a filename with
// "file" in it, say) gets mangled.
func extractFragment(query string) string {
	q := strings.ToLower(query)
	for _, w := range triggerWords {
		q = strings.ReplaceAll(q, w, "")
	}
	return strings.Join(strings.Fields(q), " ")
}

// timeBounds derives an inclusive timestamp range from a query. Explicit
// "start..end" wins; otherwise years in the text define the range, narrowed
// by "before" (everything up to the year) or widened by "after" (the year
// onward). Returns ok=false when no usable bounds exist.
func timeBounds(query string) (start, end string, ok bool) {
	q := strings.ToLower(query)

	if s, e, found := strings.Cut(q, ".."); found {
		s, e = strings.TrimSpace(s), strings.TrimSpace(e)
		if s != "" && e != "" {
			return s, e, true
		}
	}

	years := yearPattern.FindAllString(q, -1)
	if len(years) == 0 {
		return "", "", false
	}
	first, last := years[0], years[0]
	for _, y := range years[1:] {
		if y < first {
			first = y
		}
		if y > last {
			last = y
		}
	}

	start = first + "-01-01"
	end = last + "-12-31T23:59:59"
	if strings.Contains(q, "before") {
		start, end = "0000-01-01", first+"-01-01"
	} else if strings.Contains(q, "after") {
		end = "9999-12-31"
	}
	return start, end, true
}
