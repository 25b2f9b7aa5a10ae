package dump

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var redirectPattern = regexp.MustCompile(`(?i)^#(REDIRECT|転送)\s*\[\[`)

// dateRelatedPatterns match year, decade and day pages such as 1999年,
// 1999年のスポーツ, 1990年代 and 3月14日, plus their English counterparts.
var dateRelatedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+年(の.+)?$`),
	regexp.MustCompile(`^\d+年代(の.+)?$`),
	regexp.MustCompile(`^\d+月\d+日$`),
	regexp.MustCompile(`^訃報\s\d+年\d+月$`),
	regexp.MustCompile(`^\d{1,4}$`),
	regexp.MustCompile(`^\d{1,4}s$`),
	regexp.MustCompile(`^(January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}$`),
	regexp.MustCompile(`^Deaths in .+ \d{4}$`),
}

var listArticlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^.+一覧\s?\(.+\)$`),
	regexp.MustCompile(`^List of .+`),
}

// IsRedirectText reports whether wikitext is a redirect directive.
func IsRedirectText(text string) bool {
	return redirectPattern.MatchString(strings.TrimLeftFunc(text, unicode.IsSpace))
}

// IsDateRelated reports whether a title is a year, decade, day, or obituary
// stub. Such pages link to nearly everything and short-circuit routes.
func IsDateRelated(title string) bool {
	return matchAny(dateRelatedPatterns, title)
}

// IsListArticle reports whether a title is a list page.
func IsListArticle(title string) bool {
	return matchAny(listArticlePatterns, title)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// NormalizeTitle maps a link target to its canonical page title: underscores
// become spaces, surrounding blanks are trimmed and the first letter is
// upper-cased.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	if title == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(title)
	if !unicode.IsLower(r) {
		return title
	}
	return string(unicode.ToUpper(r)) + title[size:]
}
