package services

import (
	"regexp"
	"sync"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"phishing", "malware",
}

// ContentFilter screens free-text descriptions on reports and claims.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	compiled            bool
	mu                  sync.RWMutex
}

func NewContentFilter() *ContentFilter {
	cf := &ContentFilter{}
	cf.compilePatterns()
	return cf
}

func (cf *ContentFilter) compilePatterns() {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.compiled {
		return
	}

	cf.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			cf.bannedWordRegexps = append(cf.bannedWordRegexps, re)
		}
	}

	cf.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	cf.repeatedCharPattern = regexp.MustCompile(`(?i)(a{4,}|b{4,}|c{4,}|d{4,}|e{4,}|f{4,}|g{4,}|h{4,}|i{4,}|j{4,}|k{4,}|l{4,}|m{4,}|n{4,}|o{4,}|p{4,}|q{4,}|r{4,}|s{4,}|t{4,}|u{4,}|v{4,}|w{4,}|x{4,}|y{4,}|z{4,}|!{4,}|\?{4,}|\.{4,})`)
	cf.compiled = true
}

// FilterContent returns false and a reason code when text should be rejected.
func (cf *ContentFilter) FilterContent(text string) (bool, string) {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range cf.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if cf.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if cf.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	return true, ""
}

func (cf *ContentFilter) ContainsProfanity(text string) bool {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	for _, re := range cf.bannedWordRegexps {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (cf *ContentFilter) RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language": "Description contains inappropriate language.",
		"url_not_allowed":        "URLs and web links are not allowed in descriptions.",
		"spam_detected":          "Description appears to be spam.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Description does not meet our content guidelines."
}

// check returns a validation error when text is rejected.
func (cf *ContentFilter) check(text string) error {
	if ok, reason := cf.FilterContent(text); !ok {
		return newError(ErrValidation, reason, cf.RejectionMessage(reason))
	}
	return nil
}
