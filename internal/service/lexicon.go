package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	acceptPhrases = []string{"yes", "yep", "yeah", "correct", "looks good", "that's right", "confirm", "confirmed", "approve", "sounds good"}

	confirmAccept = newLexicon(acceptPhrases...)
	negatedAccept = newNegatedLexicon(negationCues, acceptPhrases)
	confirmReject = newLexicon("no", "nope", "incorrect", "wrong", "not right", "reject", "change", "edit", "fix")

	yesAnswers = newLexicon("yes", "y", "yep", "yeah", "yup", "sure", "correct", "absolutely", "definitely", "of course")
	noAnswers  = newLexicon("no", "n", "nope", "nah", "never", "not really", "negative", "i don't", "i do not", "i haven't", "i have not")

	keepAnswers = newLexicon("same", "keep", "keep it", "unchanged", "no change", "still correct")
)

var negationCues = []string{"not", "never", "cannot", "dont", "cant", "isnt", "doesnt", "wont", `\w+n't`}

// maxNegationGap is how many words may sit between a negation cue and the phrase it negates
const maxNegationGap = 3

// lexicon matches whole words or phrases, case-insensitively
type lexicon struct {
	re *regexp.Regexp
}

func newLexicon(phrases ...string) *lexicon {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &lexicon{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// newNegatedLexicon matches a phrase preceded by a negation cue within a few
// words, as in "that isn't correct" or "I do not approve". Cues are regexps.
func newNegatedLexicon(cues, phrases []string) *lexicon {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	pattern := fmt.Sprintf(`(?i)\b(?:%s)(?:\W+[\w']+){0,%d}?\W+(?:%s)\b`,
		strings.Join(cues, "|"), maxNegationGap, strings.Join(quoted, "|"))
	return &lexicon{re: regexp.MustCompile(pattern)}
}

func (l *lexicon) Match(text string) bool {
	return l.re.MatchString(normalizeQuotes(text))
}

func normalizeQuotes(text string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(text)
}

// yesNo maps an answer to "yes" or "no" when exactly one side of the lexicon matches
func yesNo(text string) (string, bool) {
	yes, no := yesAnswers.Match(text), noAnswers.Match(text)
	switch {
	case yes && !no:
		return "yes", true
	case no && !yes:
		return "no", true
	}
	return "", false
}

// isKeepPhrase reports whether the reply asks to leave an existing answer as it is
func isKeepPhrase(text string) bool {
	trimmed := strings.TrimSpace(text)
	return len(strings.Fields(trimmed)) <= 4 && keepAnswers.Match(trimmed)
}
