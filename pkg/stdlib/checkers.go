package stdlib

import (
	"fmt"
	"regexp"
	"strings"
)

// These are Phase 3-style keyword checkers, not full NLI-based semantic
// enforcement — the same limitation the reference anchor checkers carry.
// pkg/executor's checkAnchors does not call them; they run only where a
// caller invokes an Anchor's checker directly.

func findKeywords(lowerContent string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lowerContent, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

var hedgingPhrases = []string{
	"i believe", "i think", "probably", "might be",
	"could be", "it seems like", "supposedly",
	"i'm not sure but", "i'm guessing",
}

func checkNoHallucination(content string) (bool, []string) {
	lower := strings.ToLower(content)
	found := findKeywords(lower, hedgingPhrases)
	if len(found) == 0 {
		return true, nil
	}
	return false, []string{fmt.Sprintf("Hedging without citation: %s", strings.Join(found, ", "))}
}

var opinionMarkers = []string{
	"in my opinion", "i feel that", "personally",
	"i prefer", "my favorite", "i'd recommend",
	"i suggest", "to me,",
}

func checkFactualOnly(content string) (bool, []string) {
	lower := strings.ToLower(content)
	found := findKeywords(lower, opinionMarkers)
	if len(found) == 0 {
		return true, nil
	}
	return false, []string{fmt.Sprintf("Opinion markers detected: %s", strings.Join(found, ", "))}
}

var harmfulPatterns = []string{
	"how to make a bomb", "how to hack", "how to steal",
	"kill yourself", "self-harm", "suicide method",
	"racial slur", "hate speech",
}

func checkSafeOutput(content string) (bool, []string) {
	lower := strings.ToLower(content)
	found := findKeywords(lower, harmfulPatterns)
	if len(found) == 0 {
		return true, nil
	}
	return false, []string{fmt.Sprintf("Harmful content detected: %s", strings.Join(found, ", "))}
}

var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ccPattern    = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

func checkPrivacyGuard(content string) (bool, []string) {
	var violations []string
	if ssnPattern.MatchString(content) {
		violations = append(violations, "Possible SSN detected")
	}
	if ccPattern.MatchString(content) {
		violations = append(violations, "Possible credit card number detected")
	}
	if emailPattern.MatchString(content) {
		violations = append(violations, "Email address detected in output")
	}
	if phonePattern.MatchString(content) {
		violations = append(violations, "Phone number detected in output")
	}
	return len(violations) == 0, violations
}

var biasMarkers = []string{
	"the best political party", "the right wing is",
	"the left wing is", "liberals are", "conservatives are",
	"all men are", "all women are", "that race is",
}

func checkNoBias(content string) (bool, []string) {
	lower := strings.ToLower(content)
	found := findKeywords(lower, biasMarkers)
	if len(found) == 0 {
		return true, nil
	}
	return false, []string{fmt.Sprintf("Potential bias detected: %s", strings.Join(found, ", "))}
}

var (
	inappropriateForMinors = []string{
		"explicit sexual", "pornography", "graphic violence",
		"drug use instructions", "alcohol abuse",
		"gambling tutorial",
	}
	profanity = []string{"fuck", "shit", "damn", "bastard", "bitch", "ass "}
)

func checkChildSafe(content string) (bool, []string) {
	lower := strings.ToLower(content)
	var violations []string
	if found := findKeywords(lower, inappropriateForMinors); len(found) > 0 {
		violations = append(violations, fmt.Sprintf("Age-inappropriate content detected: %s", strings.Join(found, ", ")))
	}
	if found := findKeywords(lower, profanity); len(found) > 0 {
		violations = append(violations, "Profanity detected")
	}
	return len(violations) == 0, violations
}

var dangerousCode = []string{
	"os.system(", "subprocess.", "exec(", "eval(",
	"rm -rf", "del /f", "format c:",
	"import os", "import subprocess",
	"__import__(",
}

func checkNoCodeExecution(content string) (bool, []string) {
	lower := strings.ToLower(content)
	found := findKeywords(lower, dangerousCode)
	if len(found) == 0 {
		return true, nil
	}
	return false, []string{fmt.Sprintf("Code execution attempt detected: %s", strings.Join(found, ", "))}
}

var reasoningMarkers = []string{
	"reasoning:", "therefore", "because", "based on",
	"evidence:", "conclusion:", "analysis:",
	"step 1", "firstly", "in summary",
}

func checkAuditTrail(content string) (bool, []string) {
	lower := strings.ToLower(content)
	for _, m := range reasoningMarkers {
		if strings.Contains(lower, m) {
			return true, nil
		}
	}
	return false, []string{"No reasoning trace found. AuditTrail requires visible reasoning steps."}
}
