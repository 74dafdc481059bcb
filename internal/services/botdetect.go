package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Bot rule categories.
const (
	BotCategoryEmailScanner = "email_security_scanner"
	BotCategoryAutomation   = "generic_automation"
	BotCategoryHTTPClient   = "http_client_library"
)

// Verdict reasons that are not pattern matches.
const (
	BotReasonMissingUserAgent = "missing_user_agent"
	BotReasonShortUserAgent   = "short_user_agent"
	BotReasonPattern          = "pattern"
)

// Real browsers send far longer user agents than this.
const minUserAgentLength = 20

// BotRule is one entry of the user-agent ruleset.
type BotRule struct {
	Category string
	Pattern  *regexp.Regexp
}

// botRules is evaluated in order; the first match wins. Compiled once, never mutated.
var botRules = []BotRule{
	// Email security scanners and link rewriters
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)safelinks`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)barracuda`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)proofpoint`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)mimecast`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)googleimageproxy`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)fortiguard`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)symantec`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)fireeye`)},
	{BotCategoryEmailScanner, regexp.MustCompile(`(?i)trendmicro`)},

	// Crawler / bot / preview tokens
	{BotCategoryAutomation, regexp.MustCompile(`(?i)bot\b`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)crawler`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)spider`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)\bscan`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)preview`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)prefetch`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)slurp`)},
	{BotCategoryAutomation, regexp.MustCompile(`(?i)archiver`)},

	// Automated HTTP clients
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)\bcurl\b`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)\bwget\b`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)python-requests`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)python-urllib`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)Go-http-client`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)Java/`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)Apache-HttpClient`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)node-fetch`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)axios/`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)libwww-perl`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)http_request`)},
	{BotCategoryHTTPClient, regexp.MustCompile(`(?i)okhttp`)},
}

// BotVerdict explains a classification. Rule is set only for pattern matches.
type BotVerdict struct {
	Suspected bool
	Reason    string
	Rule      *BotRule
}

// Classify inspects a user agent and reports whether it looks automated.
// A nil user agent means the header was absent.
func Classify(userAgent *string) BotVerdict {
	if userAgent == nil {
		return BotVerdict{Suspected: true, Reason: BotReasonMissingUserAgent}
	}
	trimmed := strings.TrimSpace(*userAgent)
	if trimmed == "" {
		return BotVerdict{Suspected: true, Reason: BotReasonMissingUserAgent}
	}
	if utf8.RuneCountInString(trimmed) < minUserAgentLength {
		return BotVerdict{Suspected: true, Reason: BotReasonShortUserAgent}
	}

	for i := range botRules {
		if botRules[i].Pattern.MatchString(*userAgent) {
			rule := botRules[i]
			return BotVerdict{Suspected: true, Reason: BotReasonPattern, Rule: &rule}
		}
	}
	return BotVerdict{}
}

// IsSuspectedBot is Classify reduced to its boolean.
func IsSuspectedBot(userAgent *string) bool {
	return Classify(userAgent).Suspected
}

// BotRules returns a copy of the ruleset for inspection.
func BotRules() []BotRule {
	out := make([]BotRule, len(botRules))
	copy(out, botRules)
	return out
}
