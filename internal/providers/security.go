package providers

import (
	"regexp"
	"strings"
)

type securityRule struct {
	id       string
	severity string
	pattern  *regexp.Regexp
}

// RegexSecurityScanner is the reference security checker: a small rule set of
// well-known dangerous patterns. The rule set itself is not part of this
// system's scope; any scanner satisfying SecurityScanner can replace it.
type RegexSecurityScanner struct {
	rules []securityRule
}

// NewRegexSecurityScanner creates the reference scanner with its built-in rules
func NewRegexSecurityScanner() *RegexSecurityScanner {
	return &RegexSecurityScanner{
		rules: []securityRule{
			{
				id:       "hardcoded-credential",
				severity: SeverityCritical,
				pattern:  regexp.MustCompile(`(?i)(password|passwd|secret|api_key|apikey|token)\s*[:=]\s*["'][^"']+["']`),
			},
			{
				id:       "dynamic-eval",
				severity: SeverityHigh,
				pattern:  regexp.MustCompile(`\beval\s*\(|\bexec\s*\(`),
			},
			{
				id:       "shell-injection",
				severity: SeverityHigh,
				pattern:  regexp.MustCompile(`os\.system\s*\(|shell\s*=\s*True|\bpopen\s*\(`),
			},
			{
				id:       "sql-concat",
				severity: SeverityHigh,
				pattern:  regexp.MustCompile(`(?i)(select|insert|update|delete)\s+.*["']\s*\+|\+\s*["'].*\b(from|where|values)\b`),
			},
			{
				id:       "weak-hash",
				severity: SeverityMedium,
				pattern:  regexp.MustCompile(`(?i)\b(md5|sha1)\s*\(`),
			},
			{
				id:       "insecure-temp",
				severity: SeverityLow,
				pattern:  regexp.MustCompile(`(?i)\bmktemp\b|/tmp/[a-z0-9_]+`),
			},
		},
	}
}

// Scan applies each rule per line and returns one finding per hit
func (s *RegexSecurityScanner) Scan(code string) ([]Finding, error) {
	findings := []Finding{}

	for lineNo, line := range strings.Split(code, "\n") {
		for _, rule := range s.rules {
			if rule.pattern.MatchString(line) {
				findings = append(findings, Finding{
					RuleID:   rule.id,
					Severity: rule.severity,
					Location: lineNo + 1,
				})
			}
		}
	}

	return findings, nil
}
