package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFindsKnownPatterns(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		ruleID   string
		severity string
	}{
		{
			name:     "hardcoded credential",
			code:     `password = "hunter2"`,
			ruleID:   "hardcoded-credential",
			severity: SeverityCritical,
		},
		{
			name:     "dynamic eval",
			code:     `result = eval(user_input)`,
			ruleID:   "dynamic-eval",
			severity: SeverityHigh,
		},
		{
			name:     "shell injection",
			code:     `subprocess.run(cmd, shell=True)`,
			ruleID:   "shell-injection",
			severity: SeverityHigh,
		},
		{
			name:     "sql concatenation",
			code:     `query = "SELECT * FROM users WHERE id = " + user_id`,
			ruleID:   "sql-concat",
			severity: SeverityHigh,
		},
		{
			name:     "weak hash",
			code:     `digest = md5(data)`,
			ruleID:   "weak-hash",
			severity: SeverityMedium,
		},
		{
			name:     "insecure temp file",
			code:     `path = "/tmp/scratch"`,
			ruleID:   "insecure-temp",
			severity: SeverityLow,
		},
	}

	s := NewRegexSecurityScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := s.Scan(tt.code)
			require.NoError(t, err)
			require.NotEmpty(t, findings)

			assert.Equal(t, tt.ruleID, findings[0].RuleID)
			assert.Equal(t, tt.severity, findings[0].Severity)
			assert.Equal(t, 1, findings[0].Location)
		})
	}
}

func TestScanCleanCode(t *testing.T) {
	s := NewRegexSecurityScanner()
	findings, err := s.Scan(`def add(a, b):
    return a + b`)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestScanReportsLineNumbers(t *testing.T) {
	s := NewRegexSecurityScanner()
	findings, err := s.Scan("x = 1\ny = 2\ntoken = \"abc123\"")
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, 3, findings[0].Location)
}

func TestReduceFindings(t *testing.T) {
	assert.Equal(t, 0.0, ReduceFindings(nil))

	findings := []Finding{
		{Severity: SeverityLow},
		{Severity: SeverityMedium},
		{Severity: SeverityHigh},
		{Severity: SeverityCritical},
	}
	assert.Equal(t, 7.5, ReduceFindings(findings))

	// unknown severities fall back to the medium weight
	assert.Equal(t, 1.0, ReduceFindings([]Finding{{Severity: "mystery"}}))
}
