package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func ua(s string) *string { return &s }

func TestIsSuspectedBot(t *testing.T) {
	tests := []struct {
		name string
		ua   *string
		want bool
	}{
		{"missing header", nil, true},
		{"empty", ua(""), true},
		{"whitespace", ua("    "), true},
		{"short", ua("short"), true},
		{"curl", ua("curl/7.68.0"), true},
		{"desktop chrome", ua(chromeUA), false},
		{"iphone safari", ua("Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"), false},
		{"googlebot", ua("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"), true},
		{"safelinks", ua("Mozilla/5.0 (Windows NT 10.0) Microsoft SafeLinks Protection/1.0"), true},
		{"proofpoint", ua("Mozilla/5.0 (X11; Linux x86_64) Proofpoint URL Defense/3.2"), true},
		{"python requests", ua("python-requests/2.31.0 (Linux; x86_64 build)"), true},
		{"go client", ua("Go-http-client/1.1 (internal monitoring probe)"), true},
		{"java client", ua("Apache-HttpClient/4.5.13 (Java/17.0.2)"), true},
		{"link preview", ua("Mozilla/5.0 (Macintosh) Slack link preview fetcher"), true},
		{"scanner word boundary", ua("Mozilla/5.0 (compatible; SecurityScanner/4.0; +https://example.com)"), false},
		{"scan token", ua("Mozilla/5.0 (compatible; scan-service/4.0; +https://example.com)"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSuspectedBot(tt.ua))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for _, s := range []string{"", "short", "curl/7.68.0", chromeUA} {
		first := IsSuspectedBot(ua(s))
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, IsSuspectedBot(ua(s)), s)
		}
	}
}

func TestClassifyReportsRule(t *testing.T) {
	v := Classify(ua("Wget/1.21.4 (linux-gnu) mirror job"))
	require.True(t, v.Suspected)
	assert.Equal(t, BotReasonPattern, v.Reason)
	require.NotNil(t, v.Rule)
	assert.Equal(t, BotCategoryHTTPClient, v.Rule.Category)

	assert.Equal(t, BotReasonShortUserAgent, Classify(ua("curl/7.0")).Reason)
	assert.Equal(t, BotReasonMissingUserAgent, Classify(nil).Reason)
	assert.Nil(t, Classify(ua(chromeUA)).Rule)
}

func TestBotRulesReturnsCopy(t *testing.T) {
	rules := BotRules()
	require.NotEmpty(t, rules)
	rules[0].Category = "changed"
	assert.Equal(t, BotCategoryEmailScanner, BotRules()[0].Category)
}
