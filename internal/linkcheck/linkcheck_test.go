package linkcheck

import (
	"testing"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/go-playground/assert/v2"
)

func TestPolicyCheck(t *testing.T) {
	policy := NewPolicy([]string{"asahigaoka-nerima.tokyo"})

	tests := []struct {
		name    string
		message string
		wantErr string
	}{
		{"no links", "明日は清掃活動です", ""},
		{"allowed domain", "詳細 https://asahigaoka-nerima.tokyo/news/a.html", ""},
		{"allowed subdomain", "http://www.asahigaoka-nerima.tokyo/", ""},
		{"port and case", "HTTPS://Asahigaoka-Nerima.Tokyo:443/x", ""},
		{"several allowed", "https://asahigaoka-nerima.tokyo/a と https://asahigaoka-nerima.tokyo/b", ""},
		{"foreign domain", "https://example.com/x", "URL contains unauthorized domain: example.com"},
		{"one bad among good", "https://asahigaoka-nerima.tokyo/a https://evil.example/b https://asahigaoka-nerima.tokyo/c", "URL contains unauthorized domain: evil.example"},
		{"suffix without dot", "https://fakeasahigaoka-nerima.tokyo/", "URL contains unauthorized domain: fakeasahigaoka-nerima.tokyo"},
		{"userinfo trick", "https://asahigaoka-nerima.tokyo@evil.example/", "URL contains unauthorized domain: evil.example"},
		{"no host", "https:///path", "URL contains unauthorized domain: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.message)
			if tt.wantErr == "" {
				assert.Equal(t, nil, err)
				return
			}
			e, ok := apperr.As(err)
			assert.Equal(t, true, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.wantErr, e.Message)
		})
	}
}

func TestPolicyMultipleDomains(t *testing.T) {
	policy := NewPolicy([]string{" .Example.org ", "asahigaoka-nerima.tokyo", ""})

	assert.Equal(t, nil, policy.Check("https://docs.example.org/x https://asahigaoka-nerima.tokyo"))
	assert.NotEqual(t, nil, policy.Check("https://example.com"))
}
