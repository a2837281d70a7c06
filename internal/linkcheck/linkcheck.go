// Package linkcheck enforces the outbound-link policy for broadcast and
// microblog messages.
package linkcheck

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/apperr"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s]+`)

// Policy lists the domains links may point to. Subdomains of an allowed
// domain are allowed too.
type Policy struct {
	allowed []string
}

func NewPolicy(domains []string) Policy {
	p := Policy{}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			p.allowed = append(p.allowed, strings.TrimPrefix(d, "."))
		}
	}
	return p
}

// Check returns a validation error naming the first link whose host is
// outside the allow list.
func (p Policy) Check(message string) error {
	for _, link := range urlPattern.FindAllString(message, -1) {
		host := hostOf(link)
		if !p.allows(host) {
			return apperr.Validation("URL contains unauthorized domain: %s", host)
		}
	}
	return nil
}

func (p Policy) allows(host string) bool {
	if host == "" {
		return false
	}
	for _, d := range p.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
