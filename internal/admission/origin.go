package admission

import (
	"net/url"
	"strings"
)

// IsOriginAllowed is the loose policy for public endpoints: an absent
// origin is admitted (same-origin navigation or a non-browser caller),
// a present origin must resolve to exactly the configured host. Exact
// hostname equality only — lookalikes such as "host.evil.com" or
// "evil-host" must not pass.
func IsOriginAllowed(origin, host string) bool {
	if origin == "" {
		return true
	}
	originHost := hostnameOf(origin)
	if originHost == "" {
		return false
	}
	return originHost == stripPort(host)
}

// IsSameSiteOrigin is the strict policy for internal endpoints: both the
// origin and the server host must be present and match exactly. Internal
// routes are only ever called from validated browser contexts, so a
// missing header is a denial rather than an allowance.
func IsSameSiteOrigin(origin, host string) bool {
	if origin == "" || host == "" {
		return false
	}
	originHost := hostnameOf(origin)
	if originHost == "" {
		return false
	}
	return originHost == stripPort(host)
}

// IsDomainAllowed checks a request origin against a tenant's configured
// allow-list. An empty list is an explicit opt-out of restriction and
// admits any well-formed origin. An absent origin is admitted: only
// browsers send the header, and the list exists to stop other sites
// embedding the key, not to block server-to-server SDK calls. Patterns
// are either an exact hostname or a wildcard "*.domain" matching the
// bare domain and any subdomain.
func IsDomainAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	originHost := hostnameOf(origin)
	if originHost == "" {
		return false
	}

	for _, pattern := range allowed {
		pattern = stripPort(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if base, ok := strings.CutPrefix(pattern, "*."); ok {
			if originHost == base || strings.HasSuffix(originHost, "."+base) {
				return true
			}
			continue
		}
		if originHost == pattern {
			return true
		}
	}
	return false
}

// hostnameOf extracts the hostname from an origin URL, or "" if the
// origin does not parse as an absolute URL.
func hostnameOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// stripPort drops a ":port" suffix from a configured host string.
func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 {
		return host[:i]
	}
	return host
}
