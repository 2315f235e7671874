package scoring

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var lookupProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.ValidateLabels(true),
	idna.StrictDomainName(true),
)

// NormalizeDomain reduces a URL, email address or host to its ASCII host name.
// It returns "" when nothing usable is left.
func NormalizeDomain(raw string) string {
	host := strings.TrimSpace(raw)
	if host == "" {
		return ""
	}
	if at := strings.LastIndex(host, "@"); at >= 0 && !strings.Contains(host, "://") {
		host = host[at+1:]
	}
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	}
	if i := strings.IndexAny(host, "/?#:"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	host = strings.TrimPrefix(host, "www.")

	ascii, err := lookupProfile.ToASCII(host)
	if err != nil {
		return ""
	}
	return ascii
}

// IsValidDomain reports whether host is a registrable name under an ICANN
// public suffix.
func IsValidDomain(host string) bool {
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann || suffix == host {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}

// registrable returns the eTLD+1 of host, or host itself when it has none.
func registrable(host string) string {
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

// IsDisposable reports whether host (or its registrable parent) is a known
// throwaway mail domain.
func (t Tables) IsDisposable(host string) bool {
	return containsFold(t.DisposableDomains, host) || containsFold(t.DisposableDomains, registrable(host))
}

// RegionFor maps the last label of host to a sales region.
func (t Tables) RegionFor(host string) string {
	i := strings.LastIndex(host, ".")
	if i < 0 {
		return ""
	}
	return t.TLDRegions[host[i+1:]]
}
