package scoring

import (
	"context"
	"testing"

	"salesdesk_backend/platform/logger"
)

type stubProber struct {
	result Reachability
	calls  int
}

func (s *stubProber) Probe(ctx context.Context, host string) Reachability {
	s.calls++
	return s.result
}

func TestScoreCompanyReachableCustomer(t *testing.T) {
	prober := &stubProber{result: Reachability{Resolves: true, HTTPS: true}}
	engine := NewEngine(DefaultTables(), prober, logger.Nop())

	if got := engine.ScoreCompany(context.Background(), "https://www.acme.com/about", true); got != 45 {
		t.Fatalf("expected 45, got %d", got)
	}
}

func TestScoreCompanyHTTPOnlyAndRegion(t *testing.T) {
	prober := &stubProber{result: Reachability{Resolves: true, HTTP: true}}
	engine := NewEngine(DefaultTables(), prober, logger.Nop())

	res := engine.ScoreCompanyInputs(context.Background(), CompanyInputs{
		Domain:       "bakker.nl",
		Technologies: []string{"Shopify"},
	})
	// domain 10 + dns 5 + http 2 + region 15 + technology 10
	if res.Score != 42 {
		t.Fatalf("expected 42, got %d (%v)", res.Score, res.Factors)
	}
	if res.Region != "EU" {
		t.Fatalf("expected EU region, got %q", res.Region)
	}
}

func TestScoreCompanyInvalidDomainSkipsProbe(t *testing.T) {
	prober := &stubProber{result: Reachability{Resolves: true, HTTPS: true}}
	engine := NewEngine(DefaultTables(), prober, logger.Nop())

	for _, d := range []string{"", "localhost", "not a domain", "mailinator.com", "foo.invalidtld"} {
		if got := engine.ScoreCompany(context.Background(), d, false); got != 0 {
			t.Fatalf("domain %q: expected clamped 0, got %d", d, got)
		}
	}
	if prober.calls != 0 {
		t.Fatalf("invalid domains must not be probed, got %d calls", prober.calls)
	}

	if got := engine.ScoreCompany(context.Background(), "mailinator.com", true); got != 5 {
		t.Fatalf("customer with disposable domain: expected 25-20=5, got %d", got)
	}
}

func TestScoreCompanyUnreachable(t *testing.T) {
	engine := NewEngine(DefaultTables(), &stubProber{}, logger.Nop())
	if got := engine.ScoreCompany(context.Background(), "acme.com", false); got != 10 {
		t.Fatalf("expected only the domain signal, got %d", got)
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.Acme.com/path?q=1": "acme.com",
		"jane@acme.co.uk":               "acme.co.uk",
		"acme.com:8443":                 "acme.com",
		"bücher.de":                     "xn--bcher-kva.de",
		"":                              "",
	}
	for in, want := range cases {
		if got := NormalizeDomain(in); got != want {
			t.Fatalf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidDomain(t *testing.T) {
	valid := []string{"acme.com", "acme.co.uk", "xn--bcher-kva.de"}
	for _, d := range valid {
		if !IsValidDomain(d) {
			t.Fatalf("expected %q to be valid", d)
		}
	}
	invalid := []string{"", "com", "co.uk", "localhost", "acme.invalidtld"}
	for _, d := range invalid {
		if IsValidDomain(d) {
			t.Fatalf("expected %q to be invalid", d)
		}
	}
}
