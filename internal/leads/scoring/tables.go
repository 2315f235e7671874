package scoring

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordTier awards Points when any keyword occurs in the lowercased input.
// Tiers are checked in order and the first hit wins.
type KeywordTier struct {
	Points   int      `yaml:"points"`
	Keywords []string `yaml:"keywords"`
}

// CampaignTables holds the campaign weight table.
type CampaignTables struct {
	Channels   []KeywordTier  `yaml:"channels"`
	Objectives []KeywordTier  `yaml:"objectives"`
	Audiences  []KeywordTier  `yaml:"audiences"`
	Priorities map[string]int `yaml:"priorities"`
	Stages     map[string]int `yaml:"stages"`
}

// Tables are the lookup data behind company and campaign scoring. They can
// be overridden from a YAML file; fields missing from the file keep their
// defaults.
type Tables struct {
	DisposableDomains []string          `yaml:"disposableDomains"`
	TLDRegions        map[string]string `yaml:"tldRegions"`
	ICPRegions        []string          `yaml:"icpRegions"`
	ICPTechnologies   []string          `yaml:"icpTechnologies"`
	Campaign          CampaignTables    `yaml:"campaign"`
}

// DefaultTables returns the built-in lookup data.
func DefaultTables() Tables {
	return Tables{
		DisposableDomains: []string{
			"mailinator.com", "guerrillamail.com", "10minutemail.com", "tempmail.com",
			"temp-mail.org", "trashmail.com", "yopmail.com", "sharklasers.com",
			"getnada.com", "dispostable.com", "throwawaymail.com", "maildrop.cc",
		},
		TLDRegions: map[string]string{
			"de": "EU", "fr": "EU", "nl": "EU", "be": "EU", "es": "EU", "it": "EU",
			"at": "EU", "ie": "EU", "se": "EU", "dk": "EU", "fi": "EU", "pl": "EU", "eu": "EU",
			"uk": "UK",
			"us": "NA", "ca": "NA",
			"au": "APAC", "nz": "APAC", "jp": "APAC", "sg": "APAC", "in": "APAC",
			"br": "LATAM", "mx": "LATAM", "ar": "LATAM",
		},
		ICPRegions: []string{"EU", "UK", "NA"},
		ICPTechnologies: []string{
			"salesforce", "hubspot", "shopify", "stripe", "segment", "aws", "snowflake", "zendesk",
		},
		Campaign: CampaignTables{
			Channels: []KeywordTier{
				{Points: 15, Keywords: []string{"search", "sem", "ppc", "google ads", "referral", "webinar", "event"}},
				{Points: 10, Keywords: []string{"linkedin", "email", "content", "seo", "partner"}},
				{Points: 5, Keywords: []string{"display", "social", "facebook", "instagram", "tiktok", "print", "radio"}},
			},
			Objectives: []KeywordTier{
				{Points: 15, Keywords: []string{"conversion", "sales", "lead", "demo", "signup", "sign-up"}},
				{Points: 8, Keywords: []string{"consideration", "engagement", "traffic", "nurture"}},
				{Points: 4, Keywords: []string{"awareness", "brand", "reach"}},
			},
			Audiences: []KeywordTier{
				{Points: 10, Keywords: []string{"existing customer", "retargeting", "decision maker", "enterprise", "icp"}},
				{Points: 6, Keywords: []string{"smb", "mid-market", "lookalike", "professional"}},
				{Points: 2, Keywords: []string{"general", "broad", "everyone"}},
			},
			Priorities: map[string]int{"high": 10, "medium": 6, "low": 2},
			Stages: map[string]int{
				"active": 10, "running": 10, "live": 10,
				"scheduled": 6, "planned": 6,
				"draft": 3, "paused": 2,
				"completed": 0, "archived": 0,
			},
		},
	}
}

// LoadTables reads overrides from path on top of DefaultTables. An empty path
// returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if strings.TrimSpace(path) == "" {
		return tables, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read scoring tables: %w", err)
	}
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return Tables{}, fmt.Errorf("parse scoring tables %s: %w", path, err)
	}
	return tables, nil
}

// classify returns the points of the first tier with a keyword contained in value.
func classify(value string, tiers []KeywordTier) int {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0
	}
	for _, tier := range tiers {
		if containsAny(v, tier.Keywords) {
			return tier.Points
		}
	}
	return 0
}

// containsAny checks if s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
