package user_agent

import (
	"embed"
	"fmt"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// Labels produced when no rule matches
const (
	Unknown       = "Unknown"
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

type UserAgent struct {
	UserAgent string
	OS        string
	Browser   string
	Device    string
	Mobile    bool
	Tablet    bool
	Desktop   bool
}

//go:embed database/rules.yml
var databaseFiles embed.FS

// RuleEntry maps a pattern to a label. Exclude, when set, vetoes the match.
type RuleEntry struct {
	Regex   string `yaml:"regex"`
	Exclude string `yaml:"exclude"`
	Name    string `yaml:"name"`
}

// DeviceRules holds the two-step device patterns
type DeviceRules struct {
	Handheld string `yaml:"handheld"`
	Tablet   string `yaml:"tablet"`
}

type ruleDatabase struct {
	Browsers []RuleEntry `yaml:"browsers"`
	OSS      []RuleEntry `yaml:"oss"`
	Devices  DeviceRules `yaml:"devices"`
}

type compiledRule struct {
	name    string
	match   *pcre.Regexp
	exclude *pcre.Regexp
}

func (r compiledRule) matches(userAgent string) bool {
	if !r.match.MatchString(userAgent) {
		return false
	}
	return r.exclude == nil || !r.exclude.MatchString(userAgent)
}

// Global parser instance
var (
	parser *RuleParser
	once   sync.Once
)

type RuleParser struct {
	browsers []compiledRule
	oss      []compiledRule
	handheld *pcre.Regexp
	tablet   *pcre.Regexp
}

func getParser() *RuleParser {
	once.Do(func() {
		p, err := loadRuleParser()
		if err != nil {
			fmt.Printf("Error loading user agent rules: %v\n", err)
			p = &RuleParser{}
		}
		parser = p
	})
	return parser
}

func loadRuleParser() (*RuleParser, error) {
	data, err := databaseFiles.ReadFile("database/rules.yml")
	if err != nil {
		return nil, err
	}

	var db ruleDatabase
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("error parsing rules.yml: %w", err)
	}

	p := &RuleParser{}
	if p.browsers, err = compileRules(db.Browsers); err != nil {
		return nil, err
	}
	if p.oss, err = compileRules(db.OSS); err != nil {
		return nil, err
	}
	if p.handheld, err = compilePattern(db.Devices.Handheld); err != nil {
		return nil, err
	}
	if p.tablet, err = compilePattern(db.Devices.Tablet); err != nil {
		return nil, err
	}
	return p, nil
}

func compileRules(entries []RuleEntry) ([]compiledRule, error) {
	rules := make([]compiledRule, 0, len(entries))
	for _, entry := range entries {
		match, err := compilePattern(entry.Regex)
		if err != nil {
			return nil, err
		}
		rule := compiledRule{name: entry.Name, match: match}
		if entry.Exclude != "" {
			if rule.exclude, err = compilePattern(entry.Exclude); err != nil {
				return nil, err
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// compilePattern compiles a case-insensitive pattern; empty patterns yield nil.
func compilePattern(pattern string) (*pcre.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	regex, err := pcre.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return regex, nil
}

func firstMatch(rules []compiledRule, userAgent string) string {
	for _, rule := range rules {
		if rule.matches(userAgent) {
			return rule.name
		}
	}
	return Unknown
}

func (p *RuleParser) parseDevice(userAgent string) string {
	if p.handheld == nil || !p.handheld.MatchString(userAgent) {
		return DeviceDesktop
	}
	if p.tablet != nil && p.tablet.MatchString(userAgent) {
		return DeviceTablet
	}
	return DeviceMobile
}

// ParseUserAgent classifies a raw User-Agent header into browser, OS and device class.
// It never fails: unmatched input yields Unknown/Unknown/Desktop.
func ParseUserAgent(userAgent string) UserAgent {
	p := getParser()

	device := p.parseDevice(userAgent)

	return UserAgent{
		UserAgent: userAgent,
		Browser:   firstMatch(p.browsers, userAgent),
		OS:        firstMatch(p.oss, userAgent),
		Device:    device,
		Mobile:    device == DeviceMobile,
		Tablet:    device == DeviceTablet,
		Desktop:   device == DeviceDesktop,
	}
}
