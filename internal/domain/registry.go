package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// FundConfig is one entry of the tracked-fund registry. The registry is the
// authoritative source of fund names and the allow-list of codes.
type FundConfig struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Registry is the ordered list of tracked funds. Output always follows this order.
type Registry []FundConfig

// DefaultRegistry returns the built-in set of tracked ETFs.
func DefaultRegistry() Registry {
	return Registry{
		{Code: "588000", Name: "科创50ETF"},
		{Code: "515980", Name: "人工智能ETF"},
		{Code: "515100", Name: "红利ETF"},
		{Code: "515030", Name: "新能源车ETF"},
		{Code: "159338", Name: "信创ETF"},
	}
}

// Codes returns the registry codes in order.
func (r Registry) Codes() []string {
	return lo.Map(r, func(fc FundConfig, _ int) string { return fc.Code })
}

// ParseRegistry parses "code:name,code:name" into a Registry.
func ParseRegistry(raw string) (Registry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty fund registry")
	}

	var reg Registry
	seen := make(map[string]bool)
	for _, pair := range strings.Split(raw, ",") {
		code, name, ok := strings.Cut(strings.TrimSpace(pair), ":")
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if !ok || code == "" || name == "" {
			return nil, fmt.Errorf("invalid registry entry %q, expected code:name", pair)
		}
		if strings.Trim(code, "0123456789") != "" {
			return nil, fmt.Errorf("invalid fund code %q", code)
		}
		if seen[code] {
			return nil, fmt.Errorf("duplicate fund code %q", code)
		}
		seen[code] = true
		reg = append(reg, FundConfig{Code: code, Name: name})
	}
	return reg, nil
}
