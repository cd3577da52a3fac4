package supervisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deskmesh/deskmesh/core"
)

// domainRule is one entry of the deterministic keyword classifier. A rule
// matches when any of its keywords appears as a substring of the lowercased
// query. Flagship is a single hand-tuned override keyword: when present in
// the query its domain is force-included and made the priority even if the
// regular keywords missed.
type domainRule struct {
	name     string
	keywords []string
	flagship string
}

// domainRules are evaluated in fixed order; candidate order in the
// fallback decision follows this order.
var domainRules = []domainRule{
	{
		name:     "windows",
		keywords: []string{"windows", "system", "boot", "update", "registry", "startup", "blue screen", "bsod"},
	},
	{
		name: "office",
		keywords: []string{
			"office", "word", "excel", "powerpoint", "outlook", "teams", "sharepoint",
			"crashes", "opening", "large files", "macro", "vba", "formatting", "activation",
		},
		flagship: "excel",
	},
	{
		name:     "hardware",
		keywords: []string{"hardware", "printer", "monitor", "memory", "disk", "cpu", "gpu", "keyboard", "mouse", "performance", "slow"},
	},
}

// fallbackClassify is the deterministic classifier used when the model
// produced no parseable decision.
func fallbackClassify(query string) core.RoutingDecision {
	q := strings.ToLower(query)

	var agents []string
	var fired []string
	priority := ""

	for _, rule := range domainRules {
		matched := false
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				fired = append(fired, kw)
				matched = true
			}
		}
		if matched {
			agents = append(agents, rule.name)
		}
	}

	for _, rule := range domainRules {
		if rule.flagship == "" || !strings.Contains(q, rule.flagship) {
			continue
		}
		included := false
		for _, a := range agents {
			if a == rule.name {
				included = true
				break
			}
		}
		if !included {
			agents = append(agents, rule.name)
		}
		priority = rule.name
	}

	if priority == "" {
		if len(agents) > 0 {
			priority = agents[0]
		} else {
			priority = DefaultDomain
		}
	}
	if len(agents) == 0 {
		agents = []string{DefaultDomain}
	}

	return core.RoutingDecision{
		Agents:    agents,
		Reasoning: fmt.Sprintf("Fallback keyword-based analysis. Keywords found: %v", fired),
		Priority:  priority,
	}
}

// parseDecision locates the first balanced JSON object in the model output
// and unmarshals it into a RoutingDecision.
func parseDecision(text string) (core.RoutingDecision, bool) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return core.RoutingDecision{}, false
	}
	var d core.RoutingDecision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return core.RoutingDecision{}, false
	}
	return d, true
}

// extractJSONObject returns the first balanced {...} substring, honoring
// string literals and escapes.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
