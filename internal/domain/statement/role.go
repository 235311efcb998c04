package statement

import "strings"

// RoleRule maps a label substring to a Role. Rules are evaluated in order and
// the first match wins, so more specific substrings must come first.
type RoleRule struct {
	Substring string
	Role      Role
}

// DefaultRoleRules covers the participation labels Brazilian payers print.
// Anything unmatched classifies as RoleUnknown rather than being forced into
// an assistant role.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{Substring: "anest", Role: RoleAnesthetist},
		{Substring: "instrument", Role: RoleInstrumentator},
		{Substring: "1º aux", Role: RoleFirstAssistant},
		{Substring: "1o aux", Role: RoleFirstAssistant},
		{Substring: "primeiro aux", Role: RoleFirstAssistant},
		{Substring: "2º aux", Role: RoleSecondAssistant},
		{Substring: "2o aux", Role: RoleSecondAssistant},
		{Substring: "segundo aux", Role: RoleSecondAssistant},
		{Substring: "3º aux", Role: RoleThirdAssistant},
		{Substring: "3o aux", Role: RoleThirdAssistant},
		{Substring: "terceiro aux", Role: RoleThirdAssistant},
		// Bare "aux" before "cirurg": "Auxiliar de Cirurgia" is an
		// assistant, not the surgeon.
		{Substring: "aux", Role: RoleFirstAssistant},
		{Substring: "cirurg", Role: RoleSurgeon},
	}
}

// ClassifyRole resolves a raw participation label against the rule table.
func ClassifyRole(label string, rules []RoleRule) Role {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return RoleUnknown
	}
	for _, rule := range rules {
		if strings.Contains(normalized, rule.Substring) {
			return rule.Role
		}
	}
	return RoleUnknown
}
