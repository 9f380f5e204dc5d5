package store

import "encoding/json"

// SkillList is a normalized list of skill names.
//
// Skills columns hold a JSON array, but rows written by older importers carry
// the array doubly encoded as a JSON string ("[\"HVAC\"]"). ParseSkillList
// resolves both forms once at the store boundary so the scoring layer always
// sees a plain slice. A nil SkillList means the column itself was absent.
type SkillList []string

// ParseSkillList decodes a raw skills column. Unparseable content falls back
// to an empty (non-nil) list rather than an error.
func ParseSkillList(raw []byte) SkillList {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var skills []string
	if err := json.Unmarshal(raw, &skills); err == nil {
		return skills
	}

	// Doubly encoded: a JSON string whose content is itself a JSON array.
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &skills); err == nil {
			return skills
		}
	}

	return SkillList{}
}
