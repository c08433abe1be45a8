package config

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Contributor role names, shared with internal/role. "base" is the fallback
// and is mandatory in every role-based weight map.
const (
	RoleNameBase       = "base"
	RoleNameMaintainer = "maintainer"
	RoleNamePartner    = "partner"
	RoleNameFrequent   = "frequent"
	RoleNameFirstTime  = "firstTime"
)

var validRoleNames = map[string]bool{
	RoleNameBase:       true,
	RoleNameMaintainer: true,
	RoleNamePartner:    true,
	RoleNameFrequent:   true,
	RoleNameFirstTime:  true,
}

// FactorWeight is the weight for one scoring factor: either a flat number or
// a per-role map. The variant is decided once, when the config is parsed;
// scoring code never inspects yaml shapes at call time.
type FactorWeight struct {
	Flat  float64
	Roles map[string]float64 // nil when flat
}

// FlatWeight returns a flat factor weight.
func FlatWeight(w float64) FactorWeight {
	return FactorWeight{Flat: w}
}

// RoleWeight returns a role-based factor weight.
func RoleWeight(roles map[string]float64) FactorWeight {
	return FactorWeight{Roles: roles}
}

// IsRoleBased reports whether the factor carries per-role weights.
func (f FactorWeight) IsRoleBased() bool {
	return len(f.Roles) > 0
}

// ForRole resolves the weight for a role name. Flat weights ignore the role;
// role-based weights fall back to the mandatory base entry for unknown roles.
func (f FactorWeight) ForRole(role string) float64 {
	if !f.IsRoleBased() {
		return f.Flat
	}
	if w, ok := f.Roles[role]; ok {
		return w
	}
	return f.Roles[RoleNameBase]
}

// UnmarshalYAML accepts either a scalar (flat weight) or a mapping keyed by
// role name (role-based weight).
func (f *FactorWeight) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var w float64
		if err := value.Decode(&w); err != nil {
			return fmt.Errorf("factor weight must be a number: %w", err)
		}
		*f = FactorWeight{Flat: w}
		return nil
	case yaml.MappingNode:
		var roles map[string]float64
		if err := value.Decode(&roles); err != nil {
			return fmt.Errorf("role-based weight must map role names to numbers: %w", err)
		}
		*f = FactorWeight{Roles: roles}
		return nil
	default:
		return fmt.Errorf("factor weight must be a number or a role map")
	}
}

// MarshalYAML emits the same shape the factor was parsed from.
func (f FactorWeight) MarshalYAML() (any, error) {
	if f.IsRoleBased() {
		return f.Roles, nil
	}
	return f.Flat, nil
}

// MarshalJSON mirrors MarshalYAML so `config -o json` shows the same shape.
func (f FactorWeight) MarshalJSON() ([]byte, error) {
	if f.IsRoleBased() {
		return json.Marshal(f.Roles)
	}
	return json.Marshal(f.Flat)
}

// validate checks role names and the mandatory base entry.
func (f FactorWeight) validate(factor string) error {
	if !f.IsRoleBased() {
		return nil
	}
	names := make([]string, 0, len(f.Roles))
	for name := range f.Roles {
		if !validRoleNames[name] {
			return fmt.Errorf("%s: unknown role %q", factor, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, ok := f.Roles[RoleNameBase]; !ok {
		return fmt.Errorf("%s: role-based weights require a %q entry (got %v)", factor, RoleNameBase, names)
	}
	return nil
}

// Weights holds the six engagement scoring factors. Comments and reactions
// are counted per event, contributors per unique login; the remaining three
// are scalar multipliers.
type Weights struct {
	Comments           FactorWeight `yaml:"comments" json:"comments"`
	Reactions          FactorWeight `yaml:"reactions" json:"reactions"`
	Contributors       FactorWeight `yaml:"contributors" json:"contributors"`
	LastActivity       float64      `yaml:"last_activity" json:"lastActivity"`
	IssueAge           float64      `yaml:"issue_age" json:"issueAge"`
	LinkedPullRequests float64      `yaml:"linked_pull_requests" json:"linkedPullRequests"`
}

// DefaultWeights returns the default engagement weights.
func DefaultWeights() Weights {
	return Weights{
		Comments:           FlatWeight(3),
		Reactions:          FlatWeight(1),
		Contributors:       FlatWeight(2),
		LastActivity:       1,
		IssueAge:           1,
		LinkedPullRequests: 2,
	}
}

// HasRoleWeights reports whether any factor is role-based. When false the
// role detector is never consulted.
func (w Weights) HasRoleWeights() bool {
	return w.Comments.IsRoleBased() || w.Reactions.IsRoleBased() || w.Contributors.IsRoleBased()
}

// Validate checks every role-based factor.
func (w Weights) Validate() error {
	if err := w.Comments.validate("comments"); err != nil {
		return err
	}
	if err := w.Reactions.validate("reactions"); err != nil {
		return err
	}
	return w.Contributors.validate("contributors")
}
