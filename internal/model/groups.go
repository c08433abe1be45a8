package model

// UserGroups are static allow-lists supplied by configuration, never derived.
type UserGroups struct {
	// Partner logins are external collaborators with partner status.
	Partner []string `json:"partner,omitempty" yaml:"partner,omitempty"`
	// Internal logins are treated as maintainer-equivalent without lookups.
	Internal []string `json:"internal,omitempty" yaml:"internal,omitempty"`
}

// IsPartner reports whether login is in the partner list.
func (g UserGroups) IsPartner(login string) bool {
	return contains(g.Partner, login)
}

// IsInternal reports whether login is in the internal list.
func (g UserGroups) IsInternal(login string) bool {
	return contains(g.Internal, login)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
