package domain

import (
	"strings"
)

// Stage route descriptors are stored as a single string with stages
// joined by " - ", e.g. "Cutting - Bending - Welding".
const routeDelimiter = " - "

// Route is an ordered list of stage names a work item passes through.
type Route []string

// ParseRoute splits a routing descriptor into its ordered stage names.
// Tokens are trimmed and empties dropped. Malformed or empty input
// yields an empty route; callers treat an empty route as "no route,
// skip item" rather than an error.
func ParseRoute(descriptor string) Route {
	if strings.TrimSpace(descriptor) == "" {
		return Route{}
	}

	parts := strings.Split(descriptor, routeDelimiter)
	route := make(Route, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		route = append(route, p)
	}
	return route
}

// String reassembles the route into its stored descriptor form.
func (r Route) String() string {
	return strings.Join(r, routeDelimiter)
}

// IsEmpty reports whether the route has no stages.
func (r Route) IsEmpty() bool {
	return len(r) == 0
}

// StageRoleMap maps a stage name to the role supervising it.
type StageRoleMap map[string]string

// ResolveSupervisorRole returns the role responsible for a stage, or
// empty string when the stage is unmapped. An empty result means "no
// notification target", never an error.
func (m StageRoleMap) ResolveSupervisorRole(stageName string) string {
	if m == nil {
		return ""
	}
	return m[strings.TrimSpace(stageName)]
}

// ParsePartIDList parses a comma separated list of part record ids.
// Empty and duplicate tokens are dropped, keeping first-seen order.
func ParsePartIDList(value string) []string {
	if value == "" {
		return nil
	}
	seen := make(map[string]bool)
	var result []string
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		result = append(result, token)
	}
	return result
}

// FormatPartIDList serializes part record ids for storage.
func FormatPartIDList(ids []string) string {
	return strings.Join(ids, ",")
}
