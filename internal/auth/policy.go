package auth

// Requirement is the allowed-role set for a route. Empty means any
// authenticated user.
type Requirement []Role

// Allowed is the single gate predicate every route guard goes through.
func Allowed(role Role, req Requirement) bool {
	if len(req) == 0 {
		return true
	}
	for _, r := range req {
		if r == role {
			return true
		}
	}
	return false
}
