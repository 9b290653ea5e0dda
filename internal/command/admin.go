// Package command classifies inbound chat events and dispatches them to
// the intake pipeline, the results recorder, or the admin commands.
package command

import "strings"

// Guard gates privileged commands to the single configured admin identity.
// Admin-ness is a pure function of configuration, never mutable state.
type Guard struct {
	adminUserID string
}

// NewGuard creates a Guard for the configured admin user ID.
func NewGuard(adminUserID string) *Guard {
	return &Guard{adminUserID: strings.TrimSpace(adminUserID)}
}

// Authorize reports whether the actor may run the given privileged
// command. Only the configured admin passes; an empty configuration
// authorizes nobody.
func (g *Guard) Authorize(actorID, command string) bool {
	actorID = strings.TrimSpace(actorID)
	if g.adminUserID == "" || actorID == "" {
		return false
	}
	return actorID == g.adminUserID
}
