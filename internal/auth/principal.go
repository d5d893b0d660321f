package auth

import "github.com/brightprep/brightprep-be/internal/models"

// Principal is the authenticated caller, built once at the verification
// boundary. Claims holds the raw session claims for audit purposes; role
// decisions read Principal.Role, never the claims map.
type Principal struct {
	ID     string
	Role   models.Role
	Claims map[string]any
}
