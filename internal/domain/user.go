package domain

// RawUser is a user record as returned by the VEX backend.
type RawUser struct {
	ID        WireInt  `json:"id"`
	Name      WireText `json:"name"`
	Email     WireText `json:"email"`
	CreatedAt WireInt  `json:"created_at"`
}
