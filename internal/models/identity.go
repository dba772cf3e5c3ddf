package models

// Identity is the current user as supplied by the local identity store.
type Identity struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Valid reports whether the identity can be used for author disambiguation.
func (i *Identity) Valid() bool {
	return i != nil && i.ID != ""
}
