package types

// User is a directory record. Only ID participates in routing; the remaining
// fields are opaque to the client and carried as-is.
type User struct {
	ID    string            `json:"id"`
	Name  string            `json:"name,omitempty"`
	Email string            `json:"email,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}
