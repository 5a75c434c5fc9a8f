package types

// ------------------------------
// Core Domain Entities
// ------------------------------

// User is the anonymous identity of one device.
type User struct {
	ID string `json:"id"`
}

// Action is a named built-in capability that macros can require.
type Action struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Macro is a user-defined workflow: a prompt plus the actions it needs.
type Macro struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Prompt            string   `json:"prompt"`
	AllowOtherActions bool     `json:"allow_other_actions"`
	RequiredActions   []Action `json:"required_actions"`
}

// RequiredActionIDs returns the ids of the macro's required actions in order.
func (m Macro) RequiredActionIDs() []string {
	ids := make([]string, 0, len(m.RequiredActions))
	for _, a := range m.RequiredActions {
		ids = append(ids, a.ID)
	}
	return ids
}

// Upload describes a file stored by the /upload endpoint.
type Upload struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Audio is a processed audio response.
type Audio struct {
	ContentType string
	Data        []byte
}
