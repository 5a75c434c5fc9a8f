package types

// ------------------------------
// Request Types
// ------------------------------

// ActionInput holds the editable fields of an action.
type ActionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MacroInput holds parameters for creating or editing a macro.
// RequiredActions carries action ids, not full actions.
type MacroInput struct {
	Name              string   `json:"name"`
	Prompt            string   `json:"prompt"`
	AllowOtherActions bool     `json:"allow_other_actions"`
	RequiredActions   []string `json:"required_actions"`
}

// InputFromMacro builds the edit payload for an existing macro.
func InputFromMacro(m Macro) MacroInput {
	return MacroInput{
		Name:              m.Name,
		Prompt:            m.Prompt,
		AllowOtherActions: m.AllowOtherActions,
		RequiredActions:   m.RequiredActionIDs(),
	}
}
