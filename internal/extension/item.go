package extension

// ActionType names what selecting an item does.
type ActionType string

const (
	ActionCopy ActionType = "copy"
	ActionHide ActionType = "hide"
)

// Action is attached to every item and executed when the user selects it.
type Action struct {
	Type ActionType `json:"type"`
	Text string     `json:"text,omitempty"`
}

// CopyToClipboard copies text and dismisses the launcher.
func CopyToClipboard(text string) Action {
	return Action{Type: ActionCopy, Text: text}
}

// HideWindow only dismisses the launcher.
func HideWindow() Action {
	return Action{Type: ActionHide}
}

// Item is one row shown by the launcher.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      Action `json:"action"`
}

func errorItem(title, description string) []Item {
	return []Item{{Title: title, Description: description, Action: HideWindow()}}
}
