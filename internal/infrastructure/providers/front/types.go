package front

import "encoding/json"

// ---------------------------------------------------------------------------
// Front API Types
// ---------------------------------------------------------------------------

// FrontListResponse is the envelope for Front list endpoints. Results stay
// raw so each element round-trips verbatim into storage.
type FrontListResponse struct {
	Results    []json.RawMessage `json:"_results"`
	Pagination *FrontPagination  `json:"_pagination,omitempty"`
}

// FrontPagination carries the cursor link to the next page
type FrontPagination struct {
	Next string `json:"next,omitempty"`
}

// FrontConversation is a conversation from the Front API
type FrontConversation struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	// Status is one of "open", "archived", "deleted"
	Status   string         `json:"status"`
	Assignee *FrontTeammate `json:"assignee,omitempty"`
	Tags     []FrontTag     `json:"tags,omitempty"`
	// CreatedAt is Unix seconds with fractional part
	CreatedAt float64 `json:"created_at"`
	IsPrivate bool    `json:"is_private"`
	// CustomFields holds provider-side custom field values keyed by the
	// Front field id
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// FrontTag is a tag from the Front API
type FrontTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FrontTeammate is a teammate (agent) from the Front API
type FrontTeammate struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
