package hubspot

import "encoding/json"

// ---------------------------------------------------------------------------
// HubSpot API Types
// ---------------------------------------------------------------------------

// HubSpotListResponse is the envelope for HubSpot v3 list endpoints. Results
// stay raw so each element round-trips verbatim into storage.
type HubSpotListResponse struct {
	Results []json.RawMessage `json:"results"`
	Paging  *HubSpotPaging    `json:"paging,omitempty"`
}

// HubSpotPaging carries the cursor for the next page
type HubSpotPaging struct {
	Next *HubSpotPagingNext `json:"next,omitempty"`
}

// HubSpotPagingNext holds the after cursor
type HubSpotPagingNext struct {
	After string `json:"after"`
}

// HubSpotContact is a contact from the HubSpot CRM v3 API. All property
// values arrive as strings; absent properties are absent keys.
type HubSpotContact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// HubSpotOwner is a record owner from the HubSpot owners API
type HubSpotOwner struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
