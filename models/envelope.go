// Package models holds the typed records exchanged with the portfolio API.
//
// Read models mirror the JSON the API returns; the *Input types carry the
// fields accepted by create and update calls, with pointers marking optional
// fields so that an omitted field is never confused with its zero value.
package models

// Response is the envelope every API endpoint wraps its payload in.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Page is the payload of paginated list endpoints.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the position of a Page within the full result set.
type Pagination struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
	NextNum *int `json:"next_num"`
	PrevNum *int `json:"prev_num"`
}

// Option describes one selectable value of an enumerated field, as returned
// by the categories and statuses endpoints.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
}

// Record carries the fields every stored entity has.
type Record struct {
	ID        int    `json:"id"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
