// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The `json:"..."` tags control
// how each field is named when a struct is encoded for the API.
package model

import "time"

// Genres is the vocabulary offered to clients and used by the seed data.
// Storage does not enforce it: a recommendation may carry any genre string.
var Genres = []string{"horror", "action", "comedy", "drama", "sci-fi", "documentary"}

// GenreAll is the filter sentinel meaning "do not filter by genre".
const GenreAll = "all"

// Recommendation is a user-submitted movie entry.
//
// AuthorUserID and AuthorUsername are always copied from the caller's verified
// identity when the record is created. They are never decoded from a request
// body, which is why they carry no `validate` tags and why the create DTO in
// the handler package does not contain them at all.
//
// IsStaffPick is the STORED curation flag. List operations replace it in
// their output with a live "author is currently an admin" value; toggle and
// backfill operate on the stored value.
type Recommendation struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Genre          string    `json:"genre"`
	Link           string    `json:"link"`
	Blurb          string    `json:"blurb"`
	AuthorUserID   string    `json:"userId"`
	AuthorUsername string    `json:"username"`
	IsStaffPick    bool      `json:"isStaffPick"`
	CreatedAt      time.Time `json:"createdAt"`
}
