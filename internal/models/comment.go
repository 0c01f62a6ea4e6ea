package models

import "time"

// Comment is the flat persistence shape. A comment with a nil
// ParentCommentID is a top-level comment and may own replies; a comment
// with a parent never nests further (the service rejects replies to
// replies, so the tree is at most two levels deep).
type Comment struct {
	ID              string
	BlogID          string
	AuthorName      string
	AuthorEmail     string
	Body            string
	UserID          *string
	ParentCommentID *string
	Likes           []string
	CreatedAt       time.Time
}

// LikedBy reports whether the given user id is in the likes set.
func (c Comment) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
