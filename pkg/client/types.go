package client

import "time"

// Reply is a second-level comment. It carries its parent's id and never
// owns replies of its own; the two-level shape is enforced by the type.
type Reply struct {
	ID              string    `json:"id"`
	BlogID          string    `json:"blogId"`
	AuthorName      string    `json:"authorName"`
	AuthorEmail     string    `json:"authorEmail"`
	Body            string    `json:"body"`
	UserID          *string   `json:"userId,omitempty"`
	ParentCommentID *string   `json:"parentCommentId,omitempty"`
	Likes           []string  `json:"likes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TopLevelComment is a first-level comment. It has no parent and owns an
// ordered reply sequence.
type TopLevelComment struct {
	ID          string    `json:"id"`
	BlogID      string    `json:"blogId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Body        string    `json:"body"`
	UserID      *string   `json:"userId,omitempty"`
	Likes       []string  `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	Replies     []Reply   `json:"replies"`
}
