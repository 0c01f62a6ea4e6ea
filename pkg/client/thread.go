package client

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ThreadState is the engine's lifecycle for one blog view.
type ThreadState int

const (
	StateIdle ThreadState = iota
	StateLoading
	StateLoaded
	StateMutating
	StateErrored
)

func (s ThreadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateMutating:
		return "mutating"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Thread holds the in-memory comment tree for one blog and applies the
// four mutations: load, submit, like-toggle, delete. Consistency model:
// the server stays canonical — a submit triggers a full re-fetch instead
// of trusting the local splice, and a later LoadThread self-heals whatever
// interleaved responses left behind. Failed mutations keep the prior tree.
type Thread struct {
	gateway *Gateway
	log     zerolog.Logger

	mu       sync.Mutex
	blogID   string
	state    ThreadState
	comments []TopLevelComment
	err      error
}

func NewThread(gateway *Gateway, log zerolog.Logger) *Thread {
	return &Thread{
		gateway: gateway,
		log:     log,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (t *Thread) State() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Comments returns a snapshot of the tree. Mutating the result does not
// affect the engine.
func (t *Thread) Comments() []TopLevelComment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshot(t.comments)
}

func snapshot(comments []TopLevelComment) []TopLevelComment {
	out := make([]TopLevelComment, len(comments))
	copy(out, comments)
	for i := range out {
		replies := make([]Reply, len(out[i].Replies))
		copy(replies, out[i].Replies)
		out[i].Replies = replies
	}
	return out
}

// Err returns the last recorded error. Read-once: AckError clears it.
func (t *Thread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// AckError acknowledges and clears the recorded error, returning the
// engine to plain Loaded (or Idle if nothing ever loaded).
func (t *Thread) AckError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = nil
	if t.state == StateErrored {
		if t.blogID == "" {
			t.state = StateIdle
		} else {
			t.state = StateLoaded
		}
	}
}

// TotalCount counts every comment in the tree, replies included.
func (t *Thread) TotalCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := len(t.comments)
	for _, comment := range t.comments {
		count += len(comment.Replies)
	}
	return count
}

// HasLiked reports whether the current identity has liked the comment.
func (t *Thread) HasLiked(commentID string) bool {
	identity := t.gateway.Store().Identity()
	if identity == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	likes, ok := t.findLikes(commentID)
	if !ok {
		return false
	}
	for _, id := range likes {
		if id == identity.ID {
			return true
		}
	}
	return false
}

// CanDelete is the advisory eligibility check used to show or hide the
// delete control. The server is the actual authority.
func (t *Thread) CanDelete(commentID string) bool {
	identity := t.gateway.Store().Identity()
	if identity == nil {
		return false
	}
	if identity.IsAdmin() {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	author, ok := t.findAuthor(commentID)
	return ok && author != nil && *author == identity.ID
}

// LoadThread fetches the full tree for a blog, replacing any previously
// viewed blog's tree. An empty blog yields an empty Loaded tree, not an
// error.
func (t *Thread) LoadThread(ctx context.Context, blogID string) error {
	t.mu.Lock()
	t.blogID = blogID
	t.state = StateLoading
	t.mu.Unlock()

	comments, err := t.gateway.Comments(ctx, blogID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = StateErrored
		t.err = err
		return err
	}
	t.comments = comments
	t.state = StateLoaded
	t.err = nil
	return nil
}

// SubmitInput is a new comment or reply. ParentCommentID nil means
// top-level.
type SubmitInput struct {
	BlogID          string
	AuthorName      string
	AuthorEmail     string
	Body            string
	ParentCommentID *string
}

func (in SubmitInput) validate() error {
	if strings.TrimSpace(in.Body) == "" {
		return &ValidationError{Field: "body", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.AuthorName) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.AuthorEmail) == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	return nil
}

// Submit posts the comment and reconciles by re-fetching the canonical
// tree. A fresh top-level comment is optimistically unshifted so the UI
// has no gap before the re-fetch lands; the re-fetch overwrites it.
// Validation failures never reach the network.
func (t *Thread) Submit(ctx context.Context, input SubmitInput) error {
	if err := input.validate(); err != nil {
		return err
	}

	if err := t.beginMutation(); err != nil {
		return err
	}

	created, err := t.gateway.AddComment(ctx, AddCommentRequest{
		BlogID:          input.BlogID,
		Name:            strings.TrimSpace(input.AuthorName),
		Email:           strings.TrimSpace(input.AuthorEmail),
		Comment:         strings.TrimSpace(input.Body),
		ParentCommentID: input.ParentCommentID,
	})
	if err != nil {
		t.failMutation(err)
		return err
	}

	t.mu.Lock()
	if created.ParentCommentID == nil {
		t.comments = append([]TopLevelComment{{
			ID:          created.ID,
			BlogID:      created.BlogID,
			AuthorName:  created.AuthorName,
			AuthorEmail: created.AuthorEmail,
			Body:        created.Body,
			UserID:      created.UserID,
			Likes:       created.Likes,
			CreatedAt:   created.CreatedAt,
			Replies:     []Reply{},
		}}, t.comments...)
	}
	blogID := t.blogID
	t.mu.Unlock()

	// Reconcile: the server's placement and identity resolution win over
	// the optimistic insert.
	comments, err := t.gateway.Comments(ctx, blogID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		// The comment was created; only the refresh failed. Keep the
		// optimistic tree and surface the error.
		t.state = StateLoaded
		t.err = err
		return err
	}
	t.comments = comments
	t.state = StateLoaded
	return nil
}

// ToggleLike flips the current identity's like on a comment. The server's
// returned likes set replaces the local one wherever the id matches —
// top-level first, then one level of replies; ids are globally unique so
// the first match wins.
func (t *Thread) ToggleLike(ctx context.Context, commentID string) error {
	if !t.gateway.Store().IsAuthenticated() {
		return ErrUnauthenticated
	}

	if err := t.beginMutation(); err != nil {
		return err
	}

	likes, err := t.gateway.LikeComment(ctx, commentID)
	if err != nil {
		t.failMutation(err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLikes(commentID, likes)
	t.state = StateLoaded
	return nil
}

// Remove deletes a comment the current identity is allowed to delete. The
// local check is advisory; the server enforces the real rule. On success
// the comment leaves the top-level sequence, or its parent's replies if it
// was a reply.
func (t *Thread) Remove(ctx context.Context, commentID string) error {
	identity := t.gateway.Store().Identity()
	if identity == nil {
		return ErrUnauthenticated
	}
	if !t.CanDelete(commentID) {
		return ErrUnauthorized
	}

	if err := t.beginMutation(); err != nil {
		return err
	}

	if err := t.gateway.DeleteComment(ctx, commentID); err != nil {
		t.failMutation(err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocal(commentID)
	t.state = StateLoaded
	return nil
}

func (t *Thread) beginMutation() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateMutating {
		return ErrBusy
	}
	t.state = StateMutating
	return nil
}

func (t *Thread) failMutation(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateLoaded
	t.err = err
}

// callers hold t.mu for the three tree helpers below.

func (t *Thread) findLikes(commentID string) ([]string, bool) {
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			return t.comments[i].Likes, true
		}
		for j := range t.comments[i].Replies {
			if t.comments[i].Replies[j].ID == commentID {
				return t.comments[i].Replies[j].Likes, true
			}
		}
	}
	return nil, false
}

func (t *Thread) findAuthor(commentID string) (*string, bool) {
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			return t.comments[i].UserID, true
		}
		for j := range t.comments[i].Replies {
			if t.comments[i].Replies[j].ID == commentID {
				return t.comments[i].Replies[j].UserID, true
			}
		}
	}
	return nil, false
}

func (t *Thread) setLikes(commentID string, likes []string) {
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			t.comments[i].Likes = likes
			return
		}
		for j := range t.comments[i].Replies {
			if t.comments[i].Replies[j].ID == commentID {
				t.comments[i].Replies[j].Likes = likes
				return
			}
		}
	}
	t.log.Debug().Str("comment_id", commentID).Msg("liked comment not in local tree")
}

func (t *Thread) removeLocal(commentID string) {
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			t.comments = append(t.comments[:i], t.comments[i+1:]...)
			return
		}
	}
	for i := range t.comments {
		replies := t.comments[i].Replies
		for j := range replies {
			if replies[j].ID == commentID {
				t.comments[i].Replies = append(replies[:j], replies[j+1:]...)
				return
			}
		}
	}
}
