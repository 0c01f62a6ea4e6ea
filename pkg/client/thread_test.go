package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeComment mirrors the server's flat comment row.
type fakeComment struct {
	ID              string         `json:"id"`
	BlogID          string         `json:"blogId"`
	AuthorName      string         `json:"authorName"`
	AuthorEmail     string         `json:"authorEmail"`
	Body            string         `json:"body"`
	UserID          *string        `json:"userId,omitempty"`
	ParentCommentID *string        `json:"parentCommentId,omitempty"`
	Likes           []string       `json:"likes"`
	CreatedAt       time.Time      `json:"createdAt"`
	Replies         []*fakeComment `json:"replies,omitempty"`
}

// fakeBackend is an in-memory stand-in for the REST API, enforcing the
// same rules the real server does.
type fakeBackend struct {
	mu       sync.Mutex
	next     int
	comments []*fakeComment
	admins   map[string]bool
	requests int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{admins: map[string]bool{}}
}

func (b *fakeBackend) seed(blogID, body string, userID, parentID *string, likes ...string) *fakeComment {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	c := &fakeComment{
		ID:              fmt.Sprintf("c%d", b.next),
		BlogID:          blogID,
		AuthorName:      "Seeded",
		AuthorEmail:     "seed@x.com",
		Body:            body,
		UserID:          userID,
		ParentCommentID: parentID,
		Likes:           append([]string{}, likes...),
		CreatedAt:       time.Now(),
	}
	b.comments = append(b.comments, c)
	return c
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.comments)
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *fakeBackend) find(id string) *fakeComment {
	for _, c := range b.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests++
	b.mu.Unlock()

	userID := r.Header.Get("user-id")

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/comments/blog/"):
		blogID := strings.TrimPrefix(r.URL.Path, "/comments/blog/")
		b.mu.Lock()
		defer b.mu.Unlock()

		var top []*fakeComment
		for i := len(b.comments) - 1; i >= 0; i-- { // newest first
			c := b.comments[i]
			if c.BlogID != blogID || c.ParentCommentID != nil {
				continue
			}
			copied := *c
			copied.Replies = []*fakeComment{}
			for _, r2 := range b.comments { // oldest first
				if r2.ParentCommentID != nil && *r2.ParentCommentID == c.ID {
					rc := *r2
					copied.Replies = append(copied.Replies, &rc)
				}
			}
			top = append(top, &copied)
		}
		if top == nil {
			top = []*fakeComment{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"comments": top})

	case r.Method == http.MethodPost && r.URL.Path == "/comment/add":
		var req struct {
			BlogID          string  `json:"blogId"`
			Name            string  `json:"name"`
			Email           string  `json:"email"`
			Comment         string  `json:"comment"`
			ParentCommentID *string `json:"parentCommentId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.Comment == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name, email and comment are required"})
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if req.ParentCommentID != nil {
			parent := b.find(*req.ParentCommentID)
			if parent == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "comment not found"})
				return
			}
			if parent.ParentCommentID != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "cannot reply to a reply"})
				return
			}
		}

		b.next++
		c := &fakeComment{
			ID:              fmt.Sprintf("c%d", b.next),
			BlogID:          req.BlogID,
			AuthorName:      req.Name,
			AuthorEmail:     req.Email,
			Body:            req.Comment,
			ParentCommentID: req.ParentCommentID,
			Likes:           []string{},
			CreatedAt:       time.Now(),
		}
		if userID != "" {
			c.UserID = &userID
		}
		b.comments = append(b.comments, c)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Comment added successfully", "comment": c})

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/comment/like/"):
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Login to like comments"})
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/comment/like/")
		b.mu.Lock()
		defer b.mu.Unlock()
		c := b.find(id)
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "comment not found"})
			return
		}
		var likes []string
		found := false
		for _, l := range c.Likes {
			if l == userID {
				found = true
				continue
			}
			likes = append(likes, l)
		}
		if !found {
			likes = append(likes, userID)
		}
		if likes == nil {
			likes = []string{}
		}
		c.Likes = likes
		writeJSON(w, http.StatusOK, map[string]any{"message": "Like updated", "likes": likes})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/comment/delete/"):
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Login to delete comments"})
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/comment/delete/")
		b.mu.Lock()
		defer b.mu.Unlock()
		c := b.find(id)
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "comment not found"})
			return
		}
		isAuthor := c.UserID != nil && *c.UserID == userID
		if !isAuthor && !b.admins[userID] {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
			return
		}
		kept := b.comments[:0]
		for _, existing := range b.comments {
			if existing.ID == id || (existing.ParentCommentID != nil && *existing.ParentCommentID == id) {
				continue
			}
			kept = append(kept, existing)
		}
		b.comments = kept
		writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func newTestThread(t *testing.T, backend *fakeBackend) (*Thread, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	gateway := NewGateway(srv.URL, store, zerolog.Nop())
	return NewThread(gateway, zerolog.Nop()), store
}

func strPtr(s string) *string { return &s }

func TestLoadThread_EmptyBlog(t *testing.T) {
	thread, _ := newTestThread(t, newFakeBackend())

	require.NoError(t, thread.LoadThread(context.Background(), "blog-1"))
	require.Equal(t, StateLoaded, thread.State())
	require.Empty(t, thread.Comments())
	require.Zero(t, thread.TotalCount())
}

func TestLoadThread_NestedTreeShape(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "first", strPtr("u1"), nil)
	backend.seed("b1", "reply one", strPtr("u2"), &c1.ID)
	backend.seed("b1", "reply two", nil, &c1.ID)
	backend.seed("b1", "second", nil, nil)
	backend.seed("other", "elsewhere", nil, nil)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	comments := thread.Comments()
	require.Len(t, comments, 2)
	// newest top-level first
	require.Equal(t, "second", comments[0].Body)
	require.Equal(t, "first", comments[1].Body)
	// replies oldest first, bound to their parent
	require.Len(t, comments[1].Replies, 2)
	require.Equal(t, "reply one", comments[1].Replies[0].Body)
	require.Equal(t, c1.ID, *comments[1].Replies[0].ParentCommentID)
	require.Equal(t, 4, thread.TotalCount())
}

func TestLoadThread_FailureThenAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	thread := NewThread(NewGateway(srv.URL, store, zerolog.Nop()), zerolog.Nop())

	err := thread.LoadThread(context.Background(), "b1")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "boom", apiErr.Message)
	require.Equal(t, StateErrored, thread.State())
	require.Error(t, thread.Err())

	thread.AckError()
	require.NoError(t, thread.Err())
	require.Equal(t, StateLoaded, thread.State())
}

func TestSubmit_ValidationNeverReachesServer(t *testing.T) {
	backend := newFakeBackend()
	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	before := backend.requestCount()

	cases := []SubmitInput{
		{BlogID: "b1", AuthorName: "Bob", AuthorEmail: "b@x.com", Body: "   "},
		{BlogID: "b1", AuthorName: "", AuthorEmail: "b@x.com", Body: "hi"},
		{BlogID: "b1", AuthorName: "Bob", AuthorEmail: " ", Body: "hi"},
	}
	for _, input := range cases {
		err := thread.Submit(context.Background(), input)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	}

	require.Equal(t, before, backend.requestCount())
}

func TestSubmit_TopLevelAppearsExactlyOnce(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("b1", "existing", nil, nil)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	require.NoError(t, thread.Submit(context.Background(), SubmitInput{
		BlogID:      "b1",
		AuthorName:  "Bob",
		AuthorEmail: "b@x.com",
		Body:        "fresh thoughts",
	}))

	comments := thread.Comments()
	require.Len(t, comments, 2)
	seen := 0
	for _, c := range comments {
		if c.Body == "fresh thoughts" {
			seen++
		}
	}
	require.Equal(t, 1, seen, "optimistic insert must be overwritten by the reconcile")
	require.Equal(t, "fresh thoughts", comments[0].Body, "new comment lands at the front")
	require.Equal(t, StateLoaded, thread.State())
}

func TestSubmit_NestedReply(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "parent", nil, nil)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	require.NoError(t, thread.Submit(context.Background(), SubmitInput{
		BlogID:          "b1",
		AuthorName:      "Bob",
		AuthorEmail:     "b@x.com",
		Body:            "hi",
		ParentCommentID: &c1.ID,
	}))

	comments := thread.Comments()
	require.Len(t, comments, 1)
	require.Len(t, comments[0].Replies, 1)
	require.Equal(t, "hi", comments[0].Replies[0].Body)
	require.Equal(t, c1.ID, *comments[0].Replies[0].ParentCommentID)
}

func TestSubmit_ReplyToReplyRejected(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "parent", nil, nil)
	r1 := backend.seed("b1", "reply", nil, &c1.ID)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	err := thread.Submit(context.Background(), SubmitInput{
		BlogID:          "b1",
		AuthorName:      "Bob",
		AuthorEmail:     "b@x.com",
		Body:            "too deep",
		ParentCommentID: &r1.ID,
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, 2, thread.TotalCount(), "prior tree is retained on failure")
}

func TestToggleLike_RoundTrip(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "liked", nil, nil, "u1")

	thread, store := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	store.SaveIdentity(&Identity{ID: "u9", Role: "member"})

	require.NoError(t, thread.ToggleLike(context.Background(), c1.ID))
	require.Equal(t, []string{"u1", "u9"}, thread.Comments()[0].Likes)
	require.True(t, thread.HasLiked(c1.ID))

	require.NoError(t, thread.ToggleLike(context.Background(), c1.ID))
	require.Equal(t, []string{"u1"}, thread.Comments()[0].Likes)
	require.False(t, thread.HasLiked(c1.ID))
}

func TestToggleLike_OnReply(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "parent", nil, nil)
	r1 := backend.seed("b1", "reply", nil, &c1.ID)

	thread, store := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	store.SaveIdentity(&Identity{ID: "u9", Role: "member"})

	require.NoError(t, thread.ToggleLike(context.Background(), r1.ID))
	require.Equal(t, []string{"u9"}, thread.Comments()[0].Replies[0].Likes)
}

func TestToggleLike_Unauthenticated(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "liked", nil, nil)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	before := backend.requestCount()

	require.ErrorIs(t, thread.ToggleLike(context.Background(), c1.ID), ErrUnauthenticated)
	require.Equal(t, before, backend.requestCount(), "doomed request never sent")
}

func TestRemove_UnauthenticatedLeavesTree(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("b1", "keep me", strPtr("u1"), nil)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	err := thread.Remove(context.Background(), thread.Comments()[0].ID)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Equal(t, 1, thread.TotalCount())
	require.Equal(t, 1, backend.count())
}

func TestRemove_UnauthorizedLeavesTree(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "someone else's", strPtr("u1"), nil)

	thread, store := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	store.SaveIdentity(&Identity{ID: "u9", Role: "member"})
	before := backend.requestCount()

	require.ErrorIs(t, thread.Remove(context.Background(), c1.ID), ErrUnauthorized)
	require.Equal(t, 1, thread.TotalCount())
	require.Equal(t, before, backend.requestCount())
}

func TestRemove_ByAuthor(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "mine", strPtr("u1"), nil)
	backend.seed("b1", "other", strPtr("u2"), nil)

	thread, store := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	store.SaveIdentity(&Identity{ID: "u1", Role: "member"})

	require.True(t, thread.CanDelete(c1.ID))
	require.NoError(t, thread.Remove(context.Background(), c1.ID))
	require.Equal(t, 1, thread.TotalCount())
	require.Equal(t, 1, backend.count())
}

func TestRemove_ReplyByAdmin(t *testing.T) {
	backend := newFakeBackend()
	backend.admins["a1"] = true
	c1 := backend.seed("b1", "parent", strPtr("u1"), nil)
	r1 := backend.seed("b1", "reply", strPtr("u2"), &c1.ID)

	thread, store := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))
	store.SaveIdentity(&Identity{ID: "a1", Role: "admin"})

	require.True(t, thread.CanDelete(r1.ID))
	require.NoError(t, thread.Remove(context.Background(), r1.ID))

	comments := thread.Comments()
	require.Len(t, comments, 1)
	require.Empty(t, comments[0].Replies)
}

func TestMutation_SecondCallerIsBusy(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "slow", nil, nil)

	release := make(chan struct{})
	gate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/comment/like/") {
			<-release
		}
		backend.ServeHTTP(w, r)
	})
	srv := httptest.NewServer(gate)
	defer srv.Close()

	store := NewMemoryStore()
	store.SaveIdentity(&Identity{ID: "u1", Role: "member"})
	thread := NewThread(NewGateway(srv.URL, store, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	firstDone := make(chan error, 1)
	go func() { firstDone <- thread.ToggleLike(context.Background(), c1.ID) }()

	require.Eventually(t, func() bool {
		return thread.State() == StateMutating
	}, time.Second, time.Millisecond)

	require.ErrorIs(t, thread.ToggleLike(context.Background(), c1.ID), ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)
	require.Equal(t, StateLoaded, thread.State())
}

func TestThread_TopLevelNeverCarriesParent(t *testing.T) {
	backend := newFakeBackend()
	c1 := backend.seed("b1", "parent", nil, nil)
	backend.seed("b1", "reply", nil, &c1.ID)

	thread, _ := newTestThread(t, backend)
	require.NoError(t, thread.LoadThread(context.Background(), "b1"))

	for _, comment := range thread.Comments() {
		for _, reply := range comment.Replies {
			require.NotNil(t, reply.ParentCommentID)
			require.Equal(t, comment.ID, *reply.ParentCommentID)
		}
	}
}
