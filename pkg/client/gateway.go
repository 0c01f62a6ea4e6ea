package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gateway is the single outbound request path. It reads the identity fresh
// from the Store on every call and attaches it as the user-id header, so a
// login or logout between calls takes effect immediately. No retries, no
// caching: each call is independent and at-most-once from this side.
type Gateway struct {
	baseURL string
	http    *http.Client
	store   Store
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

func NewGateway(baseURL string, store Store, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		log:     log,
	}
}

// SetHTTPClient swaps the underlying client, mainly for tests.
func (g *Gateway) SetHTTPClient(c *http.Client) {
	g.http = c
}

// Store exposes the session store the gateway reads from.
func (g *Gateway) Store() Store {
	return g.store
}

func (g *Gateway) setToken(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}

func (g *Gateway) bearer() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if identity := g.store.Identity(); identity != nil {
		req.Header.Set("user-id", identity.ID)
	}
	if token := g.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		g.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("request failed")
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
		}
	}
	return nil
}

// Comments fetches the full comment tree of a blog. No pagination: the
// whole tree comes back on every call.
func (g *Gateway) Comments(ctx context.Context, blogID string) ([]TopLevelComment, error) {
	var resp struct {
		Comments []TopLevelComment `json:"comments"`
	}
	if err := g.do(ctx, http.MethodGet, "/comments/blog/"+blogID, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Comments == nil {
		resp.Comments = []TopLevelComment{}
	}
	return resp.Comments, nil
}

type AddCommentRequest struct {
	BlogID          string  `json:"blogId"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Comment         string  `json:"comment"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

// AddComment posts a comment or reply and returns the created comment as
// the server resolved it.
func (g *Gateway) AddComment(ctx context.Context, req AddCommentRequest) (Reply, error) {
	var resp struct {
		Message string `json:"message"`
		Comment Reply  `json:"comment"`
	}
	if err := g.do(ctx, http.MethodPost, "/comment/add", req, &resp); err != nil {
		return Reply{}, err
	}
	return resp.Comment, nil
}

// LikeComment toggles the caller's like and returns the authoritative
// likes set.
func (g *Gateway) LikeComment(ctx context.Context, commentID string) ([]string, error) {
	var resp struct {
		Message string   `json:"message"`
		Likes   []string `json:"likes"`
	}
	if err := g.do(ctx, http.MethodPost, "/comment/like/"+commentID, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Likes == nil {
		resp.Likes = []string{}
	}
	return resp.Likes, nil
}

func (g *Gateway) DeleteComment(ctx context.Context, commentID string) error {
	return g.do(ctx, http.MethodDelete, "/comment/delete/"+commentID, nil, nil)
}

// ShareBlog records a share and returns the blog's share count.
func (g *Gateway) ShareBlog(ctx context.Context, blogID string, platform string) (int64, error) {
	var resp struct {
		Message    string `json:"message"`
		ShareCount int64  `json:"shareCount"`
	}
	body := map[string]string{"platform": platform}
	if err := g.do(ctx, http.MethodPost, "/blog/share/"+blogID, body, &resp); err != nil {
		return 0, err
	}
	return resp.ShareCount, nil
}

type authEnvelope struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Login authenticates, persists the returned identity into the session
// store and captures the bearer token for the account surface.
func (g *Gateway) Login(ctx context.Context, email, password string) (*Identity, error) {
	var resp authEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := g.do(ctx, http.MethodPost, "/user/login", body, &resp); err != nil {
		return nil, err
	}

	if !g.store.SaveIdentity(&resp.User) {
		g.log.Warn().Msg("identity not persisted; session will not survive restart")
	}
	g.setToken(resp.Token)
	return &resp.User, nil
}

func (g *Gateway) RegisterAccount(ctx context.Context, name, email, password string) (*Identity, error) {
	var resp authEnvelope
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := g.do(ctx, http.MethodPost, "/user/register", body, &resp); err != nil {
		return nil, err
	}

	if !g.store.SaveIdentity(&resp.User) {
		g.log.Warn().Msg("identity not persisted; session will not survive restart")
	}
	g.setToken(resp.Token)
	return &resp.User, nil
}

// RefreshProfile re-reads the profile from the server and refreshes the
// persisted identity, the startup rehydration path.
func (g *Gateway) RefreshProfile(ctx context.Context) (*Identity, error) {
	if !g.store.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	var resp struct {
		User Identity `json:"user"`
	}
	if err := g.do(ctx, http.MethodGet, "/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	g.store.SaveIdentity(&resp.User)
	return &resp.User, nil
}

// Logout drops the local session. Purely client-side: the server keeps no
// session state for the public surface.
func (g *Gateway) Logout() {
	g.store.ClearIdentity()
	g.setToken("")
}

// DeleteAccount removes the account server-side and clears the session.
func (g *Gateway) DeleteAccount(ctx context.Context) error {
	if !g.store.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if err := g.do(ctx, http.MethodDelete, "/user/delete", nil, nil); err != nil {
		return err
	}
	g.Logout()
	return nil
}
