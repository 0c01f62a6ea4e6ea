package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sigmadevelopers/portfolio/internal/ids"
	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/repository"
)

var (
	ErrReplyTooDeep   = errors.New("cannot reply to a reply")
	ErrForbidden      = errors.New("not allowed to delete this comment")
	ErrBlogMismatch   = errors.New("parent comment belongs to another blog")
	ErrInvalidComment = errors.New("name, email and comment are required")
)

// CommentThread is one top-level comment with its replies attached, oldest
// reply first. Replies never carry further replies.
type CommentThread struct {
	Comment models.Comment
	Replies []models.Comment
}

type CommentService struct {
	comments *repository.CommentRepository
	blogs    *repository.BlogRepository
	log      zerolog.Logger
}

func NewCommentService(comments *repository.CommentRepository, blogs *repository.BlogRepository, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		log:      log,
	}
}

// ListThread assembles the two-level tree for a blog. Top-level comments
// keep the repository's newest-first order; replies are flipped to oldest
// first so a conversation reads downward.
func (s *CommentService) ListThread(ctx context.Context, blogID string) ([]CommentThread, error) {
	flat, err := s.comments.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	threads := make([]CommentThread, 0, len(flat))
	index := make(map[string]int, len(flat))
	for _, comment := range flat {
		if comment.ParentCommentID == nil {
			index[comment.ID] = len(threads)
			threads = append(threads, CommentThread{Comment: comment, Replies: []models.Comment{}})
		}
	}

	// Walk backwards so replies land oldest-first.
	for i := len(flat) - 1; i >= 0; i-- {
		comment := flat[i]
		if comment.ParentCommentID == nil {
			continue
		}
		pos, ok := index[*comment.ParentCommentID]
		if !ok {
			// Orphaned reply, parent deleted out-of-band. Skip it.
			s.log.Warn().Str("comment_id", comment.ID).Msg("reply without parent")
			continue
		}
		threads[pos].Replies = append(threads[pos].Replies, comment)
	}

	return threads, nil
}

type AddCommentInput struct {
	BlogID          string
	AuthorName      string
	AuthorEmail     string
	Body            string
	ParentCommentID *string
	UserID          *string
}

func (s *CommentService) Add(ctx context.Context, input AddCommentInput) (models.Comment, error) {
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	input.AuthorEmail = strings.TrimSpace(input.AuthorEmail)
	input.Body = strings.TrimSpace(input.Body)
	if input.AuthorName == "" || input.AuthorEmail == "" || input.Body == "" {
		return models.Comment{}, ErrInvalidComment
	}

	if _, err := s.blogs.GetByID(ctx, input.BlogID); err != nil {
		return models.Comment{}, err
	}

	if input.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *input.ParentCommentID)
		if err != nil {
			return models.Comment{}, err
		}
		if parent.ParentCommentID != nil {
			return models.Comment{}, ErrReplyTooDeep
		}
		if parent.BlogID != input.BlogID {
			return models.Comment{}, ErrBlogMismatch
		}
	}

	comment := models.Comment{
		ID:              ids.New(),
		BlogID:          input.BlogID,
		AuthorName:      input.AuthorName,
		AuthorEmail:     input.AuthorEmail,
		Body:            input.Body,
		UserID:          input.UserID,
		ParentCommentID: input.ParentCommentID,
		Likes:           []string{},
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	s.log.Debug().
		Str("comment_id", comment.ID).
		Str("blog_id", comment.BlogID).
		Bool("reply", comment.ParentCommentID != nil).
		Msg("comment added")

	return comment, nil
}

// ToggleLike flips the user's membership in the likes set and returns the
// authoritative set.
func (s *CommentService) ToggleLike(ctx context.Context, commentID string, userID string) ([]string, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	likes := make([]string, 0, len(comment.Likes)+1)
	found := false
	for _, id := range comment.Likes {
		if id == userID {
			found = true
			continue
		}
		likes = append(likes, id)
	}
	if !found {
		likes = append(likes, userID)
	}

	if err := s.comments.UpdateLikes(ctx, commentID, likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// Delete removes a comment (and its replies) if the actor wrote it or is an
// admin. This is the authoritative check; the client-side one is advisory.
func (s *CommentService) Delete(ctx context.Context, commentID string, actor models.User) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	isAuthor := comment.UserID != nil && *comment.UserID == actor.ID
	if !isAuthor && actor.Role != models.UserRoleAdmin {
		return ErrForbidden
	}

	return s.comments.Delete(ctx, commentID)
}
