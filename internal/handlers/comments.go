package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/service"
)

// commentResponse is the wire shape of a single comment. Replies is only
// present on top-level comments; a reply never nests further.
type commentResponse struct {
	ID              string            `json:"id"`
	BlogID          string            `json:"blogId"`
	AuthorName      string            `json:"authorName"`
	AuthorEmail     string            `json:"authorEmail"`
	Body            string            `json:"body"`
	UserID          *string           `json:"userId,omitempty"`
	ParentCommentID *string           `json:"parentCommentId,omitempty"`
	Likes           []string          `json:"likes"`
	CreatedAt       time.Time         `json:"createdAt"`
	Replies         []commentResponse `json:"replies,omitempty"`
}

func toCommentResponse(comment models.Comment) commentResponse {
	likes := comment.Likes
	if likes == nil {
		likes = []string{}
	}
	return commentResponse{
		ID:              comment.ID,
		BlogID:          comment.BlogID,
		AuthorName:      comment.AuthorName,
		AuthorEmail:     comment.AuthorEmail,
		Body:            comment.Body,
		UserID:          comment.UserID,
		ParentCommentID: comment.ParentCommentID,
		Likes:           likes,
		CreatedAt:       comment.CreatedAt,
	}
}

func (h HandlerSet) ListComments(c *gin.Context) {
	blogID := c.Param("blogId")

	threads, err := h.comments.ListThread(c.Request.Context(), blogID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]commentResponse, 0, len(threads))
	for _, thread := range threads {
		item := toCommentResponse(thread.Comment)
		item.Replies = make([]commentResponse, 0, len(thread.Replies))
		for _, reply := range thread.Replies {
			item.Replies = append(item.Replies, toCommentResponse(reply))
		}
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, gin.H{"comments": resp})
}

type addCommentRequest struct {
	BlogID          string  `json:"blogId" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Comment         string  `json:"comment" binding:"required"`
	ParentCommentID *string `json:"parentCommentId"`
}

func (h HandlerSet) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	input := service.AddCommentInput{
		BlogID:          req.BlogID,
		AuthorName:      req.Name,
		AuthorEmail:     req.Email,
		Body:            req.Comment,
		ParentCommentID: req.ParentCommentID,
	}
	if user, ok := currentUser(c); ok {
		input.UserID = &user.ID
	}

	comment, err := h.comments.Add(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": toCommentResponse(comment),
	})
}

func (h HandlerSet) LikeComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login to like comments"})
		return
	}

	likes, err := h.comments.ToggleLike(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Like updated",
		"likes":   likes,
	})
}

func (h HandlerSet) DeleteComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login to delete comments"})
		return
	}

	if err := h.comments.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
