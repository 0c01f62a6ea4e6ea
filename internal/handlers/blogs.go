package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/ids"
	"github.com/sigmadevelopers/portfolio/internal/models"
)

type blogResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content,omitempty"`
	CategoryID *string   `json:"categoryId,omitempty"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	ShareCount int64     `json:"shareCount"`
	ViewCount  int64     `json:"viewCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toBlogResponse(blog models.Blog) blogResponse {
	return blogResponse{
		ID:         blog.ID,
		Title:      blog.Title,
		Slug:       blog.Slug,
		Content:    blog.Content,
		CategoryID: blog.CategoryID,
		ImageURL:   blog.ImageURL,
		ShareCount: blog.ShareCount,
		ViewCount:  blog.ViewCount,
		CreatedAt:  blog.CreatedAt,
		UpdatedAt:  blog.UpdatedAt,
	}
}

func (h HandlerSet) ListBlogs(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	blogs, err := h.blogService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]blogResponse, 0, len(blogs))
	for _, blog := range blogs {
		item := toBlogResponse(blog)
		item.Content = "" // listing carries metadata only
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, gin.H{"blogs": resp})
}

func (h HandlerSet) GetBlog(c *gin.Context) {
	blog, err := h.blogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blog": toBlogResponse(blog)})
}

type shareBlogRequest struct {
	Platform string `json:"platform" binding:"required"`
}

func (h HandlerSet) ShareBlog(c *gin.Context) {
	var req shareBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	shareCount, err := h.blogService.Share(c.Request.Context(), c.Param("id"), req.Platform)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Blog shared",
		"shareCount": shareCount,
	})
}

type blogRequest struct {
	Title      string  `json:"title" binding:"required"`
	Slug       string  `json:"slug" binding:"required"`
	Content    string  `json:"content" binding:"required"`
	CategoryID *string `json:"categoryId"`
	ImageURL   *string `json:"imageUrl"`
}

func (h HandlerSet) AdminCreateBlog(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	blog := models.Blog{
		ID:         ids.New(),
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		ImageURL:   req.ImageURL,
	}

	if err := h.blogs.Create(c.Request.Context(), blog); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Blog created",
		"blog":    toBlogResponse(blog),
	})
}

func (h HandlerSet) AdminUpdateBlog(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	blog := models.Blog{
		ID:         c.Param("id"),
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		ImageURL:   req.ImageURL,
	}

	if err := h.blogs.Update(c.Request.Context(), blog); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Blog %s updated", blog.ID)})
}

func (h HandlerSet) AdminDeleteBlog(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted"})
}
