package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/ids"
	"github.com/sigmadevelopers/portfolio/internal/models"
)

type testimonialResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	AuthorName  string `json:"authorName"`
	Description string `json:"description"`
	Approved    bool   `json:"approved"`
}

func toTestimonialResponse(testimonial models.Testimonial) testimonialResponse {
	return testimonialResponse{
		ID:          testimonial.ID,
		UserID:      testimonial.UserID,
		AuthorName:  testimonial.AuthorName,
		Description: testimonial.Description,
		Approved:    testimonial.Approved,
	}
}

// ListTestimonials returns only approved entries to anonymous visitors;
// admins see everything, pending included.
func (h HandlerSet) ListTestimonials(c *gin.Context) {
	approvedOnly := true
	if user, ok := currentUser(c); ok && user.Role == models.UserRoleAdmin {
		approvedOnly = false
	}

	testimonials, err := h.testimonials.List(c.Request.Context(), approvedOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]testimonialResponse, 0, len(testimonials))
	for _, testimonial := range testimonials {
		resp = append(resp, toTestimonialResponse(testimonial))
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": resp})
}

type addTestimonialRequest struct {
	Description string `json:"description" binding:"required"`
}

func (h HandlerSet) AddTestimonial(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login to add a testimonial"})
		return
	}

	var req addTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "description required"})
		return
	}

	testimonial := models.Testimonial{
		ID:          ids.New(),
		UserID:      user.ID,
		AuthorName:  user.Name,
		Description: description,
		Approved:    false, // admin approves before it shows on the site
	}

	if err := h.testimonials.Create(c.Request.Context(), testimonial); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Testimonial submitted for review",
		"testimonial": toTestimonialResponse(testimonial),
	})
}

// GetTestimonial hides pending entries from everyone but their owner and
// admins.
func (h HandlerSet) GetTestimonial(c *gin.Context) {
	testimonial, err := h.testimonials.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !testimonial.Approved {
		user, ok := currentUser(c)
		if !ok || (testimonial.UserID != user.ID && user.Role != models.UserRoleAdmin) {
			c.JSON(http.StatusNotFound, gin.H{"message": "testimonial not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"testimonial": toTestimonialResponse(testimonial)})
}

type updateTestimonialRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateTestimonial lets the owner (or an admin) rewrite the text. The
// entry drops back to pending until an admin re-approves it.
func (h HandlerSet) UpdateTestimonial(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login to edit testimonials"})
		return
	}

	var req updateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "description required"})
		return
	}

	testimonial, err := h.testimonials.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if testimonial.UserID != user.ID && user.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	if err := h.testimonials.UpdateDescription(c.Request.Context(), testimonial.ID, description); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial updated, pending review"})
}

func (h HandlerSet) ApproveTestimonial(c *gin.Context) {
	if err := h.testimonials.SetApproved(c.Request.Context(), c.Param("id"), true); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial approved"})
}

// DeleteTestimonial is open to the testimonial's owner and to admins.
func (h HandlerSet) DeleteTestimonial(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login to delete testimonials"})
		return
	}

	testimonial, err := h.testimonials.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if testimonial.UserID != user.ID && user.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	if err := h.testimonials.Delete(c.Request.Context(), testimonial.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted"})
}
