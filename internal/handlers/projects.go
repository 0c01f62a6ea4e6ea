package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/ids"
	"github.com/sigmadevelopers/portfolio/internal/models"
)

type projectResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        *string  `json:"link,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Tech        []string `json:"tech"`
}

func toProjectResponse(project models.Project) projectResponse {
	tech := project.Tech
	if tech == nil {
		tech = []string{}
	}
	return projectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Link:        project.Link,
		ImageURL:    project.ImageURL,
		Tech:        tech,
	}
}

func (h HandlerSet) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		resp = append(resp, toProjectResponse(project))
	}

	c.JSON(http.StatusOK, gin.H{"projects": resp})
}

func (h HandlerSet) GetProject(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": toProjectResponse(project)})
}

// projectForm is multipart: the admin dashboard submits fields plus an
// optional screenshot image.
func (h HandlerSet) projectFromForm(c *gin.Context, id string) (models.Project, error) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" || description == "" {
		return models.Project{}, fmt.Errorf("title and description required")
	}

	project := models.Project{
		ID:          id,
		Title:       title,
		Description: description,
	}
	if link := strings.TrimSpace(c.PostForm("link")); link != "" {
		project.Link = &link
	}
	if tech := strings.TrimSpace(c.PostForm("tech")); tech != "" {
		project.Tech = strings.Split(tech, ",")
		for i := range project.Tech {
			project.Tech[i] = strings.TrimSpace(project.Tech[i])
		}
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return project, nil // image optional
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.Project{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Project{}, fmt.Errorf("read image: %w", err)
	}

	url, err := h.store.PutImage(c.Request.Context(), fmt.Sprintf("projects/%s", id), data)
	if err != nil {
		return models.Project{}, err
	}
	project.ImageURL = &url

	return project, nil
}

func (h HandlerSet) AdminCreateProject(c *gin.Context) {
	project, err := h.projectFromForm(c, ids.New())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created",
		"project": toProjectResponse(project),
	})
}

func (h HandlerSet) AdminUpdateProject(c *gin.Context) {
	project, err := h.projectFromForm(c, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project updated"})
}

func (h HandlerSet) AdminDeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Remove(c.Request.Context(), fmt.Sprintf("projects/%s", id)); err != nil {
		h.log.Warn().Err(err).Str("project_id", id).Msg("remove project image failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
