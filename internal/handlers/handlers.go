package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sigmadevelopers/portfolio/internal/config"
	"github.com/sigmadevelopers/portfolio/internal/middleware"
	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/repository"
	"github.com/sigmadevelopers/portfolio/internal/service"
	"github.com/sigmadevelopers/portfolio/internal/storage"
)

// Database is what the handlers need from the connection pool. pgxpool
// satisfies it in production, pgxmock in tests.
type Database interface {
	repository.DB
	Ping(ctx context.Context) error
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	db           Database
	cache        *redis.Client
	store        *storage.ObjectStore
	users        *repository.UserRepository
	blogs        *repository.BlogRepository
	categories   *repository.CategoryRepository
	projects     *repository.ProjectRepository
	testimonials *repository.TestimonialRepository
	authService  *service.AuthService
	comments     *service.CommentService
	blogService  *service.BlogService
}

func NewHandlerSet(log zerolog.Logger, db Database, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		db:           db,
		cache:        cache,
		store:        store,
		users:        userRepo,
		blogs:        blogRepo,
		categories:   categoryRepo,
		projects:     projectRepo,
		testimonials: testimonialRepo,
		authService:  service.NewAuthService(userRepo, testimonialRepo, cfg, log),
		comments:     service.NewCommentService(commentRepo, blogRepo, log),
		blogService:  service.NewBlogService(blogRepo, cache, log),
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Identity(h.users))

	user := v1.Group("/user")
	user.POST("/register", h.RegisterUser)
	user.POST("/login", h.Login)
	user.POST("/forgotpassword", h.ForgotPassword)
	user.PUT("/password/reset/:token", h.ResetPassword)

	account := v1.Group("/user")
	account.Use(middleware.Auth(h.cfg, h.users))
	account.GET("/profile", h.Profile)
	account.PUT("/update", h.UpdateProfile)
	account.PUT("/avatar", h.UpdateAvatar)
	account.DELETE("/delete", h.DeleteAccount)

	v1.GET("/comments/blog/:blogId", h.ListComments)
	v1.POST("/comment/add",
		middleware.RateLimit(h.cache, h.cfg.Security.CommentBurst, h.cfg.Security.CommentWindow),
		h.AddComment,
	)
	v1.POST("/comment/like/:id", h.LikeComment)
	v1.DELETE("/comment/delete/:id", h.DeleteComment)

	v1.GET("/blogs/all", h.ListBlogs)
	v1.GET("/blog/:id", h.GetBlog)
	v1.POST("/blog/share/:id", h.ShareBlog)

	v1.GET("/categories", h.ListCategories)
	v1.GET("/category/:id", h.GetCategory)
	v1.GET("/projects", h.ListProjects)
	v1.GET("/project/:id", h.GetProject)
	v1.GET("/testimonials", h.ListTestimonials)
	v1.POST("/testimonial/add", h.AddTestimonial)
	v1.GET("/testimonial/:id", h.GetTestimonial)
	v1.PUT("/testimonial/:id", h.UpdateTestimonial)
	v1.DELETE("/testimonial/:id", h.DeleteTestimonial)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	admin.GET("/users", h.AdminListUsers)
	admin.GET("/user/:id", h.AdminGetUser)
	admin.PUT("/user/:id", h.AdminUpdateUserRole)
	admin.DELETE("/user/:id", h.AdminDeleteUser)

	admin.POST("/blog/new", h.AdminCreateBlog)
	admin.PUT("/blog/:id", h.AdminUpdateBlog)
	admin.DELETE("/blog/:id", h.AdminDeleteBlog)

	admin.POST("/category/create", h.AdminCreateCategory)
	admin.PUT("/category/:id", h.AdminUpdateCategory)
	admin.DELETE("/category/:id", h.AdminDeleteCategory)

	admin.POST("/project/new", h.AdminCreateProject)
	admin.PUT("/project/:id", h.AdminUpdateProject)
	admin.DELETE("/project/:id", h.AdminDeleteProject)

	admin.PUT("/testimonial/approve/:id", h.ApproveTestimonial)
}

// currentUser returns the identity resolved by the Identity or Auth
// middleware, if any.
func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

// respondError maps domain errors onto the {"message": ...} envelope the
// clients parse.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrBlogNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrTestimonialNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidComment),
		errors.Is(err, service.ErrReplyTooDeep),
		errors.Is(err, service.ErrBlogMismatch),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidResetToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}

	c.JSON(status, gin.H{"message": err.Error()})
}
