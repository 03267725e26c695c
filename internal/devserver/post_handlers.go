package devserver

import (
	"errors"
	"sort"

	"postline/internal/models"
	"postline/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const trendingSize = 5

// ListPosts handles GET /api/posts. An optional author query filters the
// feed to posts written by that username.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	author := c.Query("author")

	query := s.db.Preload("User").Preload("Votes").Preload("Comments").
		Order("created_at DESC")
	if author != "" {
		query = query.Joins("JOIN users ON users.id = posts.user_id").
			Where("users.username = ?", author)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := s.decoratePosts(posts); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(posts)
}

// TrendingPosts handles GET /api/posts/trending. It returns the posts with
// the most likes.
func (s *Server) TrendingPosts(c *fiber.Ctx) error {
	var posts []models.Post
	err := s.db.Preload("User").Preload("Votes").Preload("Comments").
		Find(&posts).Error
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].LikeCount() > posts[j].LikeCount()
	})
	if len(posts) > trendingSize {
		posts = posts[:trendingSize]
	}

	if err := s.decoratePosts(posts); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(posts)
}

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	post := models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  userID,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.FeedMutations.WithLabelValues("post_create").Inc()
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts. Only the post's author may update it.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post ID is required"))
	}
	if req.Title == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	var post models.Post
	if err := s.db.First(&post, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", req.ID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			&models.AppError{
				Code:    models.CodeForbidden,
				Status:  fiber.StatusForbidden,
				Message: "You can only update your own posts",
			})
	}

	post.Title = req.Title
	post.Content = req.Content
	if err := s.db.Save(&post).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.FeedMutations.WithLabelValues("post_update").Inc()
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Only the post's author may
// delete it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			&models.AppError{
				Code:    models.CodeForbidden,
				Status:  fiber.StatusForbidden,
				Message: "You can only delete your own posts",
			})
	}

	if err := s.db.Delete(&post).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.FeedMutations.WithLabelValues("post_delete").Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

// decoratePosts fills the computed author fields on posts and their
// comments from the users table.
func (s *Server) decoratePosts(posts []models.Post) error {
	ids := make([]uint, 0)
	seen := make(map[uint]bool)
	for i := range posts {
		for _, cm := range posts[i].Comments {
			if !seen[cm.UserID] {
				seen[cm.UserID] = true
				ids = append(ids, cm.UserID)
			}
		}
	}

	names := make(map[uint]string, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return err
		}
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}

	for i := range posts {
		posts[i].AuthorName = posts[i].User.Username
		posts[i].AuthorRole = posts[i].User.Role
		for j := range posts[i].Comments {
			posts[i].Comments[j].AuthorName = names[posts[i].Comments[j].UserID]
		}
	}
	return nil
}
