package devserver

import (
	"errors"

	"postline/internal/models"
	"postline/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateComment handles POST /api/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req models.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post ID is required"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment content is required"))
	}

	var post models.Post
	if err := s.db.First(&post, req.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", req.PostID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	comment := models.Comment{
		PostID:  req.PostID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.FeedMutations.WithLabelValues("comment_create").Inc()
	return c.Status(fiber.StatusCreated).JSON(comment)
}
