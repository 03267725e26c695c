package devserver

import (
	"errors"

	"postline/internal/models"
	"postline/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateVote handles POST /api/votes. Repeating a vote with the same
// polarity is idempotent; the existing row is returned.
func (s *Server) CreateVote(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req models.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post ID is required"))
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

	// Map conditions so a false polarity still participates in the match.
	var vote models.Vote
	err := s.db.Where(map[string]interface{}{
		"post_id": req.PostID,
		"user_id": userID,
		"is_like": req.IsLike,
	}).FirstOrCreate(&vote).Error
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.FeedMutations.WithLabelValues("vote_create").Inc()
	return c.Status(fiber.StatusCreated).JSON(vote)
}
