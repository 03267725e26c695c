package devserver

import (
	"postline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.db.Order("username ASC").Find(&users).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(users)
}

// GetDashboard handles GET /api/dashboard.
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	var dash models.Dashboard

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &dash.UserCount},
		{&models.Post{}, &dash.PostCount},
		{&models.Comment{}, &dash.CommentCount},
		{&models.Vote{}, &dash.VoteCount},
	}
	for _, ct := range counts {
		if err := s.db.Model(ct.model).Count(ct.dest).Error; err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	return c.JSON(dash)
}
