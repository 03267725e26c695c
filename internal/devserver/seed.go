package devserver

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"postline/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password every seeded account accepts.
const SeedPassword = "password123"

var seedRoles = []string{"member", "member", "member", "moderator", "admin"}

// Seed populates the database with fake users, posts, comments, and votes.
// A no-op when users already exist.
func Seed(db *gorm.DB, numUsers, numPosts int) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		users = append(users, models.User{
			Username: strings.ToLower(gofakeit.FirstName()) + fmt.Sprint(gofakeit.Number(1, 999)),
			Password: string(hashed),
			Role:     seedRoles[rand.Intn(len(seedRoles))],
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for i := 0; i < numPosts; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			Title:     gofakeit.Sentence(gofakeit.Number(3, 8)),
			Content:   gofakeit.Paragraph(1, gofakeit.Number(2, 5), gofakeit.Number(5, 15), " "),
			UserID:    author.ID,
			CreatedAt: time.Now().Add(-time.Duration(gofakeit.Number(1, 14*24)) * time.Hour),
		}
		if err := db.Create(&post).Error; err != nil {
			return err
		}

		for _, u := range users {
			if rand.Float64() < 0.4 {
				vote := models.Vote{PostID: post.ID, UserID: u.ID, IsLike: rand.Float64() < 0.8}
				if err := db.Create(&vote).Error; err != nil {
					return err
				}
			}
		}

		for c := 0; c < gofakeit.Number(0, 4); c++ {
			comment := models.Comment{
				PostID:  post.ID,
				UserID:  users[rand.Intn(len(users))].ID,
				Content: gofakeit.Sentence(gofakeit.Number(4, 12)),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
