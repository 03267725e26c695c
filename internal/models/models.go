// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account on the posting service.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"not null;default:member" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Vote records a single like or dislike fact for a post. A user holds at
// most one vote per (post, polarity); like and dislike are independent.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_polarity" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_polarity" json:"user_id"`
	IsLike    bool      `gorm:"uniqueIndex:idx_post_user_polarity" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PostID  uint   `gorm:"not null" json:"post_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	Content string `gorm:"not null" json:"content"`
	// AuthorName is not persisted; filled from the user relation at query time
	AuthorName string    `gorm:"-" json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is a feed entry with its votes and comments attached.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"not null" json:"content"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"-"`
	// AuthorName and AuthorRole are not persisted; filled from the user relation
	AuthorName string         `gorm:"-" json:"author_name"`
	AuthorRole string         `gorm:"-" json:"author_role"`
	Votes      []Vote         `gorm:"foreignKey:PostID" json:"votes"`
	Comments   []Comment      `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// LikeCount derives the number of like votes from the vote collection.
func (p *Post) LikeCount() int {
	return p.countVotes(true)
}

// DislikeCount derives the number of dislike votes from the vote collection.
func (p *Post) DislikeCount() int {
	return p.countVotes(false)
}

func (p *Post) countVotes(isLike bool) int {
	n := 0
	for _, v := range p.Votes {
		if v.IsLike == isLike {
			n++
		}
	}
	return n
}

// HasVote reports whether userID holds a vote of the given polarity on this
// post. Like and dislike are independent facts.
func (p *Post) HasVote(userID uint, isLike bool) bool {
	for _, v := range p.Votes {
		if v.UserID == userID && v.IsLike == isLike {
			return true
		}
	}
	return false
}

// Clone returns a structural deep copy of the post. Mutating the copy never
// aliases the original's vote or comment collections.
func (p *Post) Clone() *Post {
	clone := *p
	if p.Votes != nil {
		clone.Votes = make([]Vote, len(p.Votes))
		copy(clone.Votes, p.Votes)
	}
	if p.Comments != nil {
		clone.Comments = make([]Comment, len(p.Comments))
		copy(clone.Comments, p.Comments)
	}
	return &clone
}

// PostRequest is the create/update payload for a post. UserID is always set
// by the engine from the authenticated session, never from form input.
type PostRequest struct {
	ID      uint   `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  uint   `json:"user_id"`
}

// CommentRequest is the create payload for a comment.
type CommentRequest struct {
	PostID  uint   `json:"post_id"`
	UserID  uint   `json:"user_id"`
	Content string `json:"content"`
}

// VoteRequest is the create payload for a vote.
type VoteRequest struct {
	PostID uint `json:"post_id"`
	UserID uint `json:"user_id"`
	IsLike bool `json:"is_like"`
}

// Dashboard aggregates site-wide counts for the read-only dashboard view.
type Dashboard struct {
	UserCount    int64 `json:"user_count"`
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
	VoteCount    int64 `json:"vote_count"`
}
