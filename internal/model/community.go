package model

import "time"

// CommunityPost is a post made in a community discussion group. The post
// itself is plain CRUD data; its creation also triggers a room broadcast.
type CommunityPost struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"index;not null" json:"community_id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Title       string    `gorm:"size:255" json:"title"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
