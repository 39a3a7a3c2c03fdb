package model

import "time"

// Post statuses
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
	PostStatusArchived  = "ARCHIVED"
)

// Reaction types
const (
	ReactionLike       = "LIKE"
	ReactionLove       = "LOVE"
	ReactionCelebrate  = "CELEBRATE"
	ReactionInsightful = "INSIGHTFUL"
)

// Post posts: institution news / announcements
type Post struct {
	PostID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"post_id"`
	Title         string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Slug          string     `gorm:"type:varchar(160);not null;uniqueIndex"         json:"slug"`
	Content       string     `gorm:"type:text;not null"                             json:"content"`
	BrandID       *string    `gorm:"type:uuid"                                      json:"brand_id,omitempty"`
	CampusID      *string    `gorm:"type:uuid"                                      json:"campus_id,omitempty"`
	SchoolID      *string    `gorm:"type:uuid;index"                                json:"school_id,omitempty"`
	AuthorID      string     `gorm:"type:uuid;not null"                             json:"author_id"`
	Status        string     `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	PublishedAt   *time.Time `                                                      json:"published_at,omitempty"`
	AllowComments bool       `gorm:"not null;default:true"                          json:"allow_comments"`
	ViewCount     int64      `gorm:"not null;default:0"                             json:"view_count"`
	LikeCount     int64      `gorm:"not null;default:0"                             json:"like_count"`
	CommentCount  int64      `gorm:"not null;default:0"                             json:"comment_count"`
	IsActive      bool       `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

func (Post) TableName() string { return "posts" }

// PostComment post_comments; ParentCommentID set for replies
type PostComment struct {
	CommentID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	PostID          string  `gorm:"type:uuid;not null;index"                       json:"post_id"`
	ParentCommentID *string `gorm:"type:uuid"                                      json:"parent_comment_id,omitempty"`
	UserID          string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Content         string  `gorm:"type:text;not null"                             json:"content"`
	Depth           int     `gorm:"not null;default:0"                             json:"depth"`
	IsActive        bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (PostComment) TableName() string { return "post_comments" }

// PostLike post_likes; unique per (post, user)
type PostLike struct {
	LikeID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"like_id"`
	PostID       string    `gorm:"type:uuid;not null;uniqueIndex:uk_post_like"    json:"post_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:uk_post_like"    json:"user_id"`
	ReactionType string    `gorm:"type:varchar(20);not null;default:'LIKE'"       json:"reaction_type"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (PostLike) TableName() string { return "post_likes" }
