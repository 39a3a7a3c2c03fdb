package dto

// ── Posts ──

// CreatePostRequest exactly one of the owner ids is expected
type CreatePostRequest struct {
	Title         string  `json:"title"          binding:"required,min=3,max=200"`
	Content       string  `json:"content"        binding:"required"`
	BrandID       *string `json:"brand_id"       binding:"omitempty,uuid"`
	CampusID      *string `json:"campus_id"      binding:"omitempty,uuid"`
	SchoolID      *string `json:"school_id"      binding:"omitempty,uuid"`
	AllowComments *bool   `json:"allow_comments"`
}

// PostResponse post view
type PostResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Content       string  `json:"content"`
	BrandID       *string `json:"brand_id,omitempty"`
	CampusID      *string `json:"campus_id,omitempty"`
	SchoolID      *string `json:"school_id,omitempty"`
	AuthorID      string  `json:"author_id"`
	Status        string  `json:"status"`
	PublishedAt   string  `json:"published_at,omitempty"`
	AllowComments bool    `json:"allow_comments"`
	ViewCount     int64   `json:"view_count"`
	LikeCount     int64   `json:"like_count"`
	CommentCount  int64   `json:"comment_count"`
}

// ToggleLikeRequest reaction defaults to LIKE
type ToggleLikeRequest struct {
	ReactionType string `json:"reaction_type" binding:"omitempty,oneof=LIKE LOVE CELEBRATE INSIGHTFUL"`
}

// LikeResult state after a toggle
type LikeResult struct {
	Liked        bool   `json:"liked"`
	ReactionType string `json:"reaction_type,omitempty"`
}

// CreateCommentRequest comment or reply
type CreateCommentRequest struct {
	Content         string  `json:"content"           binding:"required,max=5000"`
	ParentCommentID *string `json:"parent_comment_id" binding:"omitempty,uuid"`
}

// CommentResponse comment view
type CommentResponse struct {
	ID              string  `json:"id"`
	PostID          string  `json:"post_id"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
	UserID          string  `json:"user_id"`
	Content         string  `json:"content"`
	Depth           int     `json:"depth"`
	CreatedAt       string  `json:"created_at"`
}
