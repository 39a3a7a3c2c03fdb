package repository

import (
	"context"

	"gorm.io/gorm"

	"okulpazar/backend/internal/model"
)

// PostRepository posts, comments and likes
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetActiveByID(ctx context.Context, id string) (*model.Post, error)
	Save(ctx context.Context, p *model.Post) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// counters are changed with UPDATE … SET x = x + delta only
	IncrementViewCount(ctx context.Context, postID string) error
	AddLikeCount(ctx context.Context, postID string, delta int) error
	AddCommentCount(ctx context.Context, postID string, delta int) error

	GetLike(ctx context.Context, postID, userID string) (*model.PostLike, error)
	CreateLike(ctx context.Context, like *model.PostLike) error
	UpdateLikeReaction(ctx context.Context, likeID, reaction string) error
	DeleteLike(ctx context.Context, likeID string) error

	GetComment(ctx context.Context, id string) (*model.PostComment, error)
	CreateComment(ctx context.Context, c *model.PostComment) error
}

type postRepo struct {
	db *gorm.DB
}

// NewPostRepo creates a PostRepository
func NewPostRepo(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepo) GetActiveByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save leaves the counter columns untouched
func (r *postRepo) Save(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).
		Omit("view_count", "like_count", "comment_count").
		Save(p).Error
}

func (r *postRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&model.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepo) addCounter(ctx context.Context, postID, column string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("post_id = ?", postID).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
}

func (r *postRepo) IncrementViewCount(ctx context.Context, postID string) error {
	return r.addCounter(ctx, postID, "view_count", 1)
}

func (r *postRepo) AddLikeCount(ctx context.Context, postID string, delta int) error {
	return r.addCounter(ctx, postID, "like_count", delta)
}

func (r *postRepo) AddCommentCount(ctx context.Context, postID string, delta int) error {
	return r.addCounter(ctx, postID, "comment_count", delta)
}

func (r *postRepo) GetLike(ctx context.Context, postID, userID string) (*model.PostLike, error) {
	var like model.PostLike
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *postRepo) CreateLike(ctx context.Context, like *model.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postRepo) UpdateLikeReaction(ctx context.Context, likeID, reaction string) error {
	return r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("like_id = ?", likeID).
		Update("reaction_type", reaction).Error
}

func (r *postRepo) DeleteLike(ctx context.Context, likeID string) error {
	return r.db.WithContext(ctx).
		Where("like_id = ?", likeID).
		Delete(&model.PostLike{}).Error
}

func (r *postRepo) GetComment(ctx context.Context, id string) (*model.PostComment, error) {
	var c model.PostComment
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND is_active = ?", id, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postRepo) CreateComment(ctx context.Context, c *model.PostComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}
