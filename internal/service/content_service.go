package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
	"okulpazar/backend/pkg/slug"
)

// maxCommentDepth deepest reply level, top-level comments are depth 0
const maxCommentDepth = 5

var (
	ErrPostOwnerRequired    = pkgerrors.Validation("Exactly one of brand, campus or school must be provided")
	ErrContentDenied        = pkgerrors.Forbidden("User does not have permission to manage content for this institution")
	ErrPostNotDraft         = pkgerrors.Business("Only draft posts can be published")
	ErrPostNotPublished     = pkgerrors.Business("Post is not published")
	ErrCommentsDisabled     = pkgerrors.Business("Comments are disabled for this post")
	ErrParentOtherPost      = pkgerrors.Business("Parent comment does not belong to this post")
	ErrReplyDepthExceeded   = pkgerrors.Business("Maximum reply depth reached")
	ErrParentCommentMissing = pkgerrors.NotFound("Parent comment not found")
)

func postNotFound(id string) error {
	return pkgerrors.NotFoundf("Post not found with ID: %s", id)
}

// ContentService posts with views, reactions and threaded comments
type ContentService interface {
	CreatePost(ctx context.Context, req *dto.CreatePostRequest, actor *access.Actor) (*dto.PostResponse, error)
	GetPost(ctx context.Context, id string, actor *access.Actor) (*dto.PostResponse, error)
	PublishPost(ctx context.Context, id string, actor *access.Actor) (*dto.PostResponse, error)
	IncrementPostView(ctx context.Context, id string) error
	TogglePostLike(ctx context.Context, postID string, req *dto.ToggleLikeRequest, actor *access.Actor) (*dto.LikeResult, error)
	AddComment(ctx context.Context, postID string, req *dto.CreateCommentRequest, actor *access.Actor) (*dto.CommentResponse, error)
}

type contentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewContentService creates a ContentService
func NewContentService(repo *repository.Repository, logger *zap.Logger) ContentService {
	return &contentService{repo: repo, logger: logger, now: time.Now}
}

func (s *contentService) CreatePost(ctx context.Context, req *dto.CreatePostRequest, actor *access.Actor) (*dto.PostResponse, error) {
	owners := 0
	for _, id := range []*string{req.BrandID, req.CampusID, req.SchoolID} {
		if id != nil && *id != "" {
			owners++
		}
	}
	if owners != 1 {
		return nil, ErrPostOwnerRequired
	}

	scope, err := s.ownerScope(ctx, req.BrandID, req.CampusID, req.SchoolID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, scope, access.ManageContent) {
		return nil, ErrContentDenied
	}

	postSlug, err := slug.Unique(ctx, req.Title, s.repo.Post.ExistsBySlug)
	if err != nil {
		s.logger.Error("generate post slug failed", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}

	p := &model.Post{
		Title:         strings.TrimSpace(req.Title),
		Slug:          postSlug,
		Content:       req.Content,
		BrandID:       req.BrandID,
		CampusID:      req.CampusID,
		SchoolID:      req.SchoolID,
		AuthorID:      actor.UserID,
		Status:        model.PostStatusDraft,
		AllowComments: boolOr(req.AllowComments, true),
		IsActive:      true,
	}
	p.CreatedBy = &actor.UserID

	if err := s.repo.Post.Create(ctx, p); err != nil {
		s.logger.Error("create post failed", zap.String("slug", postSlug), zap.Error(err))
		return nil, err
	}
	return toPostResponse(p), nil
}

// GetPost drafts are only visible to actors who may manage them
func (s *contentService) GetPost(ctx context.Context, id string, actor *access.Actor) (*dto.PostResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PostStatusPublished {
		ok, err := s.canManage(ctx, p, actor)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, postNotFound(id)
		}
	}
	return toPostResponse(p), nil
}

func (s *contentService) PublishPost(ctx context.Context, id string, actor *access.Actor) (*dto.PostResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.canManage(ctx, p, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrContentDenied
	}
	if p.Status != model.PostStatusDraft {
		return nil, ErrPostNotDraft
	}

	now := s.now()
	p.Status = model.PostStatusPublished
	p.PublishedAt = &now
	p.UpdatedBy = &actor.UserID
	if err := s.repo.Post.Save(ctx, p); err != nil {
		s.logger.Error("publish post failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPostResponse(p), nil
}

func (s *contentService) IncrementPostView(ctx context.Context, id string) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != model.PostStatusPublished {
		return ErrPostNotPublished
	}
	if err := s.repo.Post.IncrementViewCount(ctx, id); err != nil {
		s.logger.Error("increment post view failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// TogglePostLike creates the reaction, switches it to another type, or
// removes it when the same type is sent again
func (s *contentService) TogglePostLike(ctx context.Context, postID string, req *dto.ToggleLikeRequest, actor *access.Actor) (*dto.LikeResult, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PostStatusPublished {
		return nil, ErrPostNotPublished
	}

	reaction := req.ReactionType
	if reaction == "" {
		reaction = model.ReactionLike
	}

	var result dto.LikeResult
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		like, err := tx.Post.GetLike(ctx, postID, actor.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Post.CreateLike(ctx, &model.PostLike{PostID: postID, UserID: actor.UserID, ReactionType: reaction}); err != nil {
				return err
			}
			result = dto.LikeResult{Liked: true, ReactionType: reaction}
			return tx.Post.AddLikeCount(ctx, postID, 1)
		case err != nil:
			return err
		}

		if like.ReactionType == reaction {
			if err := tx.Post.DeleteLike(ctx, like.LikeID); err != nil {
				return err
			}
			result = dto.LikeResult{Liked: false}
			return tx.Post.AddLikeCount(ctx, postID, -1)
		}

		result = dto.LikeResult{Liked: true, ReactionType: reaction}
		return tx.Post.UpdateLikeReaction(ctx, like.LikeID, reaction)
	})
	if err != nil {
		s.logger.Error("toggle post like failed", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	return &result, nil
}

func (s *contentService) AddComment(ctx context.Context, postID string, req *dto.CreateCommentRequest, actor *access.Actor) (*dto.CommentResponse, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PostStatusPublished {
		return nil, ErrPostNotPublished
	}
	if !p.AllowComments {
		return nil, ErrCommentsDisabled
	}

	c := &model.PostComment{
		PostID:   postID,
		UserID:   actor.UserID,
		Content:  strings.TrimSpace(req.Content),
		IsActive: true,
	}
	if req.ParentCommentID != nil && *req.ParentCommentID != "" {
		parent, err := s.repo.Post.GetComment(ctx, *req.ParentCommentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentCommentMissing
			}
			s.logger.Error("load parent comment failed", zap.String("id", *req.ParentCommentID), zap.Error(err))
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentOtherPost
		}
		if parent.Depth >= maxCommentDepth {
			return nil, ErrReplyDepthExceeded
		}
		c.ParentCommentID = &parent.CommentID
		c.Depth = parent.Depth + 1
	}
	c.CreatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Post.CreateComment(ctx, c); err != nil {
			return err
		}
		return tx.Post.AddCommentCount(ctx, postID, 1)
	})
	if err != nil {
		s.logger.Error("add comment failed", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	return &dto.CommentResponse{
		ID:              c.CommentID,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		UserID:          c.UserID,
		Content:         c.Content,
		Depth:           c.Depth,
		CreatedAt:       dto.FormatTime(&c.CreatedAt),
	}, nil
}

// ── helpers ──

func (s *contentService) load(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.repo.Post.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, postNotFound(id)
		}
		s.logger.Error("load post failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *contentService) canManage(ctx context.Context, p *model.Post, actor *access.Actor) (bool, error) {
	if actor == nil {
		return false, nil
	}
	scope, err := s.ownerScope(ctx, p.BrandID, p.CampusID, p.SchoolID)
	if err != nil {
		return false, err
	}
	scope.CreatedBy = p.AuthorID
	return access.Can(actor, scope, access.ManageContent), nil
}

// ownerScope walks up from the owning institution so brand and campus
// managers are matched too
func (s *contentService) ownerScope(ctx context.Context, brandID, campusID, schoolID *string) (access.Scope, error) {
	switch {
	case schoolID != nil && *schoolID != "":
		school, err := s.repo.Institution.GetActiveSchool(ctx, *schoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Scope{}, schoolNotFound(*schoolID)
			}
			return access.Scope{}, err
		}
		return access.SchoolScope(school), nil
	case campusID != nil && *campusID != "":
		campus, err := s.repo.Institution.GetActiveCampus(ctx, *campusID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Scope{}, ErrCampusNotFound
			}
			return access.Scope{}, err
		}
		return access.Scope{BrandID: campus.BrandID, CampusID: campus.CampusID}, nil
	case brandID != nil:
		return access.Scope{BrandID: *brandID}, nil
	}
	return access.Scope{}, nil
}

func toPostResponse(p *model.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:            p.PostID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		BrandID:       p.BrandID,
		CampusID:      p.CampusID,
		SchoolID:      p.SchoolID,
		AuthorID:      p.AuthorID,
		Status:        p.Status,
		PublishedAt:   dto.FormatTime(p.PublishedAt),
		AllowComments: p.AllowComments,
		ViewCount:     p.ViewCount,
		LikeCount:     p.LikeCount,
		CommentCount:  p.CommentCount,
	}
}
