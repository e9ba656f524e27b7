package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

// Repository reads and writes reel likes, comments and cached counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindActiveReel(ctx context.Context, id uuid.UUID) (*models.VideoReel, error)
	ListReelIDs(ctx context.Context) ([]uuid.UUID, error)

	InsertLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error)
	DeleteLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error)
	HasLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error)
	LikedBy(ctx context.Context, sessionID string) ([]uuid.UUID, error)
	LikedAmong(ctx context.Context, sessionID string, ids []uuid.UUID) ([]uuid.UUID, error)

	CountLikes(ctx context.Context, reelID uuid.UUID) (int, error)
	CountComments(ctx context.Context, reelID uuid.UUID) (int, error)
	CountsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ReelCounts, error)
	UpdateCounters(ctx context.Context, reelID uuid.UUID, likes, comments int) error

	ListComments(ctx context.Context, reelID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.VideoReelComment, error)
	InsertComment(ctx context.Context, comment *models.VideoReelComment) error
	FindComment(ctx context.Context, id uuid.UUID) (*models.VideoReelComment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error

	DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveReel(ctx context.Context, id uuid.UUID) (*models.VideoReel, error) {
	var reel models.VideoReel
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&reel).Error; err != nil {
		return nil, err
	}
	return &reel, nil
}

func (r *repository) ListReelIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.VideoReel{}).Order("order_index ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertLike reports false when the session already liked the reel.
func (r *repository) InsertLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error) {
	like := &models.VideoReelLike{VideoReelID: reelID, SessionID: sessionID, CreatedAt: time.Now().UTC()}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "video_reel_id"}, {Name: "session_id"}}, DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("video_reel_id = ? AND session_id = ?", reelID, sessionID).
		Delete(&models.VideoReelLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) HasLike(ctx context.Context, reelID uuid.UUID, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VideoReelLike{}).
		Where("video_reel_id = ? AND session_id = ?", reelID, sessionID).
		Count(&count).Error
	return count > 0, err
}

// LikedBy returns active reels liked by the session, most recent like first.
func (r *repository) LikedBy(ctx context.Context, sessionID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.VideoReelLike{}).
		Joins("JOIN video_reels ON video_reels.id = video_reel_likes.video_reel_id").
		Where("video_reel_likes.session_id = ? AND video_reels.is_active = ?", sessionID, true).
		Order("video_reel_likes.created_at DESC").
		Pluck("video_reel_likes.video_reel_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) LikedAmong(ctx context.Context, sessionID string, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.VideoReelLike{}).
		Where("session_id = ? AND video_reel_id IN ?", sessionID, ids).
		Pluck("video_reel_id", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CountLikes(ctx context.Context, reelID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VideoReelLike{}).Where("video_reel_id = ?", reelID).Count(&count).Error
	return int(count), err
}

func (r *repository) CountComments(ctx context.Context, reelID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VideoReelComment{}).Where("video_reel_id = ?", reelID).Count(&count).Error
	return int(count), err
}

type groupCount struct {
	ReelID uuid.UUID
	Total  int
}

// CountsFor counts presence rows of the given reels; missing reels are absent.
func (r *repository) CountsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ReelCounts, error) {
	out := make(map[uuid.UUID]ReelCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var existing []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.VideoReel{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	for _, id := range existing {
		out[id] = ReelCounts{ReelID: id}
	}

	var likes []groupCount
	err := r.db.WithContext(ctx).
		Model(&models.VideoReelLike{}).
		Select("video_reel_id AS reel_id, COUNT(*) AS total").
		Where("video_reel_id IN ?", ids).
		Group("video_reel_id").
		Scan(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		if c, ok := out[l.ReelID]; ok {
			c.Likes = l.Total
			out[l.ReelID] = c
		}
	}

	var comments []groupCount
	err = r.db.WithContext(ctx).
		Model(&models.VideoReelComment{}).
		Select("video_reel_id AS reel_id, COUNT(*) AS total").
		Where("video_reel_id IN ?", ids).
		Group("video_reel_id").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if rc, ok := out[c.ReelID]; ok {
			rc.Comments = c.Total
			out[c.ReelID] = rc
		}
	}
	return out, nil
}

func (r *repository) UpdateCounters(ctx context.Context, reelID uuid.UUID, likes, comments int) error {
	return r.db.WithContext(ctx).
		Model(&models.VideoReel{}).
		Where("id = ?", reelID).
		UpdateColumns(map[string]any{"likes_count": likes, "comments_count": comments}).Error
}

// ListComments pages newest-first, returning up to limit rows.
func (r *repository) ListComments(ctx context.Context, reelID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.VideoReelComment, error) {
	q := r.db.WithContext(ctx).Where("video_reel_id = ?", reelID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.VideoReelComment
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) InsertComment(ctx context.Context, comment *models.VideoReelComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repository) FindComment(ctx context.Context, id uuid.UUID) (*models.VideoReelComment, error) {
	var c models.VideoReelComment
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VideoReelComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DailyTotals counts likes and comments created in [from, to) per reel.
func (r *repository) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	ids, err := r.ListReelIDs(ctx)
	if err != nil {
		return nil, err
	}
	byReel := make(map[uuid.UUID]*DailyTotal, len(ids))
	out := make([]DailyTotal, len(ids))
	for i, id := range ids {
		out[i] = DailyTotal{ReelID: id}
		byReel[id] = &out[i]
	}

	var likes []groupCount
	err = r.db.WithContext(ctx).
		Model(&models.VideoReelLike{}).
		Select("video_reel_id AS reel_id, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("video_reel_id").
		Scan(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		if t, ok := byReel[l.ReelID]; ok {
			t.Likes = l.Total
		}
	}

	var comments []groupCount
	err = r.db.WithContext(ctx).
		Model(&models.VideoReelComment{}).
		Select("video_reel_id AS reel_id, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("video_reel_id").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if t, ok := byReel[c.ReelID]; ok {
			t.Comments = c.Total
		}
	}
	return out, nil
}
