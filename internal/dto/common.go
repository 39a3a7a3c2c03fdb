package dto

import "time"

// PageRequest zero-based paging with pass-through sort
type PageRequest struct {
	Page    int    `form:"page"     json:"page"     binding:"omitempty,min=0"`
	Size    int    `form:"size"     json:"size"     binding:"omitempty,min=1,max=200"`
	SortBy  string `form:"sort_by"  json:"sort_by"  binding:"omitempty,max=40"`
	SortDir string `form:"sort_dir" json:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ItemMessage one per-item error or warning of a bulk operation
type ItemMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Date / timestamp wire formats
const (
	DateLayout = time.DateOnly
	TimeLayout = "15:04"
)

// FormatTime RFC3339 or "" for nil
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// FormatDate YYYY-MM-DD or "" for nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
