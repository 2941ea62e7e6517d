package models

import "time"

// Comment is a single guestbook entry attached to one logical page of the
// site. IP, UserAgent and AnonUserID are write-only: they are captured at
// insert time and never serialized back to clients.
type Comment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Page       string    `gorm:"size:64;not null;index:idx_public_comments_page_created,priority:1" json:"page"`
	Name       string    `gorm:"size:20;not null" json:"name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_public_comments_page_created,priority:2,sort:desc" json:"created_at"`
	IP         string    `gorm:"column:ip;type:text" json:"-"`
	UserAgent  string    `gorm:"type:text" json:"-"`
	AnonUserID string    `gorm:"column:anon_user_id;size:64" json:"-"`
}

// TableName keeps the historical table name used by the first deployment.
func (Comment) TableName() string {
	return "public_comments"
}

// CommentView is the public projection of a comment.
type CommentView struct {
	ID        int64     `json:"id"`
	Page      string    `json:"page"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentListItem is a CommentView annotated with the per-request ownership
// flag used by listings.
type CommentListItem struct {
	CommentView
	IsMine bool `json:"isMine"`
}

// View returns the client-facing shape of c.
func (c *Comment) View() CommentView {
	return CommentView{
		ID:        c.ID,
		Page:      c.Page,
		Name:      c.Name,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
