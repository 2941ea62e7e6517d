package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/airings/pagecomments/config"
	"github.com/airings/pagecomments/models"
	"github.com/airings/pagecomments/utils"
)

const (
	maxPageLen    = 64
	maxNameLen    = 20
	maxContentLen = 800
	maxTokenLen   = 64
	listLimit     = 50

	defaultName = "匿名"

	errBadJSON  = "JSON 格式不正确"
	errBadID    = "评论 id 无效"
	errInternal = "服务异常"
	// Not-found and not-yours answer identically so callers cannot probe
	// for other users' comment ids.
	errNotOwner = "无权操作或评论不存在"
)

// CommentController implements the per-page guestbook CRUD surface.
// Ownership of a row is carried entirely by the opaque anonUserId token the
// client generated at write time; matching it is the whole authorization
// model, there is no account binding behind it.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance. db may be
// nil when no DSN was resolvable at boot; handlers then answer the
// configuration error per request instead of crashing the process.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// List returns up to 50 comments for one page, newest first, each annotated
// with whether the caller's token owns it.
func (cc *CommentController) List(ctx *gin.Context) {
	if !cc.ready(ctx) {
		return
	}

	page := strings.TrimSpace(ctx.Query("page"))
	if page == "" || utf8.RuneCountInString(page) > maxPageLen {
		utils.Fail(ctx, http.StatusBadRequest, "page 参数缺失或过长")
		return
	}
	caller := strings.TrimSpace(ctx.Query("anonUserId"))

	var rows []models.Comment
	err := cc.db.Where("page = ?", page).
		Order("created_at DESC, id DESC").
		Limit(listLimit).
		Find(&rows).Error
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, errInternal)
		return
	}

	items := make([]models.CommentListItem, 0, len(rows))
	for i := range rows {
		items = append(items, models.CommentListItem{
			CommentView: rows[i].View(),
			// An empty caller token owns nothing, including legacy rows
			// stored before the token column existed.
			IsMine: caller != "" && rows[i].AnonUserID == caller,
		})
	}
	utils.OK(ctx, gin.H{"comments": items})
}

// Create appends one comment, capturing the client address and user agent as
// write-only telemetry alongside the ownership token.
func (cc *CommentController) Create(ctx *gin.Context) {
	if !cc.ready(ctx) {
		return
	}

	var req struct {
		Page       string `json:"page"`
		Name       string `json:"name"`
		Content    string `json:"content"`
		AnonUserID string `json:"anonUserId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, errBadJSON)
		return
	}

	page := strings.TrimSpace(req.Page)
	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		name = defaultName
	}
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	token := strings.TrimSpace(req.AnonUserID)

	if msg, ok := validateComment(page, name, content, token); !ok {
		utils.Fail(ctx, http.StatusBadRequest, msg)
		return
	}

	comment := models.Comment{
		Page:       page,
		Name:       name,
		Content:    content,
		IP:         ctx.ClientIP(),
		UserAgent:  ctx.Request.UserAgent(),
		AnonUserID: token,
	}
	if err := cc.db.Create(&comment).Error; err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, errInternal)
		return
	}

	utils.OK(ctx, gin.H{"comment": comment.View()})
}

// Update rewrites the content of one comment when the supplied token matches
// the stored one. The match-and-mutate is a single conditional statement, so
// racing callers cannot both succeed against the same row.
func (cc *CommentController) Update(ctx *gin.Context) {
	if !cc.ready(ctx) {
		return
	}

	id, ok := resolveCommentID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, errBadID)
		return
	}

	var req struct {
		Content    string `json:"content"`
		AnonUserID string `json:"anonUserId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, errBadJSON)
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	token := strings.TrimSpace(req.AnonUserID)
	if msg, ok := validateMutation(content, token); !ok {
		utils.Fail(ctx, http.StatusBadRequest, msg)
		return
	}

	res := cc.db.Model(&models.Comment{}).
		Where("id = ? AND anon_user_id = ?", id, token).
		Update("content", content)
	if res.Error != nil {
		utils.Fail(ctx, http.StatusInternalServerError, errInternal)
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, http.StatusForbidden, errNotOwner)
		return
	}

	var comment models.Comment
	if err := cc.db.First(&comment, id).Error; err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, errInternal)
		return
	}
	utils.OK(ctx, gin.H{"comment": comment.View()})
}

// Delete permanently removes one comment under the same token-matching rule
// as Update.
func (cc *CommentController) Delete(ctx *gin.Context) {
	if !cc.ready(ctx) {
		return
	}

	id, ok := resolveCommentID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, errBadID)
		return
	}

	var req struct {
		AnonUserID string `json:"anonUserId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, errBadJSON)
		return
	}

	token := strings.TrimSpace(req.AnonUserID)
	if token == "" || utf8.RuneCountInString(token) > maxTokenLen {
		utils.Fail(ctx, http.StatusBadRequest, "anonUserId 参数缺失或过长")
		return
	}

	res := cc.db.Where("id = ? AND anon_user_id = ?", id, token).
		Delete(&models.Comment{})
	if res.Error != nil {
		utils.Fail(ctx, http.StatusInternalServerError, errInternal)
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, http.StatusForbidden, errNotOwner)
		return
	}

	utils.OK(ctx, nil)
}

// ready guards every handler: with no resolvable DSN at boot there is no
// store, and the contract calls for a per-request 500 rather than a crash.
func (cc *CommentController) ready(ctx *gin.Context) bool {
	if cc.db == nil {
		utils.Fail(ctx, http.StatusInternalServerError, config.ErrNoDatabaseURL.Error())
		return false
	}
	return true
}

// validateComment checks create input in a fixed order so each failure keeps
// its distinct message. Lengths are counted in runes, the content is
// predominantly CJK.
func validateComment(page, name, content, token string) (string, bool) {
	if page == "" || utf8.RuneCountInString(page) > maxPageLen {
		return "page 参数缺失或过长", false
	}
	if content == "" {
		return "评论内容不能为空", false
	}
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLen {
		return fmt.Sprintf("昵称长度需 1-%d", maxNameLen), false
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return fmt.Sprintf("评论内容最多 %d 字", maxContentLen), false
	}
	if token == "" || utf8.RuneCountInString(token) > maxTokenLen {
		return "anonUserId 参数缺失或过长", false
	}
	return "", true
}

// validateMutation covers the update path; page and name are immutable after
// creation and never revalidated.
func validateMutation(content, token string) (string, bool) {
	if content == "" {
		return "评论内容不能为空", false
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return fmt.Sprintf("评论内容最多 %d 字", maxContentLen), false
	}
	if token == "" || utf8.RuneCountInString(token) > maxTokenLen {
		return "anonUserId 参数缺失或过长", false
	}
	return "", true
}

// resolveCommentID extracts the target comment id. The trailing path segment
// wins; the id query parameter is the fallback for clients that cannot
// shape the URL. Only positive integers are accepted.
func resolveCommentID(ctx *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(ctx.Param("id"))
	if raw == "" {
		raw = strings.TrimSpace(ctx.Query("id"))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
