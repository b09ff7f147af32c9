// pkg/handler/comment/handler.go
package comment_handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/internal/pkg/parser"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	"github.com/inkwell-cms/inkwell/pkg/service/comment"
)

// CommentRequest 是发表与修改评论的请求体，Body 为 Markdown 原文
type CommentRequest struct {
	Body string `json:"body"`
}

type ModerateRequest struct {
	Action      string `json:"action" binding:"required"`
	Description string `json:"description"`
}

// CommentResponse 评论
type CommentResponse struct {
	ID          string    `json:"id"`
	Body        string    `json:"body"`
	ContentHTML string    `json:"content_html"`
	State       string    `json:"state"`
	OwnerID     string    `json:"owner_id"`
	ArticleID   string    `json:"article_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Handler struct {
	svc     *comment.Service
	encoder *idgen.Encoder
}

func NewHandler(svc *comment.Service, encoder *idgen.Encoder) *Handler {
	return &Handler{svc: svc, encoder: encoder}
}

func (h *Handler) toResponse(cm *model.Comment) (*CommentResponse, error) {
	id, err := h.encoder.Encode(cm.ID, idgen.EntityTypeComment)
	if err != nil {
		return nil, err
	}
	ownerID, err := h.encoder.Encode(cm.OwnerID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}
	articleID, err := h.encoder.Encode(cm.ArticleID, idgen.EntityTypeArticle)
	if err != nil {
		return nil, err
	}
	html, err := parser.CommentToHTML(cm.Body)
	if err != nil {
		return nil, err
	}
	return &CommentResponse{
		ID:          id,
		Body:        cm.Body,
		ContentHTML: html,
		State:       cm.State.String(),
		OwnerID:     ownerID,
		ArticleID:   articleID,
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}, nil
}

// respondList 转换并返回评论列表
func (h *Handler) respondList(c *gin.Context, comments []*model.Comment, message string) {
	list := make([]*CommentResponse, 0, len(comments))
	for _, cm := range comments {
		item, err := h.toResponse(cm)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		list = append(list, item)
	}
	response.Success(c, list, message)
}

func (h *Handler) decode(c *gin.Context, kind idgen.EntityType, notFound string) (uint, bool) {
	id, err := h.encoder.Decode(c.Param("id"), kind)
	if err != nil {
		response.FailWithError(c, constant.NewNotFoundError("%s", notFound))
		return 0, false
	}
	return id, true
}

// ListByArticle
// @Summary      文章评论列表
// @Description  列出文章下调用者可见的评论，按发表时间正序
// @Tags         评论
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Success      200 {object} response.Response{data=[]CommentResponse}
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /articles/{id}/comments [get]
func (h *Handler) ListByArticle(c *gin.Context) {
	articleID, ok := h.decode(c, idgen.EntityTypeArticle, "文章不存在")
	if !ok {
		return
	}
	comments, err := h.svc.ListByArticle(c.Request.Context(), middleware.ActorFrom(c), articleID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondList(c, comments, "获取评论列表成功")
}

// Create
// @Summary      发表评论
// @Description  只能评论已通过审核的文章
// @Tags         评论
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Param        body body CommentRequest true "评论内容"
// @Success      201 {object} response.Response{data=CommentResponse}
// @Failure      400 {object} response.Response "评论长度不合法"
// @Failure      404 {object} response.Response "文章不存在或未通过审核"
// @Router       /articles/{id}/comments [post]
func (h *Handler) Create(c *gin.Context) {
	articleID, ok := h.decode(c, idgen.EntityTypeArticle, "文章不存在")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求体格式错误")
		return
	}
	cm, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), articleID, req.Body)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(cm)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, resp, "评论发表成功")
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeComment, "评论不存在")
	if !ok {
		return
	}
	cm, err := h.svc.GetByID(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if cm == nil {
		response.FailWithError(c, constant.NewNotFoundError("评论不存在"))
		return
	}
	resp, err := h.toResponse(cm)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "获取评论成功")
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeComment, "评论不存在")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求体格式错误")
		return
	}
	cm, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), id, req.Body)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(cm)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "评论修改成功")
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeComment, "评论不存在")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "评论已删除")
}

// ListRecent 最新评论，limit 默认 10
func (h *Handler) ListRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "limit 必须是整数")
		return
	}
	comments, err := h.svc.ListRecent(c.Request.Context(), middleware.ActorFrom(c), limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondList(c, comments, "获取最新评论成功")
}

// ListByOwner 路径参数是用户的公共ID
func (h *Handler) ListByOwner(c *gin.Context) {
	ownerID, ok := h.decode(c, idgen.EntityTypeUser, "用户不存在")
	if !ok {
		return
	}
	comments, err := h.svc.ListByOwner(c.Request.Context(), middleware.ActorFrom(c), ownerID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondList(c, comments, "获取评论列表成功")
}

func (h *Handler) ListPending(c *gin.Context) {
	comments, err := h.svc.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondList(c, comments, "获取待审核评论成功")
}

// Moderate 审核评论，refuse 时写入审核记录
func (h *Handler) Moderate(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeComment, "评论不存在")
	if !ok {
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "审核动作不能为空")
		return
	}
	cm, err := h.svc.Moderate(c.Request.Context(), middleware.ActorFrom(c), id, strings.TrimSpace(req.Action), req.Description)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(cm)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "审核完成")
}
