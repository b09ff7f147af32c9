// pkg/handler/article/handler.go
package article_handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/internal/pkg/parser"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	"github.com/inkwell-cms/inkwell/pkg/service/article"
	"github.com/inkwell-cms/inkwell/pkg/service/comment"
)

// 列表中摘要的最大长度（字符）
const excerptRunes = 160

// ArticleRequest 是创建和修改文章的请求体
type ArticleRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Visibility string `json:"visibility"`
}

// ModerateRequest 是审核请求体，refuse 时必须填写 description
type ModerateRequest struct {
	Action      string `json:"action" binding:"required"`
	Description string `json:"description"`
}

// ArticleResponse 文章详情
type ArticleResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	ContentHTML  string    `json:"content_html,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Visibility   string    `json:"visibility"`
	State        string    `json:"state"`
	OwnerID      string    `json:"owner_id"`
	CommentCount *int64    `json:"comment_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ArticleListResponse 分页列表
type ArticleListResponse struct {
	List     []*ArticleResponse `json:"list"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// Handler 文章相关接口
type Handler struct {
	svc        *article.Service
	commentSvc *comment.Service
	encoder    *idgen.Encoder
}

func NewHandler(svc *article.Service, commentSvc *comment.Service, encoder *idgen.Encoder) *Handler {
	return &Handler{svc: svc, commentSvc: commentSvc, encoder: encoder}
}

// toResponse 转换为响应结构；withHTML 为 true 时渲染正文，否则只生成摘要
func (h *Handler) toResponse(a *model.Article, withHTML bool) (*ArticleResponse, error) {
	id, err := h.encoder.Encode(a.ID, idgen.EntityTypeArticle)
	if err != nil {
		return nil, err
	}
	ownerID, err := h.encoder.Encode(a.OwnerID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}
	resp := &ArticleResponse{
		ID:         id,
		Title:      a.Title,
		Body:       a.Body,
		Visibility: a.Visibility.String(),
		State:      a.State.String(),
		OwnerID:    ownerID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if withHTML {
		html, err := parser.ArticleToHTML(a.Body)
		if err != nil {
			return nil, err
		}
		resp.ContentHTML = html
	} else {
		resp.Excerpt = parser.Excerpt(a.Body, excerptRunes)
	}
	return resp, nil
}

func (h *Handler) toList(articles []*model.Article) ([]*ArticleResponse, error) {
	list := make([]*ArticleResponse, 0, len(articles))
	for _, a := range articles {
		item, err := h.toResponse(a, false)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}

// articleID 解码路径中的文章 ID，无法解码的 ID 视为文章不存在
func (h *Handler) articleID(c *gin.Context) (uint, bool) {
	id, err := h.encoder.Decode(c.Param("id"), idgen.EntityTypeArticle)
	if err != nil {
		response.FailWithError(c, constant.NewNotFoundError("文章不存在"))
		return 0, false
	}
	return id, true
}

// List
// @Summary      文章列表
// @Description  按状态和作者筛选调用者可见的文章，按创建时间倒序分页
// @Tags         文章
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(20)
// @Param        state query string false "审核状态"
// @Param        owner query string false "作者的公共ID"
// @Success      200 {object} response.Response{data=ArticleListResponse}
// @Router       /articles [get]
func (h *Handler) List(c *gin.Context) {
	var params article.ListParams
	if err := c.ShouldBindQuery(&params.PageQuery); err != nil {
		response.Fail(c, http.StatusBadRequest, "分页参数无效")
		return
	}
	if raw := c.Query("state"); raw != "" {
		state, err := model.ParseContentState(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		params.State = &state
	}
	if raw := c.Query("owner"); raw != "" {
		ownerID, err := h.encoder.Decode(raw, idgen.EntityTypeUser)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		params.OwnerID = &ownerID
	}

	result, err := h.svc.List(c.Request.Context(), middleware.ActorFrom(c), params)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := h.toList(result.Items)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	page, size := params.Normalize()
	response.Success(c, ArticleListResponse{List: list, Total: result.Total, Page: page, PageSize: size}, "获取文章列表成功")
}

// Search 按标题搜索
func (h *Handler) Search(c *gin.Context) {
	articles, err := h.svc.Search(c.Request.Context(), middleware.ActorFrom(c), c.Query("q"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := h.toList(articles)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "搜索成功")
}

// Create
// @Summary      创建文章
// @Tags         文章
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body ArticleRequest true "文章内容"
// @Success      201 {object} response.Response{data=ArticleResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "账户已被封禁"
// @Router       /articles [post]
func (h *Handler) Create(c *gin.Context) {
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求体格式错误")
		return
	}
	a, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), article.CreateParams{
		Title:      req.Title,
		Body:       req.Body,
		Visibility: req.Visibility,
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(a, true)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, resp, "文章创建成功")
}

// Get 文章详情，附带渲染后的正文和已通过评论数
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a, err := h.svc.GetByID(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if a == nil {
		response.FailWithError(c, constant.NewNotFoundError("文章不存在"))
		return
	}

	resp, err := h.toResponse(a, true)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if a.IsAccepted() {
		count, err := h.commentSvc.CountByArticle(ctx, a.ID)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		resp.CommentCount = &count
	}
	response.Success(c, resp, "获取文章成功")
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求体格式错误")
		return
	}
	a, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), id, article.UpdateParams{
		Title:      req.Title,
		Body:       req.Body,
		Visibility: req.Visibility,
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(a, true)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "文章修改成功")
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "文章已删除")
}

// ListByOwner 列出某个用户的文章，路径参数是用户的公共ID
func (h *Handler) ListByOwner(c *gin.Context) {
	ownerID, err := h.encoder.Decode(c.Param("id"), idgen.EntityTypeUser)
	if err != nil {
		response.FailWithError(c, constant.NewNotFoundError("用户不存在"))
		return
	}
	articles, err := h.svc.ListByOwner(c.Request.Context(), middleware.ActorFrom(c), ownerID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := h.toList(articles)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取文章列表成功")
}

// ListPending 待审核队列，最早提交的在前
func (h *Handler) ListPending(c *gin.Context) {
	articles, err := h.svc.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := h.toList(articles)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取待审核文章成功")
}

// Moderate
// @Summary      审核文章
// @Description  action 为 accept、refuse 或 erase；refuse 会写入一条审核记录
// @Tags         审核
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Param        body body ModerateRequest true "审核动作"
// @Success      200 {object} response.Response{data=ArticleResponse}
// @Failure      403 {object} response.Response "没有审核权限"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /moderation/articles/{id} [post]
func (h *Handler) Moderate(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "审核动作不能为空")
		return
	}
	a, err := h.svc.Moderate(c.Request.Context(), middleware.ActorFrom(c), id, strings.TrimSpace(req.Action), req.Description)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	resp, err := h.toResponse(a, false)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "审核完成")
}

// Stats 返回各审核状态的文章数量
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	actor := middleware.ActorFrom(c)
	counts := make(map[string]int64, 4)
	for _, state := range []model.ContentState{model.ContentStatePending, model.ContentStateAccepted, model.ContentStateRefused, model.ContentStateErased} {
		n, err := h.svc.Count(ctx, actor, &state)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		counts[state.String()] = n
	}
	response.Success(c, counts, "获取文章统计成功")
}
