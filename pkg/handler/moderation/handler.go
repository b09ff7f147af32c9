/*
 * @Description: 审核日志接口
 * @Author: inkwell
 * @Date: 2026-03-09 17:08:13
 * @LastEditTime: 2026-10-14 10:55:37
 * @LastEditors: inkwell
 */

// Package moderation_handler 暴露审核日志的查询、统计和报表接口。
package moderation_handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
	"github.com/inkwell-cms/inkwell/pkg/handler/moderation/dto"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	"github.com/inkwell-cms/inkwell/pkg/service/moderation"
)

type StatisticsResponse struct {
	ByType          map[model.ActionType]int64 `json:"by_type"`
	Total           int64                      `json:"total"`
	PendingArticles int64                      `json:"pending_articles"`
	PendingComments int64                      `json:"pending_comments"`
}

type ModeratorStatisticsResponse struct {
	ModeratorID string                     `json:"moderator_id"`
	Nickname    string                     `json:"nickname"`
	ByType      map[model.ActionType]int64 `json:"by_type"`
	Total       int64                      `json:"total"`
}

type ModeratorEntryResponse struct {
	ModeratorID string `json:"moderator_id"`
	Nickname    string `json:"nickname"`
	Count       int64  `json:"count"`
}

// ReportResponse 中的起止时间按 "2006-01-02 15:04:05" 格式原样返回
type ReportResponse struct {
	Start       string                     `json:"start"`
	End         string                     `json:"end"`
	ByType      map[model.ActionType]int64 `json:"by_type"`
	Total       int64                      `json:"total"`
	ByModerator []ModeratorEntryResponse   `json:"by_moderator"`
}

type Handler struct {
	svc     *moderation.Service
	encoder *idgen.Encoder
}

func NewHandler(svc *moderation.Service, encoder *idgen.Encoder) *Handler {
	return &Handler{svc: svc, encoder: encoder}
}

func (h *Handler) respondRecords(c *gin.Context, records []*model.ModerationRecord) {
	list, err := dto.ToRecordList(records, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取审核记录成功")
}

func (h *Handler) decode(c *gin.Context, kind idgen.EntityType, notFound string) (uint, bool) {
	id, err := h.encoder.Decode(c.Param("id"), kind)
	if err != nil {
		response.FailWithError(c, constant.NewNotFoundError("%s", notFound))
		return 0, false
	}
	return id, true
}

// History
// @Summary      审核记录
// @Description  按类型、审核员和时间范围筛选审核记录，按时间倒序
// @Tags         审核
// @Security     BearerAuth
// @Produce      json
// @Param        type query string false "记录类型"
// @Param        moderator query string false "审核员公共ID"
// @Param        start query string false "开始时间 2006-01-02 15:04:05"
// @Param        end query string false "结束时间 2006-01-02 15:04:05"
// @Param        limit query int false "最多返回条数"
// @Success      200 {object} response.Response{data=[]dto.RecordResponse}
// @Failure      403 {object} response.Response "没有权限"
// @Router       /moderation/history [get]
func (h *Handler) History(c *gin.Context) {
	// 先校验角色，无权限的请求不论参数是否合法都返回 403
	if err := h.svc.AuthorizeHistory(c.Request.Context(), middleware.ActorFrom(c)); err != nil {
		response.FailWithError(c, err)
		return
	}

	var filter repository.ModerationFilter
	if raw := c.Query("type"); raw != "" {
		t, err := model.ParseActionType(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.ActionType = &t
	}
	if raw := c.Query("moderator"); raw != "" {
		moderatorID, err := h.encoder.Decode(raw, idgen.EntityTypeUser)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		filter.ModeratorID = &moderatorID
	}
	if raw := c.Query("start"); raw != "" {
		from, err := moderation.ParseReportTime(raw)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		filter.Period.From = from
	}
	if raw := c.Query("end"); raw != "" {
		to, err := moderation.ParseReportTime(raw)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		filter.Period.To = to.Add(time.Second - time.Nanosecond)
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.Fail(c, http.StatusBadRequest, "limit 必须是非负整数")
			return
		}
		filter.Limit = limit
	}

	records, err := h.svc.History(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

// Recent 最近的审核记录，limit 默认 10，最大 100
func (h *Handler) Recent(c *gin.Context) {
	if err := h.svc.AuthorizeHistory(c.Request.Context(), middleware.ActorFrom(c)); err != nil {
		response.FailWithError(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "limit 必须是整数")
		return
	}
	records, err := h.svc.RecentActions(c.Request.Context(), middleware.ActorFrom(c), limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

// OpenReports
// @Summary      待处理的举报
// @Description  被举报账户仍未封禁的举报记录，按时间倒序
// @Tags         审核
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.RecordResponse}
// @Failure      403 {object} response.Response "没有权限"
// @Router       /moderation/reports/open [get]
func (h *Handler) OpenReports(c *gin.Context) {
	records, err := h.svc.OpenReports(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

func (h *Handler) ArticleHistory(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeArticle, "文章不存在")
	if !ok {
		return
	}
	records, err := h.svc.ArticleHistory(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

func (h *Handler) CommentHistory(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeComment, "评论不存在")
	if !ok {
		return
	}
	records, err := h.svc.CommentHistory(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

func (h *Handler) UserHistory(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeUser, "用户不存在")
	if !ok {
		return
	}
	records, err := h.svc.UserHistory(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecords(c, records)
}

// Statistics 全站审核统计，仅管理员
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, StatisticsResponse{
		ByType:          stats.ByType,
		Total:           stats.Total,
		PendingArticles: stats.PendingArticles,
		PendingComments: stats.PendingComments,
	}, "获取审核统计成功")
}

func (h *Handler) ModeratorStatistics(c *gin.Context) {
	id, ok := h.decode(c, idgen.EntityTypeUser, "用户不存在")
	if !ok {
		return
	}
	stats, err := h.svc.ModeratorStatistics(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, ModeratorStatisticsResponse{
		ModeratorID: c.Param("id"),
		Nickname:    stats.Nickname,
		ByType:      stats.ByType,
		Total:       stats.Total,
	}, "获取审核员统计成功")
}

// Report
// @Summary      审核报表
// @Description  统计 [start, end] 闭区间内的审核记录，时间格式为 2006-01-02 15:04:05（UTC）
// @Tags         审核
// @Security     BearerAuth
// @Produce      json
// @Param        start query string true "开始时间"
// @Param        end query string true "结束时间"
// @Success      200 {object} response.Response{data=ReportResponse}
// @Failure      400 {object} response.Response "时间格式错误或开始晚于结束"
// @Failure      403 {object} response.Response "仅管理员可用"
// @Router       /moderation/report [get]
func (h *Handler) Report(c *gin.Context) {
	report, err := h.svc.GenerateReport(c.Request.Context(), middleware.ActorFrom(c), c.Query("start"), c.Query("end"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	entries := make([]ModeratorEntryResponse, 0, len(report.ByModerator))
	for _, e := range report.ByModerator {
		moderatorID, err := h.encoder.Encode(e.ModeratorID, idgen.EntityTypeUser)
		if err != nil {
			response.FailWithError(c, err)
			return
		}
		entries = append(entries, ModeratorEntryResponse{ModeratorID: moderatorID, Nickname: e.Nickname, Count: e.Count})
	}
	response.Success(c, ReportResponse{
		Start:       report.Start.Format(moderation.ReportTimeLayout),
		End:         report.End.Format(moderation.ReportTimeLayout),
		ByType:      report.ByType,
		Total:       report.Total,
		ByModerator: entries,
	}, "生成报表成功")
}
