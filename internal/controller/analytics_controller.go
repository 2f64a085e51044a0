package controller

import (
	"coursegen_backend/internal/service"
	"coursegen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

type AnalyticsRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// @Summary 获取学习分析
// @Description 学习概览、课程进度、最近学习记录、连续学习天数和最近 7 天的学习统计
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 401 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/analytics [get]
// @Router /api/analytics [post]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	var req AnalyticsRequest
	if ctx.Request.ContentLength > 0 {
		if !bindJSON(ctx, &req) {
			return
		}
	}
	userID, ok := currentUserID(ctx, req.UserID)
	if !ok {
		return
	}

	analytics, err := c.AnalyticsService.GetAnalytics(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, "get_analytics", err)
		return
	}

	util.Success(ctx, gin.H{"analytics": analytics})
}
