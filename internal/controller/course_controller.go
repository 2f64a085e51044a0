package controller

import (
	"coursegen_backend/internal/service"
	"coursegen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService   *service.CourseService
	ProgressService *service.ProgressService
}

func NewCourseController(courseService *service.CourseService, progressService *service.ProgressService) *CourseController {
	return &CourseController{CourseService: courseService, ProgressService: progressService}
}

type UpdateProgressRequest struct {
	CourseID           string   `json:"course_id"`
	ProgressPercentage *float64 `json:"progress_percentage" example:"40"`
	ModuleID           string   `json:"module_id,omitempty"`
	CompletedModules   []string `json:"completed_modules,omitempty"`
	TimeSpent          *int64   `json:"time_spent,omitempty" example:"300"`
	Notes              string   `json:"notes,omitempty"`
	UserID             string   `json:"user_id,omitempty"`
}

// @Summary 更新学习进度
// @Description 百分比只增不减，学习时长累加；达到 100% 时课程标记为完成
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 401 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/update-progress [post]
func (c *CourseController) UpdateProgress(ctx *gin.Context) {
	var req UpdateProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx, req.UserID)
	if !ok {
		return
	}

	result, err := c.ProgressService.UpdateProgress(ctx.Request.Context(), service.UpdateProgressInput{
		UserID:             userID,
		CourseID:           req.CourseID,
		ProgressPercentage: req.ProgressPercentage,
		ModuleID:           req.ModuleID,
		CompletedModules:   req.CompletedModules,
		TimeSpent:          req.TimeSpent,
		Notes:              req.Notes,
	})
	if err != nil {
		util.HandleError(ctx, "update_progress", err)
		return
	}

	body := gin.H{
		"progress":         result.Progress,
		"course_completed": result.CourseCompleted,
	}
	if result.Module != nil {
		body["module_progress"] = result.Module
	}
	util.Success(ctx, body)
}

// @Summary 我的课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	userID, ok := currentUserID(ctx, "")
	if !ok {
		return
	}

	courses, err := c.CourseService.ListCourses(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, "list_courses", err)
		return
	}

	util.Success(ctx, gin.H{"courses": courses})
}

// @Summary 课程详情
// @Description 返回课程、按顺序排列的模块以及当前进度
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	userID, ok := currentUserID(ctx, "")
	if !ok {
		return
	}

	course, err := c.CourseService.GetCourse(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, "get_course", err)
		return
	}

	util.Success(ctx, gin.H{"course": course})
}
