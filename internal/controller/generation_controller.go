package controller

import (
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/service"
	"coursegen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GenerationController struct {
	OutlineService    *service.OutlineService
	RefinementService *service.RefinementService
	CourseService     *service.CourseService
}

func NewGenerationController(outlineService *service.OutlineService, refinementService *service.RefinementService, courseService *service.CourseService) *GenerationController {
	return &GenerationController{
		OutlineService:    outlineService,
		RefinementService: refinementService,
		CourseService:     courseService,
	}
}

type GenerateOutlineRequest struct {
	Topic             string `json:"topic" example:"Photosynthesis"`
	Context           string `json:"context" example:"for a biology exam"`
	KnowledgeLevel    string `json:"knowledge_level" example:"beginner"`
	LearningGoals     string `json:"learning_goals" example:"pass the exam"`
	PreferredDuration string `json:"preferred_duration" example:"3-5"`
	UserID            string `json:"user_id,omitempty"`
}

type EditOutlineRequest struct {
	SessionID      string         `json:"session_id"`
	UserMessage    string         `json:"user_message" example:"add a module on chlorophyll"`
	CurrentOutline *model.Outline `json:"current_outline"`
	Revision       *int           `json:"revision,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
}

type GenerateCourseRequest struct {
	SessionID       string         `json:"session_id"`
	ApprovedOutline *model.Outline `json:"approved_outline"`
	UserID          string         `json:"user_id,omitempty"`
}

// @Summary 生成课程大纲
// @Description 根据主题、背景和学习目标调用模型生成大纲，并创建生成会话
// @Tags 课程生成
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateOutlineRequest true "大纲参数"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 401 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/generate-outline [post]
func (c *GenerationController) GenerateOutline(ctx *gin.Context) {
	var req GenerateOutlineRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx, req.UserID)
	if !ok {
		return
	}

	session, err := c.OutlineService.GenerateOutline(ctx.Request.Context(), service.GenerateOutlineInput{
		UserID:            userID,
		Topic:             req.Topic,
		Context:           req.Context,
		KnowledgeLevel:    req.KnowledgeLevel,
		LearningGoals:     req.LearningGoals,
		PreferredDuration: req.PreferredDuration,
	})
	if err != nil {
		util.HandleError(ctx, "generate_outline", err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": session.ID,
		"outline":    session.Outline(),
		"revision":   session.Revision,
	})
}

// @Summary 修改课程大纲
// @Description 根据用户的自然语言反馈修改会话中保存的大纲，并追加两条对话记录
// @Tags 课程生成
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EditOutlineRequest true "修改请求"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/edit-outline [post]
func (c *GenerationController) EditOutline(ctx *gin.Context) {
	var req EditOutlineRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx, req.UserID)
	if !ok {
		return
	}
	if req.SessionID == "" {
		util.HandleError(ctx, "edit_outline", util.MissingField("session_id"))
		return
	}
	if req.CurrentOutline == nil {
		util.HandleError(ctx, "edit_outline", util.MissingField("current_outline"))
		return
	}

	result, err := c.RefinementService.EditOutline(ctx.Request.Context(), service.EditOutlineInput{
		UserID:         userID,
		SessionID:      req.SessionID,
		UserMessage:    req.UserMessage,
		CurrentOutline: req.CurrentOutline,
		Revision:       req.Revision,
	})
	if err != nil {
		util.HandleError(ctx, "edit_outline", err)
		return
	}

	util.Success(ctx, gin.H{
		"updated_outline": result.Outline,
		"revision":        result.Revision,
	})
}

// @Summary 生成完整课程
// @Description 把确认后的大纲展开为课程、模块和初始进度，会话随之结束
// @Tags 课程生成
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateCourseRequest true "确认的大纲"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/generate-course [post]
func (c *GenerationController) GenerateCourse(ctx *gin.Context) {
	var req GenerateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx, req.UserID)
	if !ok {
		return
	}
	if req.SessionID == "" {
		util.HandleError(ctx, "generate_course", util.MissingField("session_id"))
		return
	}
	if req.ApprovedOutline == nil {
		util.HandleError(ctx, "generate_course", util.MissingField("approved_outline"))
		return
	}

	result, err := c.CourseService.MaterializeCourse(ctx.Request.Context(), service.MaterializeInput{
		UserID:          userID,
		SessionID:       req.SessionID,
		ApprovedOutline: req.ApprovedOutline,
	})
	if err != nil {
		util.HandleError(ctx, "generate_course", err)
		return
	}

	util.Success(ctx, gin.H{
		"course": gin.H{
			"id":          result.Course.ID,
			"title":       result.Course.Title,
			"description": result.Course.Description,
			"content":     result.Content,
			"modules":     result.Course.Modules,
		},
	})
}

// @Summary 获取生成会话
// @Description 返回会话参数、当前大纲、状态和版本号
// @Tags 课程生成
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/sessions/{id} [get]
func (c *GenerationController) GetSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx, "")
	if !ok {
		return
	}

	session, err := c.OutlineService.GetSession(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, "get_session", err)
		return
	}

	util.Success(ctx, gin.H{"session": session})
}

// @Summary 获取会话对话记录
// @Tags 课程生成
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/sessions/{id}/conversation [get]
func (c *GenerationController) GetConversation(ctx *gin.Context) {
	userID, ok := currentUserID(ctx, "")
	if !ok {
		return
	}

	entries, err := c.OutlineService.GetConversation(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, "get_conversation", err)
		return
	}
	if entries == nil {
		entries = []model.ConversationEntry{}
	}

	util.Success(ctx, gin.H{"conversation": entries})
}
