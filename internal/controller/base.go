package controller

import (
	"coursegen_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// currentUserID 取当前登录用户；请求体中带了 user_id 时必须与登录身份一致
func currentUserID(ctx *gin.Context, bodyUserID string) (string, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return "", false
	}
	if id := strings.TrimSpace(bodyUserID); id != "" && id != user.UserID() {
		util.Unauthorized(ctx)
		return "", false
	}
	return user.UserID(), true
}

// bindJSON 请求体解析失败时返回 400
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		util.BadRequest(ctx, "invalid request body: "+err.Error())
		return false
	}
	return true
}
