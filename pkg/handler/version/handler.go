package version

import (
	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/pkg/version"
	"github.com/inkwell-cms/inkwell/pkg/response"
)

// Handler 版本信息处理器
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetVersion 获取版本信息
// @Summary      获取版本信息
// @Tags         辅助工具
// @Produce      json
// @Success      200  {object}  response.Response{data=version.BuildInfo}  "版本信息"
// @Router       /version [get]
func (h *Handler) GetVersion(c *gin.Context) {
	response.Success(c, version.Get(), "获取版本信息成功")
}
