package api

import (
	"metagen/internal/entity/converter"
	"metagen/internal/entity/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListGenerators 列出所有生成器配置
func (h *HTTPHandler) ListGenerators(c *gin.Context) {
	c.JSON(http.StatusOK, dto.GeneratorListResponse{
		Generators: converter.GeneratorsToItems(h.registry.All()),
	})
}
