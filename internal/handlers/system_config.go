package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetGroup returns the config entries of one group, secrets masked
// GET /api/admin/config/:group
func (h *SystemConfigHandler) GetGroup(c *gin.Context) {
	configs, err := h.configService.GetByGroup(c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}

	for i := range configs {
		if isSecretKey(configs[i].Key) {
			configs[i].Value = utils.MaskSecret(configs[i].Value)
		}
	}

	response.Success(c, configs)
}

// Update sets config values by key
// PUT /api/admin/config
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	for key, value := range req {
		if err := h.configService.Set(key, value); err != nil {
			response.Error(c, err)
			return
		}
	}

	response.Success(c, gin.H{"message": "configuration updated"})
}

func isSecretKey(key string) bool {
	return strings.Contains(key, "password") ||
		strings.Contains(key, "secret") ||
		strings.Contains(key, "server_key")
}
