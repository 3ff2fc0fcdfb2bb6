package handler

import (
	"net/http"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditHandler lets the admin inspect the audit trail of mutating calls.
type AuditHandler struct {
	DB *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{DB: db}
}

// ListLogs returns one page of audit log entries, newest first.
func (h *AuditHandler) ListLogs(c *gin.Context) {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "pageSize", 20)

	var logs []models.AuditLog
	err := h.DB.WithContext(c.Request.Context()).
		Order("id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list audit logs")
		return
	}

	util.Success(c, util.Response{
		"logs": logs,
		"page": page,
		"size": size,
	})
}
