package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves admin CRUD for transaction categories and goal
// categories. Category edits are an administrative concern; the ledger
// treats categories as immutable once referenced.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// ---------- transaction categories ----------

type categoryReq struct {
	Name      string `json:"name" binding:"required,max=64"`
	IsExpense *bool  `json:"isexpense" binding:"required"`
}

// CreateCategory adds a transaction category with its expense flag.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Category{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category already exists")
		return
	}

	category := models.Category{Name: req.Name, IsExpense: *req.IsExpense}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}
	util.Created(c, util.Response{"category": category})
}

// ListCategories lists transaction categories, optionally filtered by
// expense flag (?isexpense=true|false).
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	q := h.DB.Model(&models.Category{}).Order("id ASC")
	if flag := c.Query("isexpense"); flag != "" {
		isExpense, err := strconv.ParseBool(flag)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "isexpense must be true or false")
			return
		}
		q = q.Where("is_expense = ?", isExpense)
	}

	var categories []models.Category
	if err := q.Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}
	util.Success(c, util.Response{"categories": categories})
}

// UpdateCategory edits a category's name and flag.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	}
	category.Name = strings.TrimSpace(req.Name)
	category.IsExpense = *req.IsExpense
	if err := h.DB.Save(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update category")
		return
	}
	util.Success(c, util.Response{"category": category})
}

// DeleteCategory removes a category that no transaction references.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var referenced int64
	if err := h.DB.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&referenced).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category usage")
		return
	}
	if referenced > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category is still referenced by transactions")
		return
	}

	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	}
	util.Success(c, util.Response{"message": "category deleted"})
}

// ---------- goal categories ----------

type goalCategoryReq struct {
	Name string `json:"name" binding:"required,max=64"`
}

// CreateGoalCategory adds a goal category.
func (h *CategoryHandler) CreateGoalCategory(c *gin.Context) {
	var req goalCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.GoalCategory{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check goal category")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "goal category already exists")
		return
	}

	category := models.GoalCategory{Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create goal category")
		return
	}
	util.Created(c, util.Response{"category": category})
}

// ListGoalCategories lists all goal categories.
func (h *CategoryHandler) ListGoalCategories(c *gin.Context) {
	var categories []models.GoalCategory
	if err := h.DB.Order("id ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list goal categories")
		return
	}
	util.Success(c, util.Response{"categories": categories})
}

// UpdateGoalCategory renames a goal category.
func (h *CategoryHandler) UpdateGoalCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req goalCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var category models.GoalCategory
	if err := h.DB.First(&category, id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "goal category not found")
		return
	}
	category.Name = strings.TrimSpace(req.Name)
	if err := h.DB.Save(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update goal category")
		return
	}
	util.Success(c, util.Response{"category": category})
}

// DeleteGoalCategory removes a goal category that no goal references.
func (h *CategoryHandler) DeleteGoalCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var referenced int64
	if err := h.DB.Model(&models.Goal{}).Where("category_id = ?", id).Count(&referenced).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check goal category usage")
		return
	}
	if referenced > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "goal category is still referenced by goals")
		return
	}

	res := h.DB.Delete(&models.GoalCategory{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete goal category")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "goal category not found")
		return
	}
	util.Success(c, util.Response{"message": "goal category deleted"})
}
