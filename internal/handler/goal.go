package handler

import (
	"net/http"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/ledger"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/middleware"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GoalHandler serves the /goal route group.
type GoalHandler struct {
	Goals    *ledger.GoalTracker
	PageSize int
}

func NewGoalHandler(goals *ledger.GoalTracker, pageSize int) *GoalHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &GoalHandler{Goals: goals, PageSize: pageSize}
}

type goalReq struct {
	Note       string          `json:"note" binding:"max=255"`
	Price      decimal.Decimal `json:"price" binding:"required"`
	CategoryID uint            `json:"categoryId" binding:"required"`
}

var oneHundred = decimal.NewFromInt(100)

func goalResp(g *models.Goal) gin.H {
	// past 100% the reply shows a label instead of a number
	progress := g.Progress.StringFixed(2) + " %"
	if g.Progress.GreaterThan(oneHundred) {
		progress = "Goal exceeds the limit"
	}

	resp := gin.H{
		"id":        g.ID,
		"note":      g.Note,
		"price":     util.FormatIDR(g.Price),
		"progress":  progress,
		"status":    g.Status,
		"createdAt": g.CreatedAt.Format(createdAtLayout),
	}
	if g.Category.ID != 0 {
		resp["category"] = g.Category.Name
	}
	return resp
}

// Create adds a savings goal with freshly computed progress.
func (h *GoalHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	goal, err := h.Goals.Create(c.Request.Context(), req.Note, req.Price, req.CategoryID, user.ID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Created(c, util.Response{"goal": gin.H{
		"id":         goal.ID,
		"note":       goal.Note,
		"price":      goal.Price,
		"progress":   goal.Progress,
		"status":     goal.Status,
		"categoryId": goal.CategoryID,
		"balanceId":  goal.BalanceID,
		"userId":     goal.UserID,
	}})
}

// List returns one page of the user's goals.
func (h *GoalHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	goals, pagination, err := h.Goals.List(c.Request.Context(), user.ID,
		intQuery(c, "page", 1), intQuery(c, "pageSize", h.PageSize))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	items := make([]gin.H, 0, len(goals))
	for i := range goals {
		items = append(items, goalResp(&goals[i]))
	}
	util.Success(c, util.Response{
		"goal":       items,
		"pagination": pagination,
	})
}

// Update amends a goal, recomputing progress against the current balance.
func (h *GoalHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	goal, err := h.Goals.Amend(c.Request.Context(), id, user.ID, req.Note, req.Price, req.CategoryID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{"goal": gin.H{
		"id":         goal.ID,
		"note":       goal.Note,
		"price":      goal.Price,
		"progress":   goal.Progress,
		"status":     goal.Status,
		"categoryId": goal.CategoryID,
	}})
}

// Delete removes an incomplete goal. No balance effect.
func (h *GoalHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Goals.Remove(c.Request.Context(), id, user.ID); err != nil {
		respondLedgerError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "success deleting goal"})
}

// Complete converts a finished goal into an expense and debits the balance.
func (h *GoalHandler) Complete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	expense, err := h.Goals.Complete(c.Request.Context(), id, user.ID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "your goal has been completed",
		"expense": gin.H{
			"id":         expense.ID,
			"amount":     expense.Amount,
			"note":       expense.Note,
			"categoryId": expense.CategoryID,
		},
	})
}
