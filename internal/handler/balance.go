package handler

import (
	"net/http"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/ledger"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/middleware"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceHandler serves balance initialization and the balance report.
type BalanceHandler struct {
	DB       *gorm.DB
	Balances *ledger.BalanceStore
}

func NewBalanceHandler(db *gorm.DB, balances *ledger.BalanceStore) *BalanceHandler {
	return &BalanceHandler{DB: db, Balances: balances}
}

type initialBalanceReq struct {
	Balance decimal.Decimal `json:"balance" binding:"required"`
}

// CreateInitialBalance sets the user's starting balance. Each user can only
// have one balance.
func (h *BalanceHandler) CreateInitialBalance(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	var req initialBalanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Balance.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "initial balance cannot be negative")
		return
	}

	balance, err := h.Balances.CreateInitial(c.Request.Context(), user.ID, req.Balance)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Created(c, util.Response{
		"balance": gin.H{
			"id":      balance.ID,
			"userId":  balance.UserID,
			"balance": balance.Balance,
		},
	})
}

// GetUserBalance reports the current balance together with the derived
// initial balance and profit/loss.
func (h *BalanceHandler) GetUserBalance(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	balance, err := h.Balances.GetOrFail(c.Request.Context(), user.ID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	totalIncome, totalExpense, err := ledger.Totals(c.Request.Context(), h.DB, balance.ID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	initial, profit := ledger.DerivedInitialAndProfit(balance.Balance, totalIncome, totalExpense)

	util.Success(c, util.Response{
		"current_balance": gin.H{
			"id":              balance.ID,
			"username":        user.Username,
			"current_balance": util.FormatIDR(balance.Balance),
		},
		"initial_balance": util.FormatIDR(initial),
		"profit":          util.FormatIDR(profit),
	})
}
