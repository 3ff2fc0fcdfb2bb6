package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/ledger"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/middleware"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// createdAtLayout is the display format for timestamps,
// e.g. "December 03, 2023 15:04:05".
const createdAtLayout = "January 02, 2006 15:04:05"

// TransactionHandler serves the /income and /expense route groups. Both
// share this one handler; the kind is fixed per group at registration.
type TransactionHandler struct {
	Ledger   *ledger.Ledger
	PageSize int
}

func NewTransactionHandler(l *ledger.Ledger, pageSize int) *TransactionHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &TransactionHandler{Ledger: l, PageSize: pageSize}
}

type transactionReq struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Note       string          `json:"note" binding:"max=255"`
	CategoryID uint            `json:"categoryId" binding:"required"`
}

func transactionResp(t *models.Transaction) gin.H {
	resp := gin.H{
		"id":        t.ID,
		"note":      t.Note,
		"amount":    util.FormatIDR(t.Amount),
		"createdAt": t.CreatedAt.Format(createdAtLayout),
	}
	if t.User.ID != 0 {
		resp["user"] = t.User.Username
	}
	if t.Category.ID != 0 {
		resp["category"] = t.Category.Name
	}
	return resp
}

// Create records an income or expense and applies its balance effect.
func (h *TransactionHandler) Create(kind models.TransactionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			return
		}

		var req transactionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		txn, err := h.Ledger.Record(c.Request.Context(), kind, req.Amount, req.Note, req.CategoryID, user.ID)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		util.Created(c, util.Response{string(kind): gin.H{
			"id":         txn.ID,
			"amount":     txn.Amount,
			"note":       txn.Note,
			"categoryId": txn.CategoryID,
			"balanceId":  txn.BalanceID,
			"userId":     txn.UserID,
			"createdAt":  txn.CreatedAt,
		}})
	}
}

// List returns one page of the user's transactions of the group's kind,
// filtered by note substring and creation-time range, with the pagination
// envelope and the formatted sum of the returned page.
func (h *TransactionHandler) List(kind models.TransactionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			return
		}

		filter := ledger.ListFilter{
			Kind: kind,
			Note: c.Query("note"),
			Page: intQuery(c, "page", 1),
		}
		filter.PageSize = intQuery(c, "pageSize", h.PageSize)

		var parseErr bool
		filter.MinCreatedAt, parseErr = timeQuery(c, "min_createdAt")
		if parseErr {
			return
		}
		filter.MaxCreatedAt, parseErr = timeQuery(c, "max_createdAt")
		if parseErr {
			return
		}

		result, err := h.Ledger.List(c.Request.Context(), user.ID, filter)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		items := make([]gin.H, 0, len(result.Transactions))
		for i := range result.Transactions {
			items = append(items, transactionResp(&result.Transactions[i]))
		}

		util.Success(c, util.Response{
			string(kind):             items,
			"pagination":             result.Pagination,
			"total" + titleKind(kind): util.FormatIDR(result.PageTotal),
		})
	}
}

// Update amends a transaction's amount, category and note.
func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	txn, err := h.Ledger.Amend(c.Request.Context(), id, user.ID, req.Amount, req.CategoryID, req.Note)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{string(txn.Kind): gin.H{
		"id":         txn.ID,
		"amount":     txn.Amount,
		"note":       txn.Note,
		"categoryId": txn.CategoryID,
		"balanceId":  txn.BalanceID,
		"userId":     txn.UserID,
		"createdAt":  txn.CreatedAt,
	}})
}

// Delete removes a transaction and reverses its balance effect.
func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Ledger.Remove(c.Request.Context(), id, user.ID); err != nil {
		respondLedgerError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "success deleting data"})
}

func titleKind(kind models.TransactionKind) string {
	if kind == models.KindExpense {
		return "Expenses"
	}
	return "Incomes"
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// timeQuery parses an optional query timestamp, accepting RFC3339 or plain
// dates. The second return is true when a reply was already written.
func timeQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, false
		}
	}
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, name+" must be RFC3339 or YYYY-MM-DD")
	return nil, true
}
