package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/ledger"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
)

// respondLedgerError maps ledger error kinds to HTTP responses. Unknown
// errors collapse into an opaque 500; everything the ledger names gets a
// distinct, user-actionable reply.
func respondLedgerError(c *gin.Context, err error) {
	var invalidCategory *ledger.InvalidCategoryError

	switch {
	case errors.As(err, &invalidCategory):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("invalid category for %s, you should select one of %v",
				invalidCategory.Kind, invalidCategory.Eligible))
	case errors.Is(err, ledger.ErrInvalidCategory):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category")
	case errors.Is(err, ledger.ErrNoBalance):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "balance not found, initialize your balance first")
	case errors.Is(err, ledger.ErrAlreadyExists):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "already exists")
	case errors.Is(err, ledger.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "record not found")
	case errors.Is(err, ledger.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you can only manage your own records")
	case errors.Is(err, ledger.ErrNotReady):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "goal progress has not reached 100%")
	case errors.Is(err, ledger.ErrInvalidAmount):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be positive")
	case errors.Is(err, ledger.ErrInvalidPrice):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "goal price must be positive")
	case errors.Is(err, ledger.ErrNegativeBalance):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "balance is negative, goal progress cannot be computed")
	case errors.Is(err, ledger.ErrConflictRetryExhausted):
		util.Error(c, http.StatusConflict, util.CodeConflict, "too much concurrent activity, please retry")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal server error")
	}
}
