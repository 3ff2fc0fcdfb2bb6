// Package ledger keeps a user's stored balance consistent with the income
// and expense transactions that justify it. Every mutation here runs as one
// atomic unit against the owner's balance row: the record write and the
// compensating balance write commit together or not at all.
package ledger

import (
	"errors"
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
)

// Error kinds surfaced to the request layer. Each is a distinct,
// user-actionable outcome; anything else that escapes the package is an
// unexpected persistence fault.
var (
	// ErrNoBalance means the user has not initialized an account balance yet.
	ErrNoBalance = errors.New("user has no balance")
	// ErrAlreadyExists means a duplicate balance or category creation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCategory means the category is missing or its expense flag
	// does not match the transaction kind.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNotFound means the referenced transaction or goal does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller does not own the resource's balance.
	ErrForbidden = errors.New("forbidden")
	// ErrNotReady means goal completion was attempted below 100% progress.
	ErrNotReady = errors.New("goal progress has not reached 100%")
	// ErrInvalidAmount means a non-positive transaction amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidPrice means a non-positive goal price.
	ErrInvalidPrice = errors.New("goal price must be positive")
	// ErrNegativeBalance means goal progress cannot be derived because the
	// current balance is negative.
	ErrNegativeBalance = errors.New("balance is negative, goal progress undefined")
	// ErrConflictRetryExhausted means concurrent-update contention on the
	// balance row could not be resolved within the retry budget.
	ErrConflictRetryExhausted = errors.New("concurrent balance update conflict, retries exhausted")
)

// errConflict aborts the current attempt of a balance unit and triggers a
// retry of the whole operation. It never leaves the package.
var errConflict = errors.New("balance version conflict")

// InvalidCategoryError reports a failed category check together with the
// category IDs that would have been valid for the attempted kind, so the
// caller can point the user at them.
type InvalidCategoryError struct {
	Kind     models.TransactionKind
	Eligible []uint
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category for %s, valid categories: %v", e.Kind, e.Eligible)
}

// Is makes errors.Is(err, ErrInvalidCategory) match.
func (e *InvalidCategoryError) Is(target error) bool {
	return target == ErrInvalidCategory
}
