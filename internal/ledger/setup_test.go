package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int

// newTestDB opens a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:ledgertest%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache in-memory DB alive and serializes
	// concurrent units the same way the WAL file database does
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserBalance{},
		&models.Category{},
		&models.GoalCategory{},
		&models.Transaction{},
		&models.Goal{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCategory(t *testing.T, db *gorm.DB, name string, isExpense bool) *models.Category {
	t.Helper()
	category := models.Category{Name: name, IsExpense: isExpense}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func createGoalCategory(t *testing.T, db *gorm.DB, name string) *models.GoalCategory {
	t.Helper()
	category := models.GoalCategory{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

// newLedgerFixture builds a user with an initialized balance plus one income
// and one expense category.
type ledgerFixture struct {
	db       *gorm.DB
	balances *BalanceStore
	ledger   *Ledger
	goals    *GoalTracker
	user     *models.User
	income   *models.Category
	expense  *models.Category
}

func newLedgerFixture(t *testing.T, initial decimal.Decimal) *ledgerFixture {
	t.Helper()
	db := newTestDB(t)
	balances := NewBalanceStore(db, 0)
	user := createUser(t, db, "alice")

	_, err := balances.CreateInitial(context.Background(), user.ID, initial)
	require.NoError(t, err)

	return &ledgerFixture{
		db:       db,
		balances: balances,
		ledger:   NewLedger(db, balances),
		goals:    NewGoalTracker(db, balances),
		user:     user,
		income:   createCategory(t, db, "Salary", false),
		expense:  createCategory(t, db, "Groceries", true),
	}
}

// currentBalance reads the stored balance straight from the table.
func (f *ledgerFixture) currentBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	var balance models.UserBalance
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).First(&balance).Error)
	return balance.Balance
}

func requireDecimalEqual(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	require.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
