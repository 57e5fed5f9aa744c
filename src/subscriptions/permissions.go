package subscriptions

import (
	"time"

	"tix/src/models"

	"gorm.io/gorm"
)

// GetOrCreateTransactionStatistic looks up the transaction statistic for
// an account's current billing month, creating it at zero if missing.
func GetOrCreateTransactionStatistic(tx *gorm.DB, accountID uint) (*models.MonthlyTransactions, error) {
	now := time.Now().UTC()
	stat := models.MonthlyTransactions{
		AccountID: accountID,
		Year:      now.Year(),
		Month:     int(now.Month()),
	}
	err := tx.FirstOrCreate(&stat, models.MonthlyTransactions{
		AccountID: accountID,
		Year:      now.Year(),
		Month:     int(now.Month()),
	}).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// HasAvailableTransactions returns true if the account has not exceeded
// the number of paid transactions allowed this month.
func HasAvailableTransactions(tx *gorm.DB, accountID uint) (bool, error) {
	var account models.Account
	if err := tx.Where(&models.Account{ID: accountID}).First(&account).Error; err != nil {
		return false, err
	}
	if account.TransactionsPerMonth == nil {
		return true, nil
	}
	stat, err := GetOrCreateTransactionStatistic(tx, accountID)
	if err != nil {
		return false, err
	}
	return stat.Amount < *account.TransactionsPerMonth, nil
}

// IncrementTransactionCount increases the count of paid transactions
// associated with an account for the current billing month.
func IncrementTransactionCount(tx *gorm.DB, accountID uint, amount int) error {
	stat, err := GetOrCreateTransactionStatistic(tx, accountID)
	if err != nil {
		return err
	}
	return tx.
		Model(&models.MonthlyTransactions{}).
		Where(&models.MonthlyTransactions{AccountID: stat.AccountID, Year: stat.Year, Month: stat.Month}).
		Update("amount", gorm.Expr("amount + ?", amount)).
		Error
}
