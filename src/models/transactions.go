package models

// MonthlyTransactions counts the paid transactions an account completed in
// a billing month, for the subscription quota check.
type MonthlyTransactions struct {
	AccountID uint `gorm:"primaryKey" json:"account_id"`
	Year      int  `gorm:"primaryKey" json:"year"`
	Month     int  `gorm:"primaryKey" json:"month"`
	Amount    int  `json:"amount"`
}
