package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryType enum
type SalaryType string

const (
	SalaryMonthly    SalaryType = "Monthly"
	SalaryWeekly     SalaryType = "Weekly"
	SalaryBonus      SalaryType = "Bonus"
	SalaryCommission SalaryType = "Commission"
)

// SalaryTypes lists the accepted salary types.
var SalaryTypes = []SalaryType{SalaryMonthly, SalaryWeekly, SalaryBonus, SalaryCommission}

func (t SalaryType) Valid() bool {
	for _, v := range SalaryTypes {
		if t == v {
			return true
		}
	}
	return false
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentCash         PaymentMethod = "Cash"
	PaymentCheque       PaymentMethod = "Cheque"
	PaymentUPI          PaymentMethod = "UPI"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{PaymentBankTransfer, PaymentCash, PaymentCheque, PaymentUPI}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// Salary is one salary payment owned by the user who recorded it.
type Salary struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        SalaryType      `gorm:"size:20;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidTo      string          `gorm:"size:255;not null;index" json:"paidTo"`
	PaidOn      Date            `gorm:"type:date;not null;index" json:"paidOn"`
	PaidThrough PaymentMethod   `gorm:"size:20;not null" json:"paidThrough"`
	StartDate   Date            `gorm:"type:date;not null" json:"startDate"`
	EndDate     Date            `gorm:"type:date;not null" json:"endDate"`
	Remarks     Remarks         `gorm:"type:text" json:"remarks"`
	UserID      uint            `gorm:"not null;index" json:"ownerUserId"`
	User        *User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Salary) TableName() string {
	return "salaries"
}

// SalaryStats aggregates a set of salary records.
type SalaryStats struct {
	Total           float64 `json:"total"`
	Count           int64   `json:"count"`
	UniqueEmployees int64   `json:"uniqueEmployees"`
	Average         float64 `json:"average"`
}
