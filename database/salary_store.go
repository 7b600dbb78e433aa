package database

import (
	"context"
	"fmt"

	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalaryFilter selects salary records. Nil fields are ignored and the rest
// are combined with AND.
type SalaryFilter struct {
	OwnerUserID *uint
	PaidOnFrom  *models.Date // inclusive
	PaidOnTo    *models.Date // inclusive
	Type        *models.SalaryType
	PaidTo      *string // substring match
	PaidThrough *models.PaymentMethod
}

func (f SalaryFilter) apply(q *gorm.DB) *gorm.DB {
	if f.OwnerUserID != nil {
		q = q.Where("user_id = ?", *f.OwnerUserID)
	}
	if f.PaidOnFrom != nil {
		q = q.Where("paid_on >= ?", *f.PaidOnFrom)
	}
	if f.PaidOnTo != nil {
		q = q.Where("paid_on <= ?", *f.PaidOnTo)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.PaidTo != nil {
		q = q.Where("paid_to LIKE ?", "%"+*f.PaidTo+"%")
	}
	if f.PaidThrough != nil {
		q = q.Where("paid_through = ?", *f.PaidThrough)
	}
	return q
}

// SalaryStore persists salary records.
type SalaryStore struct {
	db *gorm.DB
}

func NewSalaryStore(db *gorm.DB) *SalaryStore {
	return &SalaryStore{db: db}
}

func (s *SalaryStore) Create(ctx context.Context, sal *models.Salary) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(sal).Error)
}

// List returns matching records, most recent payment first.
func (s *SalaryStore) List(ctx context.Context, f SalaryFilter) ([]models.Salary, error) {
	salaries := []models.Salary{}
	q := f.apply(s.db.WithContext(ctx).Model(&models.Salary{}))
	if err := q.Order("paid_on DESC").Order("id DESC").Find(&salaries).Error; err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	return salaries, nil
}

// FindByID loads a record owned by ownerID. Records of other owners are
// reported as ErrNotFound.
func (s *SalaryStore) FindByID(ctx context.Context, ownerID, id uint) (*models.Salary, error) {
	var sal models.Salary
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&sal).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sal, nil
}

// Save writes every column of sal and refreshes UpdatedAt.
func (s *SalaryStore) Save(ctx context.Context, sal *models.Salary) error {
	return translate(s.db.WithContext(ctx).Omit("User").Save(sal).Error)
}

func (s *SalaryStore) Delete(ctx context.Context, ownerID, id uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&models.Salary{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete salary %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes the records of ownerID, or every record when ownerID is
// nil, and reports how many rows went away.
func (s *SalaryStore) DeleteAll(ctx context.Context, ownerID *uint) (int64, error) {
	q := s.db.WithContext(ctx)
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	} else {
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := q.Delete(&models.Salary{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete salaries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type statsRow struct {
	Total           decimal.NullDecimal
	Count           int64
	UniqueEmployees int64
}

// Stats aggregates the records selected by f. An empty selection yields zero
// values throughout.
func (s *SalaryStore) Stats(ctx context.Context, f SalaryFilter) (models.SalaryStats, error) {
	var row statsRow
	q := f.apply(s.db.WithContext(ctx).Model(&models.Salary{}))
	err := q.Select("SUM(amount) AS total, COUNT(*) AS count, COUNT(DISTINCT paid_to) AS unique_employees").
		Scan(&row).Error
	if err != nil {
		return models.SalaryStats{}, fmt.Errorf("salary stats: %w", err)
	}

	stats := models.SalaryStats{
		Count:           row.Count,
		UniqueEmployees: row.UniqueEmployees,
	}
	if row.Total.Valid {
		stats.Total = row.Total.Decimal.Round(2).InexactFloat64()
	}
	if row.Count > 0 {
		stats.Average = stats.Total / float64(row.Count)
	}
	return stats, nil
}
