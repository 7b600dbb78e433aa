package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/events"
	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const msgSalaryNotFound = "Salary record not found"

// Largest amount a DECIMAL(12,2) column holds.
var maxAmount = decimal.New(1, 10)

// SalaryRepository is the record store used by SalaryService.
type SalaryRepository interface {
	Create(ctx context.Context, s *models.Salary) error
	List(ctx context.Context, f database.SalaryFilter) ([]models.Salary, error)
	FindByID(ctx context.Context, ownerID, id uint) (*models.Salary, error)
	Save(ctx context.Context, s *models.Salary) error
	Delete(ctx context.Context, ownerID, id uint) error
	Stats(ctx context.Context, f database.SalaryFilter) (models.SalaryStats, error)
}

// SalaryInput is the body of a create or update request. On update only the
// fields present in the body change.
type SalaryInput struct {
	Type        *string         `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	PaidTo      *string         `json:"paidTo"`
	PaidOn      *string         `json:"paidOn"`
	PaidThrough *string         `json:"paidThrough"`
	StartDate   *string         `json:"startDate"`
	EndDate     *string         `json:"endDate"`
	Remarks     json.RawMessage `json:"remarks"`
}

// ListQuery holds the raw list filters from the query string. Empty fields
// are ignored.
type ListQuery struct {
	StartDate   string
	EndDate     string
	Type        string
	PaidTo      string
	PaidThrough string
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

// SalaryService validates and stores salary records on behalf of their owner.
// A record that belongs to another user is reported as not found.
type SalaryService struct {
	store     SalaryRepository
	publisher events.Publisher
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewSalaryService(store SalaryRepository, publisher events.Publisher, log zerolog.Logger, m *metrics.Metrics) *SalaryService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SalaryService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "salaries").Logger(),
		metrics:   m,
		now:       time.Now,
	}
}

// Create validates in and stores it as a record of ownerID.
func (s *SalaryService) Create(ctx context.Context, ownerID uint, in SalaryInput) (sal *models.Salary, err error) {
	defer func() { s.metrics.SalaryOp("create", err) }()

	if missing := in.missingFields(); len(missing) > 0 {
		return nil, newError(ErrValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	sal = &models.Salary{UserID: ownerID}
	if err := in.applyTo(sal); err != nil {
		return nil, err
	}
	if err := validateRecord(sal); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, sal); err != nil {
		return nil, internal("Failed to create salary", err)
	}

	s.log.Info().Uint("salary_id", sal.ID).Uint("owner_id", ownerID).Msg("salary created")
	s.publish(ctx, events.ActionCreated, sal.ID, ownerID, sal)
	return sal, nil
}

// List returns the caller's records matching q, most recent first.
func (s *SalaryService) List(ctx context.Context, ownerID uint, q ListQuery) (out []models.Salary, err error) {
	defer func() { s.metrics.SalaryOp("list", err) }()

	f, err := q.filter(ownerID)
	if err != nil {
		return nil, err
	}
	out, err = s.store.List(ctx, f)
	if err != nil {
		return nil, internal("Failed to fetch salaries", err)
	}
	return out, nil
}

func (s *SalaryService) GetByID(ctx context.Context, ownerID, id uint) (sal *models.Salary, err error) {
	defer func() { s.metrics.SalaryOp("get", err) }()
	return s.find(ctx, ownerID, id)
}

// Update merges the fields present in in into the record and revalidates it.
func (s *SalaryService) Update(ctx context.Context, ownerID, id uint, in SalaryInput) (sal *models.Salary, err error) {
	defer func() { s.metrics.SalaryOp("update", err) }()

	sal, err = s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if empty := in.emptyFields(); len(empty) > 0 {
		return nil, newError(ErrValidation, "Fields cannot be empty: %s", strings.Join(empty, ", "))
	}
	if err := in.applyTo(sal); err != nil {
		return nil, err
	}
	if err := validateRecord(sal); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sal); err != nil {
		return nil, internal("Failed to update salary", err)
	}

	s.log.Info().Uint("salary_id", sal.ID).Uint("owner_id", ownerID).Msg("salary updated")
	s.publish(ctx, events.ActionUpdated, sal.ID, ownerID, sal)
	return sal, nil
}

// Delete removes the record permanently.
func (s *SalaryService) Delete(ctx context.Context, ownerID, id uint) (res *DeleteResult, err error) {
	defer func() { s.metrics.SalaryOp("delete", err) }()

	err = s.store.Delete(ctx, ownerID, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, newError(ErrNotFound, msgSalaryNotFound)
	}
	if err != nil {
		return nil, internal("Failed to delete salary", err)
	}

	s.log.Info().Uint("salary_id", id).Uint("owner_id", ownerID).Msg("salary deleted")
	s.publish(ctx, events.ActionDeleted, id, ownerID, nil)
	return &DeleteResult{Message: "Salary record deleted successfully", ID: id}, nil
}

// Stats aggregates the caller's records paid between startDate and endDate.
// Either bound may be empty.
func (s *SalaryService) Stats(ctx context.Context, ownerID uint, startDate, endDate string) (stats models.SalaryStats, err error) {
	defer func() { s.metrics.SalaryOp("stats", err) }()

	f, err := ListQuery{StartDate: startDate, EndDate: endDate}.filter(ownerID)
	if err != nil {
		return models.SalaryStats{}, err
	}
	stats, err = s.store.Stats(ctx, f)
	if err != nil {
		return models.SalaryStats{}, internal("Failed to fetch statistics", err)
	}
	return stats, nil
}

func (s *SalaryService) find(ctx context.Context, ownerID, id uint) (*models.Salary, error) {
	sal, err := s.store.FindByID(ctx, ownerID, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, newError(ErrNotFound, msgSalaryNotFound)
	}
	if err != nil {
		return nil, internal("Failed to fetch salary", err)
	}
	return sal, nil
}

// publish never fails the caller: the store write has already happened.
func (s *SalaryService) publish(ctx context.Context, action events.Action, id, ownerID uint, sal *models.Salary) {
	err := s.publisher.Publish(ctx, events.SalaryEvent{
		Type:        action,
		SalaryID:    id,
		OwnerUserID: ownerID,
		Salary:      sal,
		OccurredAt:  s.now().UTC(),
	})
	s.metrics.EventPublished(string(action), err)
	if err != nil {
		s.log.Warn().Err(err).Uint("salary_id", id).Str("action", string(action)).Msg("failed to publish salary event")
	}
}

func (in SalaryInput) missingFields() []string {
	var missing []string
	check := func(name string, v *string) {
		if v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, name)
		}
	}
	check("type", in.Type)
	if isAbsent(in.Amount) || bytes.Equal(bytes.TrimSpace(in.Amount), []byte(`""`)) {
		missing = append(missing, "amount")
	}
	check("paidTo", in.PaidTo)
	check("paidOn", in.PaidOn)
	check("paidThrough", in.PaidThrough)
	check("startDate", in.StartDate)
	check("endDate", in.EndDate)
	return missing
}

// emptyFields lists required fields that an update tries to blank out.
func (in SalaryInput) emptyFields() []string {
	var empty []string
	check := func(name string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			empty = append(empty, name)
		}
	}
	check("type", in.Type)
	if len(in.Amount) > 0 && isAbsent(in.Amount) {
		empty = append(empty, "amount")
	}
	check("paidTo", in.PaidTo)
	check("paidOn", in.PaidOn)
	check("paidThrough", in.PaidThrough)
	check("startDate", in.StartDate)
	check("endDate", in.EndDate)
	return empty
}

// applyTo copies every field present in in onto sal, parsing as it goes.
func (in SalaryInput) applyTo(sal *models.Salary) error {
	if in.Type != nil {
		sal.Type = models.SalaryType(strings.TrimSpace(*in.Type))
	}
	if !isAbsent(in.Amount) {
		amount, err := parseAmount(in.Amount)
		if err != nil {
			return err
		}
		sal.Amount = amount
	}
	if in.PaidTo != nil {
		sal.PaidTo = strings.TrimSpace(*in.PaidTo)
	}
	if in.PaidThrough != nil {
		sal.PaidThrough = models.PaymentMethod(strings.TrimSpace(*in.PaidThrough))
	}

	dates := []struct {
		name string
		raw  *string
		dst  *models.Date
	}{
		{"paidOn", in.PaidOn, &sal.PaidOn},
		{"startDate", in.StartDate, &sal.StartDate},
		{"endDate", in.EndDate, &sal.EndDate},
	}
	for _, d := range dates {
		if d.raw == nil {
			continue
		}
		parsed, err := models.ParseDate(*d.raw)
		if err != nil {
			return newError(ErrValidation, "Invalid %s: expected YYYY-MM-DD", d.name)
		}
		*d.dst = parsed
	}

	if len(in.Remarks) > 0 {
		var r models.Remarks
		if err := json.Unmarshal(in.Remarks, &r); err != nil {
			return newError(ErrValidation, "Invalid remarks: must be text or a salary breakdown")
		}
		sal.Remarks = r
	}
	return nil
}

func validateRecord(sal *models.Salary) error {
	if !sal.Type.Valid() {
		return newError(ErrValidation, "Invalid type: must be one of Monthly, Weekly, Bonus, Commission")
	}
	if !sal.PaidThrough.Valid() {
		return newError(ErrValidation, "Invalid paidThrough: must be one of Bank Transfer, Cash, Cheque, UPI")
	}
	if sal.EndDate.Before(sal.StartDate) {
		return newError(ErrValidation, "endDate must not be before startDate")
	}
	return nil
}

// parseAmount accepts a JSON number or a numeric string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	invalid := newError(ErrValidation, "Amount must be a positive number")

	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, invalid
		}
		text = strings.TrimSpace(s)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, invalid
	}
	// Validate what gets stored: 0.004 rounds to 0.
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Decimal{}, invalid
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, newError(ErrValidation, "Amount is too large")
	}
	return amount, nil
}

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func (q ListQuery) filter(ownerID uint) (database.SalaryFilter, error) {
	f := database.SalaryFilter{OwnerUserID: &ownerID}

	if v := strings.TrimSpace(q.StartDate); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return f, newError(ErrValidation, "Invalid startDate: expected YYYY-MM-DD")
		}
		f.PaidOnFrom = &d
	}
	if v := strings.TrimSpace(q.EndDate); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return f, newError(ErrValidation, "Invalid endDate: expected YYYY-MM-DD")
		}
		f.PaidOnTo = &d
	}
	if v := strings.TrimSpace(q.Type); v != "" {
		t := models.SalaryType(v)
		f.Type = &t
	}
	if v := strings.TrimSpace(q.PaidTo); v != "" {
		f.PaidTo = &v
	}
	if v := strings.TrimSpace(q.PaidThrough); v != "" {
		m := models.PaymentMethod(v)
		f.PaidThrough = &m
	}
	return f, nil
}
