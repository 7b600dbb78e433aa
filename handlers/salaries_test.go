package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salaryBody() map[string]any {
	return map[string]any{
		"type":        "Monthly",
		"amount":      5000,
		"paidTo":      "A",
		"paidOn":      "2024-01-05",
		"paidThrough": "Bank Transfer",
		"startDate":   "2024-01-01",
		"endDate":     "2024-01-31",
	}
}

type salaryJSON struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	PaidTo      string `json:"paidTo"`
	PaidOn      string `json:"paidOn"`
	PaidThrough string `json:"paidThrough"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Remarks     any    `json:"remarks"`
	OwnerUserID uint   `json:"ownerUserId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func TestSalaryScenario(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signupAndLogin(t, "a@x.com")
	require.NotZero(t, userID)

	rec := s.do(t, http.MethodPost, "/api/salaries", token, salaryBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[salaryJSON](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, userID, created.OwnerUserID)
	assert.Equal(t, "Monthly", created.Type)
	assert.Equal(t, "5000", created.Amount)
	assert.Equal(t, "2024-01-05", created.PaidOn)
	assert.Equal(t, "Bank Transfer", created.PaidThrough)
	assert.Nil(t, created.Remarks)
	assert.NotEmpty(t, created.CreatedAt)

	rec = s.do(t, http.MethodGet, "/api/salaries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]salaryJSON](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/salaries/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[salaryJSON](t, rec)
	assert.Equal(t, created.PaidTo, got.PaidTo)
	assert.Equal(t, created.StartDate, got.StartDate)
	assert.Equal(t, created.EndDate, got.EndDate)
}

func TestSalaryCreate_ClientOwnerIgnored(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signupAndLogin(t, "a@x.com")

	body := salaryBody()
	body["ownerUserId"] = 999
	body["userId"] = 999
	rec := s.do(t, http.MethodPost, "/api/salaries", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, decode[salaryJSON](t, rec).OwnerUserID)
}

func TestSalaryCreate_RejectsBadAmount(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signupAndLogin(t, "a@x.com")

	for _, amount := range []any{0, "abc", -10, 0.001, "0.004"} {
		body := salaryBody()
		body["amount"] = amount
		rec := s.do(t, http.MethodPost, "/api/salaries", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Amount must be a positive number", errorOf(t, rec))
	}

	body := salaryBody()
	delete(body, "paidTo")
	delete(body, "endDate")
	rec := s.do(t, http.MethodPost, "/api/salaries", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: paidTo, endDate", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/salaries", token, `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/salaries", token, nil)
	assert.Empty(t, decode[[]salaryJSON](t, rec))
}

func TestSalaryRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/salaries"},
		{http.MethodPost, "/api/salaries"},
		{http.MethodGet, "/api/salaries/stats"},
		{http.MethodGet, "/api/salaries/1"},
		{http.MethodPut, "/api/salaries/1"},
		{http.MethodDelete, "/api/salaries/1"},
	} {
		rec := s.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestSalaryUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signupAndLogin(t, "a@x.com")

	rec := s.do(t, http.MethodPost, "/api/salaries", token, salaryBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[salaryJSON](t, rec).ID
	path := fmt.Sprintf("/api/salaries/%d", id)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{
		"amount":  "7500.50",
		"remarks": map[string]any{"components": []map[string]any{{"name": "Basic", "value": 7500.5, "type": "earning"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[salaryJSON](t, rec)
	assert.Equal(t, "7500.5", updated.Amount)
	assert.Equal(t, "A", updated.PaidTo)
	remarks, ok := updated.Remarks.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 7500.5, remarks["net"])

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/salaries/9999", token, map[string]any{"paidTo": "B"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Salary record not found", errorOf(t, rec))

	rec = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"message":"Salary record deleted successfully","id":%d}`, id), rec.Body.String())

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, token, nil).Code)
}

func TestSalaryInvalidID(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signupAndLogin(t, "a@x.com")

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := s.do(t, method, "/api/salaries/abc", token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, "Invalid salary ID", errorOf(t, rec))
	}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/salaries/0", token, nil).Code)
}

func TestSalaryIsolationBetweenUsers(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.signupAndLogin(t, "alice@x.com")
	_, bob := s.signupAndLogin(t, "bob@x.com")

	rec := s.do(t, http.MethodPost, "/api/salaries", alice, salaryBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("/api/salaries/%d", decode[salaryJSON](t, rec).ID)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, path, bob, map[string]any{"paidTo": "B"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, bob, nil).Code)
	assert.Empty(t, decode[[]salaryJSON](t, s.do(t, http.MethodGet, "/api/salaries", bob, nil)))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, alice, nil).Code)
}

func TestSalaryFiltersAndStats(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signupAndLogin(t, "a@x.com")

	rec := s.do(t, http.MethodGet, "/api/salaries/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"count":0,"uniqueEmployees":0,"average":0}`, rec.Body.String())

	rows := []map[string]any{
		{"type": "Monthly", "amount": 5000, "paidTo": "Alice", "paidOn": "2024-01-05", "paidThrough": "Bank Transfer"},
		{"type": "Bonus", "amount": 1000, "paidTo": "Bob", "paidOn": "2024-01-31", "paidThrough": "Cash"},
		{"type": "Bonus", "amount": "500", "paidTo": "Alice Smith", "paidOn": "2024-02-10", "paidThrough": "UPI"},
	}
	for _, r := range rows {
		body := salaryBody()
		for k, v := range r {
			body[k] = v
		}
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/salaries", token, body).Code)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Alice Smith", "Bob", "Alice"}},
		{"?type=Bonus", []string{"Alice Smith", "Bob"}},
		{"?startDate=2024-01-31&endDate=2024-01-31", []string{"Bob"}},
		{"?startDate=2024-01-01&endDate=2024-01-31", []string{"Bob", "Alice"}},
		{"?paidTo=Alice", []string{"Alice Smith", "Alice"}},
		{"?paidThrough=Cash", []string{"Bob"}},
		{"?paidThrough=Bank%20Transfer&type=Monthly", []string{"Alice"}},
		{"?type=Bonus&paidTo=Alice", []string{"Alice Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/salaries"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			got := []string{}
			for _, sal := range decode[[]salaryJSON](t, rec) {
				got = append(got, sal.PaidTo)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	rec = s.do(t, http.MethodGet, "/api/salaries?startDate=soon", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/salaries/stats?startDate=2024-01-01&endDate=2024-01-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":6000,"count":2,"uniqueEmployees":2,"average":3000}`, rec.Body.String())
}
