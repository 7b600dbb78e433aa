package handlers

import (
	"net/http"
	"strconv"

	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SalaryHandler serves /api/salaries. Every operation is scoped to the
// authenticated user.
type SalaryHandler struct {
	svc *services.SalaryService
	log zerolog.Logger
}

func NewSalaryHandler(svc *services.SalaryService, log zerolog.Logger) *SalaryHandler {
	return &SalaryHandler{svc: svc, log: log}
}

// CreateSalary handles POST /api/salaries
func (h *SalaryHandler) CreateSalary(c *gin.Context) {
	var in services.SalaryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	salary, err := h.svc.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, salary)
}

// GetSalaries handles GET /api/salaries with optional filters
func (h *SalaryHandler) GetSalaries(c *gin.Context) {
	q := services.ListQuery{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Type:        c.Query("type"),
		PaidTo:      c.Query("paidTo"),
		PaidThrough: c.Query("paidThrough"),
	}

	salaries, err := h.svc.List(c.Request.Context(), currentUserID(c), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, salaries)
}

// GetSalaryStats handles GET /api/salaries/stats
func (h *SalaryHandler) GetSalaryStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), currentUserID(c), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetSalary handles GET /api/salaries/:id
func (h *SalaryHandler) GetSalary(c *gin.Context) {
	id, ok := salaryID(c)
	if !ok {
		return
	}

	salary, err := h.svc.GetByID(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, salary)
}

// UpdateSalary handles PUT /api/salaries/:id
func (h *SalaryHandler) UpdateSalary(c *gin.Context) {
	id, ok := salaryID(c)
	if !ok {
		return
	}

	var in services.SalaryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	salary, err := h.svc.Update(c.Request.Context(), currentUserID(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, salary)
}

// DeleteSalary handles DELETE /api/salaries/:id
func (h *SalaryHandler) DeleteSalary(c *gin.Context) {
	id, ok := salaryID(c)
	if !ok {
		return
	}

	res, err := h.svc.Delete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func salaryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salary ID"})
		return 0, false
	}
	return uint(id), true
}
