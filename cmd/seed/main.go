// Command seed creates an admin account and a batch of sample salary records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/config"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/logging"
	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var payees = []string{
	"Asha Raman", "Vikram Iyer", "Meera Pillai", "Rahul Menon", "Divya Nair",
	"Karthik Subramanian", "Priya Krishnan", "Arjun Das", "Lakshmi Venkat", "Sanjay Rao",
}

func main() {
	n := flag.Int("salaries", 25, "number of sample salary records to create")
	flag.Parse()

	if err := seed(*n); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func seed(n int) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, "console", os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	users := database.NewUserStore(db)
	authService := services.NewAuthService(users, auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost, log, nil)

	admin, err := ensureAdmin(ctx, authService, users, log)
	if err != nil {
		return err
	}

	// Rows go straight to the store, so no salary events are published.
	salaries := database.NewSalaryStore(db)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		sal := sampleSalary(now, admin.ID)
		if err := salaries.Create(ctx, sal); err != nil {
			return fmt.Errorf("create salary %d: %w", i+1, err)
		}
	}

	log.Info().Int("salaries", n).Str("owner", admin.Email).Msg("seed finished")
	return nil
}

func ensureAdmin(ctx context.Context, svc *services.AuthService, users *database.UserStore, log zerolog.Logger) (*models.User, error) {
	email := envOr("ADMIN_EMAIL", "admin@example.com")
	password := envOr("ADMIN_PASSWORD", "admin123")

	user, err := svc.Register(ctx, services.RegisterInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, services.ErrConflict) {
		log.Info().Str("email", email).Msg("admin already exists")
		return users.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}
	log.Info().Str("email", email).Msg("admin created")
	return user, nil
}

func sampleSalary(now time.Time, ownerID uint) *models.Salary {
	typ := models.SalaryTypes[rand.Intn(len(models.SalaryTypes))]
	start := now.AddDate(0, -rand.Intn(12), -rand.Intn(28))

	end := start.AddDate(0, 1, -1)
	amount := decimal.NewFromInt(int64(20000 + rand.Intn(80000)))
	switch typ {
	case models.SalaryWeekly:
		end = start.AddDate(0, 0, 6)
		amount = amount.Div(decimal.NewFromInt(4)).Round(2)
	case models.SalaryBonus, models.SalaryCommission:
		amount = decimal.NewFromInt(int64(1000 + rand.Intn(15000)))
	}

	sal := &models.Salary{
		Type:        typ,
		Amount:      amount,
		PaidTo:      payees[rand.Intn(len(payees))],
		PaidOn:      models.NewDate(end.AddDate(0, 0, 1)),
		PaidThrough: models.PaymentMethods[rand.Intn(len(models.PaymentMethods))],
		StartDate:   models.NewDate(start),
		EndDate:     models.NewDate(end),
		UserID:      ownerID,
	}
	if typ == models.SalaryMonthly {
		basic, _ := amount.Mul(decimal.NewFromFloat(0.6)).Round(2).Float64()
		hra, _ := amount.Mul(decimal.NewFromFloat(0.4)).Round(2).Float64()
		sal.Remarks = models.BreakdownRemarks(models.Breakdown{Components: []models.Component{
			{Name: "Basic", Value: basic, Type: models.ComponentEarning},
			{Name: "HRA", Value: hra, Type: models.ComponentEarning},
		}})
	}
	return sal
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
