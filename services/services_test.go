package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/events"
	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SalaryEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.SalaryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) actions() []events.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Action, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	auth      *AuthService
	salaries  *SalaryService
	tokens    *auth.TokenService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite://:memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	tokens := auth.NewTokenService("test-secret", 24*time.Hour)
	pub := &recordingPublisher{}
	return &fixture{
		db:        db,
		tokens:    tokens,
		publisher: pub,
		auth:      NewAuthService(database.NewUserStore(db), tokens, bcrypt.MinCost, zerolog.Nop(), nil),
		salaries:  NewSalaryService(database.NewSalaryStore(db), pub, zerolog.Nop(), nil),
	}
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{Name: "Test", Email: email, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T {
	return &v
}
