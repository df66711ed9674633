// Package testsupport runs the REST API on an in-memory SQLite database
// for tests of the packages that talk to it.
package testsupport

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HankLeo/21-points/internal/config"
	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/handler"
	"github.com/HankLeo/21-points/internal/messaging"
	"github.com/HankLeo/21-points/internal/middleware"
	"github.com/HankLeo/21-points/internal/repository"
)

const (
	AppName  = "twentyOnePointsApp"
	Login    = "admin"
	Password = "admin"
	Secret   = "test-secret"
)

type Server struct {
	*httptest.Server
	Config *config.Config
	Repos  *repository.Repositories
	Broker *messaging.MemoryBroker
	Hub    *messaging.Hub
	Mailer *Mailer
	User   *domain.User
	Token  string
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	conn, err := db.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, conn))

	cfg := &config.Config{
		JWTSecret:      Secret,
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"*"},
		AppName:        AppName,
		MessageTopic:   "topic-test",
	}
	s := &Server{
		Config: cfg,
		Repos:  repository.New(conn),
		Broker: messaging.NewMemoryBroker(),
		Hub:    messaging.NewHub(),
		Mailer: NewMailer(),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	email := "admin@localhost"
	s.User = &domain.User{Login: Login, Email: &email, PasswordHash: string(hash)}
	_, err = s.Repos.Users.Create(ctx, s.User)
	require.NoError(t, err)

	s.Token, err = middleware.GenerateToken(s.User.ID, s.User.Login, Secret, time.Hour)
	require.NoError(t, err)

	go s.Hub.Run(ctx, s.Broker)
	s.Server = httptest.NewServer(handler.NewRouter(handler.Deps{
		Config: cfg,
		Repos:  s.Repos,
		Mailer: s.Mailer,
		Broker: s.Broker,
		Hub:    s.Hub,
	}))

	t.Cleanup(func() {
		s.Server.Close()
		cancel()
		conn.Close()
	})
	return s
}

// Mailer records reset keys instead of sending mail.
type Mailer struct {
	Keys chan string
}

func NewMailer() *Mailer {
	return &Mailer{Keys: make(chan string, 8)}
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, login, key string) error {
	m.Keys <- key
	return nil
}
