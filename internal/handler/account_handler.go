package handler

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/middleware"
	"github.com/HankLeo/21-points/internal/repository"
)

const (
	resetKeyTTL    = 24 * time.Hour
	resetKeyLength = 20
	rememberMeTTL  = 30 * 24 * time.Hour
	resetMailTimer = 30 * time.Second
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, login, key string) error
}

type AccountHandler struct {
	jwtSecret      string
	tokenTTL       time.Duration
	users          *repository.UserRepository
	resetTokenRepo *repository.ResetTokenRepository
	mailer         Mailer
	alerts         alerts
}

func NewAccountHandler(
	jwtSecret string,
	tokenTTL time.Duration,
	users *repository.UserRepository,
	resetTokenRepo *repository.ResetTokenRepository,
	mailer Mailer,
	appName string,
) *AccountHandler {
	return &AccountHandler{
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
		users:          users,
		resetTokenRepo: resetTokenRepo,
		mailer:         mailer,
		alerts:         alerts{app: appName},
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Login = strings.TrimSpace(strings.ToLower(req.Login))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := domain.Validate("managedUserVM", &req); err != nil {
		if !h.alerts.invalid(w, "userManagement", err) {
			writeError(w, http.StatusInternalServerError, "failed to validate registration")
		}
		return
	}

	existing, err := h.users.GetByLogin(r.Context(), req.Login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	if existing != nil {
		h.alerts.badRequest(w, "userManagement", "userexists", "Login name already used!")
		return
	}
	var email *string
	if req.Email != "" {
		taken, err := h.users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to register")
			return
		}
		if taken != nil {
			h.alerts.badRequest(w, "userManagement", "emailexists", "Email is already in use!")
			return
		}
		email = &req.Email
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &domain.User{Login: req.Login, Email: email, PasswordHash: string(passwordHash)}
	if _, err := h.users.Create(r.Context(), user); err != nil {
		if db.IsDuplicate(err) {
			h.alerts.badRequest(w, "userManagement", "userexists", "Login name already used!")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, domain.Account{ID: user.ID, Login: user.Login, Email: user.Email})
}

func (h *AccountHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := domain.Validate("loginVM", &req); err != nil {
		if !h.alerts.invalid(w, "loginVM", err) {
			writeError(w, http.StatusInternalServerError, "failed to validate login")
		}
		return
	}

	user, err := h.users.GetByLogin(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}

	ttl := h.tokenTTL
	if req.RememberMe {
		ttl = rememberMeTTL
	}
	token, err := middleware.GenerateToken(user.ID, user.Login, h.jwtSecret, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, domain.TokenResponse{IDToken: token})
}

func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	user, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user could not be found")
		return
	}
	writeJSON(w, http.StatusOK, domain.Account{ID: user.ID, Login: user.Login, Email: user.Email})
}

// RequestPasswordReset takes the account's email address as the plain
// request body. It answers 200 whether or not the address is known and
// mails the key in the background.
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	email := strings.TrimSpace(string(raw))
	var quoted string
	if json.Unmarshal(raw, &quoted) == nil {
		email = strings.TrimSpace(quoted)
	}
	email = strings.ToLower(email)

	if email != "" {
		go h.sendResetKey(email)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the email exists, a reset key has been sent"})
}

func (h *AccountHandler) sendResetKey(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), resetMailTimer)
	defer cancel()

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("[reset-password] db error looking up %s: %v", email, err)
		return
	}
	if user == nil {
		return
	}

	if err := h.resetTokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		log.Printf("[reset-password] failed to delete old keys for user %d: %v", user.ID, err)
	}

	key, err := generateResetKey()
	if err != nil {
		log.Printf("[reset-password] failed to generate key: %v", err)
		return
	}
	if err := h.resetTokenRepo.Create(ctx, user.ID, key, time.Now().Add(resetKeyTTL)); err != nil {
		log.Printf("[reset-password] failed to save reset key for user %d: %v", user.ID, err)
		return
	}

	if err := h.mailer.SendPasswordReset(ctx, email, user.Login, key); err != nil {
		log.Printf("[reset-password] mail error sending to %s: %v", email, err)
		return
	}
	log.Printf("[reset-password] reset mail sent to %s", email)
}

func (h *AccountHandler) FinishPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := domain.Validate("keyAndPassword", &req); err != nil {
		if !h.alerts.invalid(w, "keyAndPassword", err) {
			writeError(w, http.StatusInternalServerError, "failed to validate reset")
		}
		return
	}

	token, err := h.resetTokenRepo.GetValid(r.Context(), strings.TrimSpace(req.Login), req.Key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify key")
		return
	}
	if token == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired key")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), token.UserID, string(passwordHash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if err := h.resetTokenRepo.MarkUsed(r.Context(), token.ID); err != nil {
		log.Printf("[reset-password] failed to mark key %d used: %v", token.ID, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

const resetKeyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// generateResetKey returns resetKeyLength random alphanumeric characters.
func generateResetKey() (string, error) {
	max := big.NewInt(int64(len(resetKeyAlphabet)))
	b := make([]byte, resetKeyLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = resetKeyAlphabet[n.Int64()]
	}
	return string(b), nil
}
