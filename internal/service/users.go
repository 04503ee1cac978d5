// users.go — UserService: форма пользователя с полями, зависящими от функции,
// и выпуск токенов.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/rolepolicy"
)

// TokenIssuer — выпуск токена пользователя во внешнем API.
type TokenIssuer interface {
	GenerateToken(ctx context.Context, userID int64) (*model.GeneratedToken, error)
}

// TokenInfo — выпущенный токен и его claims для отображения.
// Claims декодируются без проверки подписи: токен только показывается.
type TokenInfo struct {
	Token     string
	ExpiresIn int64
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// UserService — операции над пользователями поверх Catalog.
type UserService struct {
	users  *Catalog[model.Utilisateur]
	roles  *RoleService
	issuer TokenIssuer
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(users *Catalog[model.Utilisateur], roles *RoleService, issuer TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		issuer: issuer,
		logger: logger.With(slog.String("service", "users")),
	}
}

// Catalog возвращает справочник пользователей.
func (s *UserService) Catalog() *Catalog[model.Utilisateur] {
	return s.users
}

// FormShape определяет поля формы для выбранной функции.
func (s *UserService) FormShape(ctx context.Context, fonction *int64, editingID *int64) (rolepolicy.FormShape, error) {
	roster, err := s.users.List(ctx)
	if err != nil {
		return rolepolicy.FormShape{}, err
	}
	return s.roles.Policy(ctx).DeriveFormShape(fonction, roster, editingID), nil
}

// Draft возвращает черновик формы: пустой при создании, запись без пароля
// при редактировании.
func (s *UserService) Draft(ctx context.Context, id *int64) (model.Utilisateur, error) {
	if id == nil {
		return model.Utilisateur{Etat: model.EtatActive}, nil
	}
	u, err := s.users.Find(ctx, *id)
	if err != nil {
		return model.Utilisateur{}, err
	}
	return rolepolicy.PrepareForEdit(u), nil
}

// SwitchFonction применяет смену функции к черновику формы.
func (s *UserService) SwitchFonction(ctx context.Context, draft *model.Utilisateur, fonction *int64) {
	s.roles.Policy(ctx).SwitchFonction(draft, fonction)
}

// Submit проверяет черновик по правилам функции и создаёт или обновляет
// пользователя. editingID == nil — создание. При редактировании черновик
// накладывается на сохранённую запись: скрытые формой поля не теряются.
func (s *UserService) Submit(ctx context.Context, draft model.Utilisateur, editingID *int64) error {
	roster, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	policy := s.roles.Policy(ctx)

	if editingID != nil {
		stored, err := s.users.Find(ctx, *editingID)
		if err != nil {
			return err
		}
		draft = policy.MergeEdit(stored, draft, roster)
	}
	if err := policy.ValidateSubmit(&draft, roster, editingID); err != nil {
		return err
	}

	if editingID == nil {
		return s.users.Create(ctx, draft)
	}
	draft.ID = *editingID
	return s.users.Update(ctx, *editingID, draft)
}

// GenerateToken выпускает токен пользователя id.
func (s *UserService) GenerateToken(ctx context.Context, id int64) (*TokenInfo, error) {
	if _, err := s.users.Find(ctx, id); err != nil {
		return nil, err
	}

	tok, err := s.issuer.GenerateToken(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("генерация токена пользователя %d: %w", id, err)
	}

	info := &TokenInfo{Token: tok.Token, ExpiresIn: tok.ExpiresIn}
	decodeClaims(info, s.logger)

	s.logger.Info("Токен пользователя сгенерирован",
		slog.Int64("user_id", id),
		slog.Int64("expires_in", tok.ExpiresIn),
	)
	return info, nil
}

// decodeClaims заполняет sub/iat/exp из JWT без проверки подписи.
// Непрозрачный (не JWT) токен оставляет поля пустыми.
func decodeClaims(info *TokenInfo, logger *slog.Logger) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(info.Token, claims); err != nil {
		logger.Debug("Токен не является JWT, claims не отображаются",
			slog.String("error", err.Error()),
		)
		return
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
}
