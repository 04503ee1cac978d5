// roles.go — RoleService: соответствие функций ролям формы пользователя.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/rolepolicy"
)

// FonctionLister — источник полного справочника функций (включая неактивные).
type FonctionLister interface {
	ListFonctions(ctx context.Context, all bool) ([]model.Fonction, error)
}

// RoleService строит rolepolicy.Policy: идентификаторы из конфигурации
// имеют приоритет, остальные определяются по названиям функций.
type RoleService struct {
	lister    FonctionLister
	titles    rolepolicy.RoleTitles
	overrides rolepolicy.RoleMap
	ttl       time.Duration

	mu       sync.Mutex
	policy   *rolepolicy.Policy
	loadedAt time.Time

	logger *slog.Logger
	now    func() time.Time
}

// NewRoleService создаёт сервис ролей.
func NewRoleService(
	lister FonctionLister,
	titles rolepolicy.RoleTitles,
	overrides rolepolicy.RoleMap,
	ttl time.Duration,
	logger *slog.Logger,
) *RoleService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RoleService{
		lister:    lister,
		titles:    titles,
		overrides: overrides,
		ttl:       ttl,
		logger:    logger.With(slog.String("service", "roles")),
		now:       time.Now,
	}
}

// Policy возвращает актуальную политику формы пользователя.
// При недоступности API используется последняя загруженная политика,
// а если её нет — только идентификаторы из конфигурации.
func (s *RoleService) Policy(ctx context.Context) *rolepolicy.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy != nil && s.now().Sub(s.loadedAt) < s.ttl {
		return s.policy
	}

	fonctions, err := s.lister.ListFonctions(ctx, true)
	if err != nil {
		s.logger.Warn("Не удалось загрузить справочник функций, используются сохранённые роли",
			slog.String("error", err.Error()),
		)
		if s.policy != nil {
			return s.policy
		}
		return rolepolicy.New(s.overrides)
	}

	roles := rolepolicy.MapFromFonctions(fonctions, s.titles).Merge(s.overrides)
	s.policy = rolepolicy.New(roles)
	s.loadedAt = s.now()

	s.logger.Debug("Роли функций определены",
		slog.Int64("multi_centre", roles.MultiCentre),
		slog.Int64("agent", roles.Agent),
		slog.Int64("confirmateur", roles.Confirmateur),
		slog.Int64("superviseur", roles.Superviseur),
		slog.Int64("re_confirmation", roles.REConfirmation),
		slog.Int64("rp_qualif", roles.RPQualif),
	)
	return s.policy
}

// Invalidate сбрасывает кэш политики (после изменения справочника функций).
func (s *RoleService) Invalidate() {
	s.mu.Lock()
	s.policy = nil
	s.mu.Unlock()
}
