// Пакет rolepolicy — роль-зависимая форма пользователя: какие поля
// показываются и обязательны, какие пользователи допустимы в качестве
// руководителей, и проверка формы перед отправкой в API.
//
// Идентификаторы функций приходят из внешнего справочника, поэтому
// соответствие id → роль задаётся конфигурацией (RoleMap), а решение
// принимается по именованной роли.
package rolepolicy

import (
	"strings"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// Role — значимая для формы роль пользователя.
type Role int

const (
	// RoleNone — функция не выбрана.
	RoleNone Role = iota
	// RoleMultiCentre — единственная функция, для которой пользователь
	// привязан к нескольким центрам.
	RoleMultiCentre
	// RoleAgent — агент; chef_equipe означает супервизора.
	RoleAgent
	// RoleConfirmateur — подтверждающий; chef_equipe означает RE Confirmation.
	RoleConfirmateur
	// RoleSuperviseur — супервизор агентов.
	RoleSuperviseur
	// RoleREConfirmation — руководитель подтверждающих.
	RoleREConfirmation
	// RoleRPQualif — ответственный за квалификацию.
	RoleRPQualif
	// RoleOther — любая другая функция.
	RoleOther
)

// String возвращает машинное имя роли.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleMultiCentre:
		return "multi_centre"
	case RoleAgent:
		return "agent"
	case RoleConfirmateur:
		return "confirmateur"
	case RoleSuperviseur:
		return "superviseur"
	case RoleREConfirmation:
		return "re_confirmation"
	case RoleRPQualif:
		return "rp_qualif"
	default:
		return "other"
	}
}

// RoleMap — соответствие id функций ролям. Нулевой id — роль не настроена.
type RoleMap struct {
	MultiCentre    int64
	Agent          int64
	Confirmateur   int64
	Superviseur    int64
	REConfirmation int64
	RPQualif       int64
}

// Resolve возвращает роль для id функции (nil — RoleNone).
func (m RoleMap) Resolve(fonction *int64) Role {
	if fonction == nil || *fonction == 0 {
		return RoleNone
	}

	id := *fonction
	switch {
	case m.MultiCentre != 0 && id == m.MultiCentre:
		return RoleMultiCentre
	case m.Agent != 0 && id == m.Agent:
		return RoleAgent
	case m.Confirmateur != 0 && id == m.Confirmateur:
		return RoleConfirmateur
	case m.Superviseur != 0 && id == m.Superviseur:
		return RoleSuperviseur
	case m.REConfirmation != 0 && id == m.REConfirmation:
		return RoleREConfirmation
	case m.RPQualif != 0 && id == m.RPQualif:
		return RoleRPQualif
	default:
		return RoleOther
	}
}

// Merge возвращает копию m, в которой ненулевые id из override заменяют текущие.
func (m RoleMap) Merge(override RoleMap) RoleMap {
	pick := func(base, over int64) int64 {
		if over != 0 {
			return over
		}
		return base
	}
	return RoleMap{
		MultiCentre:    pick(m.MultiCentre, override.MultiCentre),
		Agent:          pick(m.Agent, override.Agent),
		Confirmateur:   pick(m.Confirmateur, override.Confirmateur),
		Superviseur:    pick(m.Superviseur, override.Superviseur),
		REConfirmation: pick(m.REConfirmation, override.REConfirmation),
		RPQualif:       pick(m.RPQualif, override.RPQualif),
	}
}

// RoleTitles — названия функций во внешнем справочнике, по которым
// определяются id ролей.
type RoleTitles struct {
	MultiCentre    string
	Agent          string
	Confirmateur   string
	Superviseur    string
	REConfirmation string
	RPQualif       string
}

// MapFromFonctions строит RoleMap по справочнику функций, сравнивая
// названия без учёта регистра и краевых пробелов. Пустое название не
// сопоставляется ни с чем.
func MapFromFonctions(fonctions []model.Fonction, titles RoleTitles) RoleMap {
	find := func(title string) int64 {
		title = strings.TrimSpace(title)
		if title == "" {
			return 0
		}
		for _, f := range fonctions {
			if f.Titre != nil && strings.EqualFold(strings.TrimSpace(*f.Titre), title) {
				return f.ID
			}
		}
		return 0
	}

	return RoleMap{
		MultiCentre:    find(titles.MultiCentre),
		Agent:          find(titles.Agent),
		Confirmateur:   find(titles.Confirmateur),
		Superviseur:    find(titles.Superviseur),
		REConfirmation: find(titles.REConfirmation),
		RPQualif:       find(titles.RPQualif),
	}
}
