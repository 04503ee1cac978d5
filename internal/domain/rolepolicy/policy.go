package rolepolicy

import (
	"strings"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// Подписи поля chef_equipe в зависимости от роли.
const (
	LabelSuperviseur    = "Superviseur"
	LabelREConfirmation = "RE Confirmation"
)

// FieldState — состояние поля формы.
type FieldState struct {
	Shown    bool
	Required bool
}

// CandidateField — поле выбора пользователя с допустимыми кандидатами.
type CandidateField struct {
	Shown      bool
	Label      string
	Candidates []model.Utilisateur
}

// FormShape — набор активных полей формы пользователя.
type FormShape struct {
	Role Role
	// Centre — единственный центр (select)
	Centre FieldState
	// Centres — несколько центров (multi-select), только для RoleMultiCentre
	Centres FieldState
	// ChefEquipe — супервизор (Agent) или RE Confirmation (Confirmateur)
	ChefEquipe CandidateField
	// RPQualif — ответственный за квалификацию
	RPQualif CandidateField
	// PasswordRequired — пароль обязателен (только при создании)
	PasswordRequired bool
}

// Policy — правила формы пользователя для конкретного RoleMap.
type Policy struct {
	roles RoleMap
}

// New создаёт Policy.
func New(roles RoleMap) *Policy {
	return &Policy{roles: roles}
}

// Roles возвращает текущее соответствие id → роль.
func (p *Policy) Roles() RoleMap {
	return p.roles
}

// DeriveFormShape определяет поля формы по выбранной функции.
// roster — все пользователи; editingID — id редактируемого пользователя
// (nil при создании).
func (p *Policy) DeriveFormShape(fonction *int64, roster []model.Utilisateur, editingID *int64) FormShape {
	role := p.roles.Resolve(fonction)
	shape := FormShape{
		Role:             role,
		PasswordRequired: editingID == nil,
	}

	switch role {
	case RoleMultiCentre:
		shape.Centres = FieldState{Shown: true, Required: true}

	case RoleAgent:
		shape.Centre = FieldState{Shown: true, Required: true}
		shape.ChefEquipe = CandidateField{
			Shown:      true,
			Label:      LabelSuperviseur,
			Candidates: activeWithFonction(roster, p.roles.Superviseur, nil),
		}

	case RoleConfirmateur:
		shape.Centre = FieldState{Shown: true, Required: true}
		shape.ChefEquipe = CandidateField{
			Shown:      true,
			Label:      LabelREConfirmation,
			Candidates: activeWithFonction(roster, p.roles.REConfirmation, editingID),
		}

	default:
		shape.Centre = FieldState{Shown: true, Required: true}
		if p.hasSubordinateAgents(roster, editingID) || p.mayLeadAgents(role) {
			shape.RPQualif = CandidateField{
				Shown:      true,
				Candidates: activeWithFonction(roster, p.roles.RPQualif, editingID),
			}
		}
	}

	return shape
}

// hasSubordinateAgents — есть ли активный агент, у которого chef_equipe
// указывает на редактируемого пользователя.
func (p *Policy) hasSubordinateAgents(roster []model.Utilisateur, editingID *int64) bool {
	if editingID == nil || p.roles.Agent == 0 {
		return false
	}
	for _, u := range roster {
		if u.Active() && u.HasFonction(p.roles.Agent) &&
			u.ChefEquipe != nil && *u.ChefEquipe == *editingID {
			return true
		}
	}
	return false
}

// mayLeadAgents — роль не входит в {Agent, RPQualif, Confirmateur, не выбрана}.
func (p *Policy) mayLeadAgents(role Role) bool {
	switch role {
	case RoleNone, RoleAgent, RoleRPQualif, RoleConfirmateur:
		return false
	default:
		return true
	}
}

// activeWithFonction возвращает активных пользователей с функцией fonctionID,
// исключая exclude (если задан).
func activeWithFonction(roster []model.Utilisateur, fonctionID int64, exclude *int64) []model.Utilisateur {
	out := make([]model.Utilisateur, 0)
	if fonctionID == 0 {
		return out
	}
	for _, u := range roster {
		if !u.Active() || !u.HasFonction(fonctionID) {
			continue
		}
		if exclude != nil && u.ID == *exclude {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SwitchFonction меняет функцию в черновике и очищает поля, которые
// перестали быть применимы:
//   - chef_equipe — при уходе с Agent или Confirmateur;
//   - centre — при переходе на мультицентровую функцию;
//   - centres — при уходе с неё.
func (p *Policy) SwitchFonction(draft *model.Utilisateur, fonction *int64) {
	from := p.roles.Resolve(draft.Fonction)
	to := p.roles.Resolve(fonction)
	draft.Fonction = fonction

	if (from == RoleAgent || from == RoleConfirmateur) && to != from {
		draft.ChefEquipe = nil
	}
	if to == RoleMultiCentre && from != RoleMultiCentre {
		draft.Centre = nil
	}
	if from == RoleMultiCentre && to != RoleMultiCentre {
		draft.Centres = nil
	}
}

// ValidateSubmit проверяет черновик перед отправкой в API.
// Для мультицентровой функции первый выбранный центр дублируется в centre
// (только если проверка прошла).
// Возвращает *model.ValidationError при первой найденной ошибке.
func (p *Policy) ValidateSubmit(draft *model.Utilisateur, roster []model.Utilisateur, editingID *int64) error {
	role := p.roles.Resolve(draft.Fonction)

	if role == RoleMultiCentre {
		if len(draft.Centres) == 0 {
			return model.NewLocalizedValidationError("centres", "validation.centres_required",
				"для мультицентровой функции нужен хотя бы один центр")
		}
	} else if draft.Centre == nil {
		return model.NewLocalizedValidationError("centre", "validation.centre_required",
			"центр обязателен")
	}

	if editingID == nil && strings.TrimSpace(draft.Password) == "" {
		return model.NewLocalizedValidationError("password", "validation.password_required",
			"пароль обязателен при создании пользователя")
	}

	if draft.ChefEquipe != nil && !isActiveOther(roster, *draft.ChefEquipe, editingID) {
		return model.NewLocalizedValidationError("chef_equipe", "validation.reference_invalid",
			"chef_equipe должен ссылаться на другого активного пользователя")
	}
	if draft.IDRPQualif != nil && !isActiveOther(roster, *draft.IDRPQualif, editingID) {
		return model.NewLocalizedValidationError("id_rp_qualif", "validation.reference_invalid",
			"id_rp_qualif должен ссылаться на другого активного пользователя")
	}

	// Черновик меняется только после успешной проверки.
	if role == RoleMultiCentre {
		first := draft.Centres[0]
		draft.Centre = &first
	}
	return nil
}

// isActiveOther — id принадлежит активному пользователю и не совпадает с self.
func isActiveOther(roster []model.Utilisateur, id int64, self *int64) bool {
	if self != nil && id == *self {
		return false
	}
	for _, u := range roster {
		if u.ID == id {
			return u.Active()
		}
	}
	return false
}

// MergeEdit накладывает отправленную форму редактирования на сохранённую
// запись. Поля, которых нет в форме для новой функции, берутся из stored;
// при смене функции они очищаются по правилам SwitchFonction. Пароль
// берётся из формы: пустой означает «не менять».
func (p *Policy) MergeEdit(stored, posted model.Utilisateur, roster []model.Utilisateur) model.Utilisateur {
	merged := stored
	p.SwitchFonction(&merged, posted.Fonction)

	merged.Nom = posted.Nom
	merged.Prenom = posted.Prenom
	merged.Pseudo = posted.Pseudo
	merged.Login = posted.Login
	merged.Password = posted.Password
	merged.Etat = posted.Etat

	shape := p.DeriveFormShape(posted.Fonction, roster, &stored.ID)
	if shape.Centre.Shown {
		merged.Centre = posted.Centre
	}
	if shape.Centres.Shown {
		merged.Centres = posted.Centres
	}
	if shape.ChefEquipe.Shown {
		merged.ChefEquipe = posted.ChefEquipe
	}
	if shape.RPQualif.Shown {
		merged.IDRPQualif = posted.IDRPQualif
	}
	return merged
}

// PrepareForEdit возвращает копию пользователя для формы редактирования:
// пароль никогда не подставляется.
func PrepareForEdit(u model.Utilisateur) model.Utilisateur {
	u.Password = ""
	return u
}
