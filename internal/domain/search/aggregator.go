// Пакет search — глобальный поиск по всем справочникам.
// Типы обходятся в фиксированном порядке, результат ограничен MaxResults.
package search

import (
	"strings"

	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
)

// MaxResults — максимальное количество результатов глобального поиска.
const MaxResults = 20

// Type — тип справочника в результатах поиска.
type Type string

const (
	TypeCentres        Type = "centres"
	TypeUtilisateurs   Type = "utilisateurs"
	TypeDepartements   Type = "departements"
	TypeProduits       Type = "produits"
	TypeFonctions      Type = "fonctions"
	TypeEtats          Type = "etats"
	TypeProfessions    Type = "professions"
	TypeTypesContrat   Type = "types-contrat"
	TypeModesChauffage Type = "modes-chauffage"
	TypeInstallateurs  Type = "installateurs"
)

// Order — порядок обхода типов.
var Order = []Type{
	TypeCentres,
	TypeUtilisateurs,
	TypeDepartements,
	TypeProduits,
	TypeFonctions,
	TypeEtats,
	TypeProfessions,
	TypeTypesContrat,
	TypeModesChauffage,
	TypeInstallateurs,
}

// Result — найденная запись.
type Result struct {
	Type   Type         `json:"type"`
	ID     int64        `json:"id"`
	Label  string       `json:"label"`
	Record model.Record `json:"-"`
}

// Datasets — загруженные списки справочников. Отсутствующий (nil) список
// просто не даёт результатов.
type Datasets struct {
	Centres        []model.Centre
	Utilisateurs   []model.Utilisateur
	Departements   []model.Departement
	Produits       []model.Produit
	Fonctions      []model.Fonction
	Etats          []model.Etat
	Professions    []model.Profession
	TypesContrat   []model.TypeContrat
	ModesChauffage []model.ModeChauffage
	Installateurs  []model.Installateur
}

// Aggregate ищет query во всех справочниках. Пустой запрос — пустой результат.
// Запись подходит по тем же правилам, что и фильтр списка (поисковые поля
// и десятичный id), а также по подписи. Регистр не учитывается.
func Aggregate(query string, data Datasets) []Result {
	if filter.IsBlank(query) {
		return []Result{}
	}
	q := filter.Normalize(query)

	c := &collector{query: q, out: make([]Result, 0, MaxResults)}
	for _, t := range Order {
		if c.full() {
			break
		}
		switch t {
		case TypeCentres:
			collect(c, t, data.Centres, filter.CentreFields, CentreLabel)
		case TypeUtilisateurs:
			collect(c, t, data.Utilisateurs, filter.UtilisateurFields, UtilisateurLabel)
		case TypeDepartements:
			collect(c, t, data.Departements, filter.DepartementFields, DepartementLabel)
		case TypeProduits:
			collect(c, t, data.Produits, filter.ProduitFields, titled(func(p model.Produit) *string { return p.Titre }))
		case TypeFonctions:
			collect(c, t, data.Fonctions, filter.FonctionFields, titled(func(f model.Fonction) *string { return f.Titre }))
		case TypeEtats:
			collect(c, t, data.Etats, filter.EtatFields, EtatLabel)
		case TypeProfessions:
			collect(c, t, data.Professions, filter.ProfessionFields, titled(func(p model.Profession) *string { return p.Titre }))
		case TypeTypesContrat:
			collect(c, t, data.TypesContrat, filter.TypeContratFields, titled(func(tc model.TypeContrat) *string { return tc.Titre }))
		case TypeModesChauffage:
			collect(c, t, data.ModesChauffage, filter.ModeChauffageFields, titled(func(m model.ModeChauffage) *string { return m.Titre }))
		case TypeInstallateurs:
			collect(c, t, data.Installateurs, filter.InstallateurFields, titled(func(i model.Installateur) *string { return i.Titre }))
		}
	}
	return c.out
}

// collector накапливает результаты до MaxResults.
type collector struct {
	query string
	out   []Result
}

func (c *collector) full() bool { return len(c.out) >= MaxResults }

// collect добавляет подходящие записи одного типа.
func collect[T model.Record](c *collector, t Type, records []T, fields []filter.Field[T], label func(T) string) {
	for _, rec := range records {
		if c.full() {
			return
		}
		l := label(rec)
		if !filter.Matches(rec, c.query, fields) && !strings.Contains(strings.ToLower(l), c.query) {
			continue
		}
		c.out = append(c.out, Result{Type: t, ID: rec.RecordID(), Label: l, Record: rec})
	}
}

// --- Подписи ---

// CentreLabel — подпись центра.
func CentreLabel(c model.Centre) string { return model.Deref(c.Titre) }

// UtilisateurLabel — подпись пользователя: "{pseudo} ({nom} {prenom})".
func UtilisateurLabel(u model.Utilisateur) string {
	return model.Deref(u.Pseudo) + " (" + model.Deref(u.Nom) + " " + model.Deref(u.Prenom) + ")"
}

// DepartementLabel — подпись департамента: "{code} - {titre}".
func DepartementLabel(d model.Departement) string {
	return model.Deref(d.Code) + " - " + model.Deref(d.Titre)
}

// EtatLabel — подпись состояния: "{titre} ({abbreviation})".
func EtatLabel(e model.Etat) string {
	if e.Abbreviation == nil || *e.Abbreviation == "" {
		return model.Deref(e.Titre)
	}
	return model.Deref(e.Titre) + " (" + *e.Abbreviation + ")"
}

// titled строит подпись из поля titre.
func titled[T any](titre func(T) *string) func(T) string {
	return func(rec T) string { return model.Deref(titre(rec)) }
}
