// entities.go — колонки и формы экранов справочников.
package handlers

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/search"
	"github.com/bigkaa/refadmin/internal/mgmtclient"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// Tabs — вкладки консоли в порядке отображения.
var Tabs = []string{
	mgmtclient.ResourceCentres,
	mgmtclient.ResourceUtilisateurs,
	mgmtclient.ResourceDepartements,
	mgmtclient.ResourceProduits,
	mgmtclient.ResourceFonctions,
	mgmtclient.ResourceEtats,
	mgmtclient.ResourceSousEtats,
	mgmtclient.ResourceProfessions,
	mgmtclient.ResourceTypesContrat,
	mgmtclient.ResourceModesChauffage,
	mgmtclient.ResourceInstallateurs,
}

// NewScreens создаёт экраны всех справочников в порядке Tabs.
func NewScreens(cats *service.Catalogs, users *service.UserService, shell *Shell, logger *slog.Logger) []Screen {
	return []Screen{
		NewEntityHandler(cats.Centres, centreColumns, titledForm(
			func(c model.Centre) (*string, int) { return c.Titre, c.Etat },
			func(id int64, titre *string, etat int) model.Centre {
				return model.Centre{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewUsersHandler(users, cats.Centres, cats.Fonctions, shell, logger),
		NewEntityHandler(cats.Departements, departementColumns, departementForm, shell, logger),
		NewEntityHandler(cats.Produits, produitColumns, titledForm(
			func(p model.Produit) (*string, int) { return p.Titre, p.Etat },
			func(id int64, titre *string, etat int) model.Produit {
				return model.Produit{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewEntityHandler(cats.Fonctions, fonctionColumns, fonctionForm(cats.Fonctions), shell, logger),
		NewEntityHandler(cats.Etats, etatColumns, etatForm, shell, logger),
		NewEntityHandler(cats.SousEtats, sousEtatColumns, sousEtatForm(cats.Etats), shell, logger),
		NewEntityHandler(cats.Professions, professionColumns, titledForm(
			func(p model.Profession) (*string, int) { return p.Titre, p.Etat },
			func(id int64, titre *string, etat int) model.Profession {
				return model.Profession{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewEntityHandler(cats.TypesContrat, typeContratColumns, titledForm(
			func(t model.TypeContrat) (*string, int) { return t.Titre, t.Etat },
			func(id int64, titre *string, etat int) model.TypeContrat {
				return model.TypeContrat{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewEntityHandler(cats.ModesChauffage, modeChauffageColumns, titledForm(
			func(m model.ModeChauffage) (*string, int) { return m.Titre, m.Etat },
			func(id int64, titre *string, etat int) model.ModeChauffage {
				return model.ModeChauffage{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewEntityHandler(cats.Installateurs, installateurColumns, installateurForm, shell, logger),
	}
}

// titledForm — форма справочника из полей titre и etat.
func titledForm[T model.Record](
	get func(T) (*string, int),
	build func(id int64, titre *string, etat int) T,
) FormSpec[T] {
	return FormSpec[T]{
		Fields: func(_ context.Context, rec T) ([]views.Field, error) {
			titre, etat := get(rec)
			return []views.Field{textField("titre", titre, true), etatField(etat)}, nil
		},
		Parse: func(form url.Values, id int64) (T, error) {
			f := newFormReader(form)
			return build(id, f.str("titre"), f.etat()), f.err
		},
		Draft: func() T { return build(0, nil, model.EtatActive) },
	}
}

// --- Колонки ---

var centreColumns = []Column[model.Centre]{
	{Key: "id", Value: func(c model.Centre) any { return c.ID }},
	{Key: "titre", Value: func(c model.Centre) any { return c.Titre }},
	{Key: "etat", Value: func(c model.Centre) any { return c.Etat }, Translate: true},
}

var utilisateurColumns = []Column[model.Utilisateur]{
	{Key: "id", Value: func(u model.Utilisateur) any { return u.ID }},
	{Key: "nom", Value: func(u model.Utilisateur) any { return u.Nom }},
	{Key: "prenom", Value: func(u model.Utilisateur) any { return u.Prenom }},
	{Key: "pseudo", Value: func(u model.Utilisateur) any { return u.Pseudo }},
	{Key: "login", Value: func(u model.Utilisateur) any { return u.Login }},
	{Key: "fonction_titre", Value: func(u model.Utilisateur) any { return u.FonctionTitre }},
	{Key: "centre_titre", Value: func(u model.Utilisateur) any { return u.CentreTitre }},
	{Key: "etat", Value: func(u model.Utilisateur) any { return u.Etat }, Translate: true},
}

var departementColumns = []Column[model.Departement]{
	{Key: "id", Value: func(d model.Departement) any { return d.ID }},
	{Key: "code", Value: func(d model.Departement) any { return d.Code }},
	{Key: "titre", Value: func(d model.Departement) any { return d.Titre }},
	{Key: "etat", Value: func(d model.Departement) any { return d.Etat }, Translate: true},
}

var produitColumns = []Column[model.Produit]{
	{Key: "id", Value: func(p model.Produit) any { return p.ID }},
	{Key: "titre", Value: func(p model.Produit) any { return p.Titre }},
	{Key: "etat", Value: func(p model.Produit) any { return p.Etat }, Translate: true},
}

var fonctionColumns = []Column[model.Fonction]{
	{Key: "id", Value: func(f model.Fonction) any { return f.ID }},
	{Key: "titre", Value: func(f model.Fonction) any { return f.Titre }},
	{Key: "groupes_messages_autorises", Value: func(f model.Fonction) any { return f.GroupesMessagesAutorises }},
	{Key: "etat", Value: func(f model.Fonction) any { return f.Etat }, Translate: true},
}

var etatColumns = []Column[model.Etat]{
	{Key: "id", Value: func(e model.Etat) any { return e.ID }},
	{Key: "titre", Value: func(e model.Etat) any { return e.Titre }},
	{Key: "abbreviation", Value: func(e model.Etat) any { return e.Abbreviation }},
	{Key: "groupe", Value: func(e model.Etat) any { return e.Groupe }},
	{Key: "taux", Value: func(e model.Etat) any {
		if !e.Taux.Valid {
			return nil
		}
		return e.Taux.Decimal
	}},
	{Key: "couleur", Value: func(e model.Etat) any { return e.Couleur }, Swatch: true},
	{Key: "ordre", Value: func(e model.Etat) any { return e.Ordre }},
	{Key: "impact", Value: func(e model.Etat) any { return string(e.Impact) }, Translate: true},
}

var sousEtatColumns = []Column[model.SousEtat]{
	{Key: "id", Value: func(s model.SousEtat) any { return s.ID }},
	{Key: "titre", Value: func(s model.SousEtat) any { return s.Titre }},
	{Key: "etat_titre", Value: func(s model.SousEtat) any { return s.EtatTitre }},
}

var professionColumns = []Column[model.Profession]{
	{Key: "id", Value: func(p model.Profession) any { return p.ID }},
	{Key: "titre", Value: func(p model.Profession) any { return p.Titre }},
	{Key: "etat", Value: func(p model.Profession) any { return p.Etat }, Translate: true},
}

var typeContratColumns = []Column[model.TypeContrat]{
	{Key: "id", Value: func(t model.TypeContrat) any { return t.ID }},
	{Key: "titre", Value: func(t model.TypeContrat) any { return t.Titre }},
	{Key: "etat", Value: func(t model.TypeContrat) any { return t.Etat }, Translate: true},
}

var modeChauffageColumns = []Column[model.ModeChauffage]{
	{Key: "id", Value: func(m model.ModeChauffage) any { return m.ID }},
	{Key: "titre", Value: func(m model.ModeChauffage) any { return m.Titre }},
	{Key: "etat", Value: func(m model.ModeChauffage) any { return m.Etat }, Translate: true},
}

var installateurColumns = []Column[model.Installateur]{
	{Key: "id", Value: func(i model.Installateur) any { return i.ID }},
	{Key: "titre", Value: func(i model.Installateur) any { return i.Titre }},
	{Key: "contact", Value: func(i model.Installateur) any { return i.Contact }},
	{Key: "telephone", Value: func(i model.Installateur) any { return i.Telephone }},
	{Key: "etat", Value: func(i model.Installateur) any { return i.Etat }, Translate: true},
}

// --- Формы ---

var departementForm = FormSpec[model.Departement]{
	Fields: func(_ context.Context, d model.Departement) ([]views.Field, error) {
		return []views.Field{
			textField("code", d.Code, true),
			textField("titre", d.Titre, true),
			etatField(d.Etat),
		}, nil
	},
	Parse: func(form url.Values, id int64) (model.Departement, error) {
		f := newFormReader(form)
		return model.Departement{ID: id, Code: f.str("code"), Titre: f.str("titre"), Etat: f.etat()}, f.err
	},
	Draft: func() model.Departement { return model.Departement{Etat: model.EtatActive} },
}

// fonctionForm — форма функции; разрешённые группы сообщений выбираются
// из списка функций.
func fonctionForm(fonctions *service.Catalog[model.Fonction]) FormSpec[model.Fonction] {
	return FormSpec[model.Fonction]{
		Fields: func(ctx context.Context, fn model.Fonction) ([]views.Field, error) {
			all, err := fonctions.List(ctx)
			if err != nil {
				return nil, err
			}
			return []views.Field{
				textField("titre", fn.Titre, true),
				multiSelectField("groupes_messages_autorises", fn.GroupesMessagesAutorises,
					options(all, func(f model.Fonction) string { return model.Deref(f.Titre) }), false),
				etatField(fn.Etat),
			}, nil
		},
		Parse: func(form url.Values, id int64) (model.Fonction, error) {
			f := newFormReader(form)
			return model.Fonction{
				ID:                       id,
				Titre:                    f.str("titre"),
				GroupesMessagesAutorises: f.ids("groupes_messages_autorises"),
				Etat:                     f.etat(),
			}, f.err
		},
		Draft: func() model.Fonction { return model.Fonction{Etat: model.EtatActive} },
	}
}

var etatForm = FormSpec[model.Etat]{
	Fields: func(ctx context.Context, e model.Etat) ([]views.Field, error) {
		taux := ""
		if e.Taux.Valid {
			taux = e.Taux.Decimal.String()
		}
		impacts := []model.Impact{model.ImpactPositive, model.ImpactNegative, model.ImpactNeutre}
		impactOptions := make([]views.Option, len(impacts))
		for i, imp := range impacts {
			impactOptions[i] = views.Option{Value: string(imp), Label: i18n.T(ctx, "impact."+string(imp))}
		}
		return []views.Field{
			textField("titre", e.Titre, true),
			textField("abbreviation", e.Abbreviation, false),
			textField("groupe", e.Groupe, false),
			{Name: "taux", Kind: views.FieldNumber, Value: taux, Step: "0.01"},
			{Name: "couleur", Kind: views.FieldColor, Value: model.Deref(e.Couleur)},
			{Name: "ordre", Kind: views.FieldNumber, Value: strconv.Itoa(e.Ordre), Step: "1"},
			{Name: "impact", Kind: views.FieldSelect, Value: string(e.Impact), Options: impactOptions},
		}, nil
	},
	Draft: func() model.Etat { return model.Etat{Impact: model.ImpactNeutre} },
	Parse: func(form url.Values, id int64) (model.Etat, error) {
		f := newFormReader(form)
		return model.Etat{
			ID:           id,
			Titre:        f.str("titre"),
			Abbreviation: f.str("abbreviation"),
			Groupe:       f.str("groupe"),
			Taux:         f.amount("taux"),
			Couleur:      f.str("couleur"),
			Ordre:        f.number("ordre", 0),
			Impact:       model.Impact(model.Deref(f.str("impact"))),
		}, f.err
	},
}

// sousEtatForm — форма подсостояния; состояние выбирается из справочника etats.
func sousEtatForm(etats *service.Catalog[model.Etat]) FormSpec[model.SousEtat] {
	return FormSpec[model.SousEtat]{
		Fields: func(ctx context.Context, s model.SousEtat) ([]views.Field, error) {
			all, err := etats.List(ctx)
			if err != nil {
				return nil, err
			}
			var selected *int64
			if s.IDEtat != 0 {
				selected = &s.IDEtat
			}
			return []views.Field{
				textField("titre", s.Titre, true),
				selectField("id_etat", selected, options(all, search.EtatLabel), true),
			}, nil
		},
		Parse: func(form url.Values, id int64) (model.SousEtat, error) {
			f := newFormReader(form)
			rec := model.SousEtat{ID: id, Titre: f.str("titre")}
			if etat := f.id("id_etat"); etat != nil {
				rec.IDEtat = *etat
			}
			return rec, f.err
		},
	}
}

var installateurForm = FormSpec[model.Installateur]{
	Fields: func(_ context.Context, i model.Installateur) ([]views.Field, error) {
		return []views.Field{
			textField("titre", i.Titre, true),
			textField("contact", i.Contact, false),
			textField("telephone", i.Telephone, false),
			etatField(i.Etat),
		}, nil
	},
	Parse: func(form url.Values, id int64) (model.Installateur, error) {
		f := newFormReader(form)
		return model.Installateur{
			ID:        id,
			Titre:     f.str("titre"),
			Contact:   f.str("contact"),
			Telephone: f.str("telephone"),
			Etat:      f.etat(),
		}, f.err
	},
	Draft: func() model.Installateur { return model.Installateur{Etat: model.EtatActive} },
}
