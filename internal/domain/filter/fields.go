package filter

import (
	"github.com/bigkaa/refadmin/internal/domain/model"
)

// Наборы полей поиска по сущностям. Таблица фиксирована: изменение набора
// меняет поведение поиска в UI и в глобальном поиске.
var (
	CentreFields = []Field[model.Centre]{
		func(c model.Centre) *string { return c.Titre },
	}

	UtilisateurFields = []Field[model.Utilisateur]{
		func(u model.Utilisateur) *string { return u.Nom },
		func(u model.Utilisateur) *string { return u.Prenom },
		func(u model.Utilisateur) *string { return u.Pseudo },
		func(u model.Utilisateur) *string { return u.Login },
		func(u model.Utilisateur) *string { return u.FonctionTitre },
		func(u model.Utilisateur) *string { return u.CentreTitre },
	}

	DepartementFields = []Field[model.Departement]{
		func(d model.Departement) *string { return d.Code },
		func(d model.Departement) *string { return d.Titre },
	}

	ProduitFields = []Field[model.Produit]{
		func(p model.Produit) *string { return p.Titre },
	}

	FonctionFields = []Field[model.Fonction]{
		func(f model.Fonction) *string { return f.Titre },
	}

	EtatFields = []Field[model.Etat]{
		func(e model.Etat) *string { return e.Titre },
		func(e model.Etat) *string { return e.Abbreviation },
		func(e model.Etat) *string { return e.Groupe },
		func(e model.Etat) *string {
			if !e.Taux.Valid {
				return nil
			}
			s := e.Taux.Decimal.String()
			return &s
		},
	}

	SousEtatFields = []Field[model.SousEtat]{
		func(s model.SousEtat) *string { return s.Titre },
		func(s model.SousEtat) *string { return s.EtatTitre },
	}

	ProfessionFields = []Field[model.Profession]{
		func(p model.Profession) *string { return p.Titre },
	}

	TypeContratFields = []Field[model.TypeContrat]{
		func(t model.TypeContrat) *string { return t.Titre },
	}

	ModeChauffageFields = []Field[model.ModeChauffage]{
		func(m model.ModeChauffage) *string { return m.Titre },
	}

	InstallateurFields = []Field[model.Installateur]{
		func(i model.Installateur) *string { return i.Titre },
		func(i model.Installateur) *string { return i.Contact },
		func(i model.Installateur) *string { return i.Telephone },
	}
)
