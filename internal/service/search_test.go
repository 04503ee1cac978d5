package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/search"
)

// testCatalogs собирает справочники поверх fakeSource.
// centresErr делает справочник центров недоступным.
func testCatalogs(centresErr error) (*Catalogs, *fakeSource[model.Centre]) {
	log := testLogger()
	centres := &fakeSource[model.Centre]{
		items:   []model.Centre{centre(1, "Lyon Nord"), centre(2, "Paris")},
		listErr: centresErr,
	}
	return &Catalogs{
		Centres: NewCatalog[model.Centre]("centres", centres, filter.CentreFields, CatalogOptions{}, log),
		Utilisateurs: NewCatalog[model.Utilisateur]("utilisateurs", &fakeSource[model.Utilisateur]{
			items: []model.Utilisateur{{ID: 5, Nom: model.StrPtr("Lyonnais"), Prenom: model.StrPtr("Jean")}},
		}, filter.UtilisateurFields, CatalogOptions{}, log),
		Departements:   NewCatalog[model.Departement]("departements", &fakeSource[model.Departement]{}, filter.DepartementFields, CatalogOptions{}, log),
		Produits:       NewCatalog[model.Produit]("produits", &fakeSource[model.Produit]{}, filter.ProduitFields, CatalogOptions{}, log),
		Fonctions:      NewCatalog[model.Fonction]("fonctions", &fakeSource[model.Fonction]{}, filter.FonctionFields, CatalogOptions{}, log),
		Etats:          NewCatalog[model.Etat]("etats", &fakeSource[model.Etat]{}, filter.EtatFields, CatalogOptions{}, log),
		SousEtats:      NewCatalog[model.SousEtat]("sous-etats", &fakeSource[model.SousEtat]{}, filter.SousEtatFields, CatalogOptions{}, log),
		Professions:    NewCatalog[model.Profession]("professions", &fakeSource[model.Profession]{}, filter.ProfessionFields, CatalogOptions{}, log),
		TypesContrat:   NewCatalog[model.TypeContrat]("types-contrat", &fakeSource[model.TypeContrat]{}, filter.TypeContratFields, CatalogOptions{}, log),
		ModesChauffage: NewCatalog[model.ModeChauffage]("modes-chauffage", &fakeSource[model.ModeChauffage]{}, filter.ModeChauffageFields, CatalogOptions{}, log),
		Installateurs:  NewCatalog[model.Installateur]("installateurs", &fakeSource[model.Installateur]{}, filter.InstallateurFields, CatalogOptions{}, log),
	}, centres
}

func TestSearchService_Search(t *testing.T) {
	cats, _ := testCatalogs(nil)
	svc := NewSearchService(cats, testLogger())

	results, err := svc.Search(context.Background(), "lyon", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("результатов %d, ожидается 2: %+v", len(results), results)
	}
	if results[0].Type != search.TypeCentres || results[1].Type != search.TypeUtilisateurs {
		t.Errorf("порядок типов: %s, %s", results[0].Type, results[1].Type)
	}
	if !svc.Warmed() {
		t.Error("после поиска данные должны считаться загруженными")
	}

	limited, _ := svc.Search(context.Background(), "lyon", 1)
	if len(limited) != 1 {
		t.Errorf("limit=1: результатов %d", len(limited))
	}
}

func TestSearchService_BlankQueryDoesNotLoad(t *testing.T) {
	cats, centres := testCatalogs(nil)
	svc := NewSearchService(cats, testLogger())

	results, err := svc.Search(context.Background(), "   ", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("пустой запрос: %v, %v", results, err)
	}
	if centres.lists.Load() != 0 || svc.Warmed() {
		t.Error("пустой запрос не должен загружать справочники")
	}
}

func TestSearchService_SkipsUnavailable(t *testing.T) {
	cats, _ := testCatalogs(errors.New("down"))
	svc := NewSearchService(cats, testLogger())

	results, err := svc.Search(context.Background(), "lyon", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Type != search.TypeUtilisateurs {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchService_Warm(t *testing.T) {
	cats, centres := testCatalogs(nil)
	svc := NewSearchService(cats, testLogger())

	if err := svc.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if centres.lists.Load() != 1 {
		t.Errorf("Warm должен загрузить справочник центров")
	}
}
