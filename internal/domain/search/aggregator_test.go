package search

import (
	"fmt"
	"testing"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

func strPtr(s string) *string { return &s }

func TestAggregate_EmptyQuery(t *testing.T) {
	got := Aggregate("  ", Datasets{Centres: []model.Centre{{ID: 1, Titre: strPtr("Paris")}}})
	if len(got) != 0 {
		t.Errorf("пустой запрос должен давать пустой результат, получено %d", len(got))
	}
}

func TestAggregate_OrderAndLabels(t *testing.T) {
	data := Datasets{
		Installateurs: []model.Installateur{{ID: 9, Titre: strPtr("Thermo Paris")}},
		Utilisateurs: []model.Utilisateur{
			{ID: 3, Pseudo: strPtr("jdoe"), Nom: strPtr("Doe"), Prenom: strPtr("Paris")},
		},
		Centres: []model.Centre{{ID: 1, Titre: strPtr("Paris Nord")}, {ID: 2, Titre: strPtr("Lyon")}},
		Etats:   []model.Etat{{ID: 4, Titre: strPtr("Parisien"), Abbreviation: strPtr("PAR")}},
	}

	got := Aggregate("PARIS", data)

	expected := []struct {
		typ   Type
		label string
	}{
		{TypeCentres, "Paris Nord"},
		{TypeUtilisateurs, "jdoe (Doe Paris)"},
		{TypeEtats, "Parisien (PAR)"},
		{TypeInstallateurs, "Thermo Paris"},
	}
	if len(got) != len(expected) {
		t.Fatalf("получено %d результатов, ожидается %d: %+v", len(got), len(expected), got)
	}
	for i, e := range expected {
		if got[i].Type != e.typ || got[i].Label != e.label {
			t.Errorf("результат %d = {%s %q}, ожидается {%s %q}", i, got[i].Type, got[i].Label, e.typ, e.label)
		}
	}
}

func TestAggregate_MatchesLabelComposite(t *testing.T) {
	data := Datasets{
		Departements: []model.Departement{{ID: 75, Code: strPtr("75"), Titre: strPtr("Paris")}},
	}
	got := Aggregate("75 - par", data)
	if len(got) != 1 || got[0].ID != 75 {
		t.Errorf("поиск по составной подписи: %+v", got)
	}
}

func TestAggregate_MatchesID(t *testing.T) {
	data := Datasets{
		Centres:       []model.Centre{{ID: 42, Titre: strPtr("Paris")}, {ID: 7, Titre: strPtr("Lyon")}},
		Utilisateurs:  []model.Utilisateur{{ID: 142, Pseudo: strPtr("jdoe")}},
		Installateurs: []model.Installateur{{ID: 5, Titre: strPtr("Thermo 42")}},
	}

	tests := []struct {
		name  string
		query string
		ids   []int64
	}{
		{name: "id целиком", query: "42", ids: []int64{42, 142, 5}},
		{name: "часть id", query: "14", ids: []int64{142}},
		{name: "id без совпадений", query: "99", ids: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.query, data)
			if len(got) != len(tt.ids) {
				t.Fatalf("получено %d результатов, ожидается %d: %+v", len(got), len(tt.ids), got)
			}
			for i, id := range tt.ids {
				if got[i].ID != id {
					t.Errorf("результат %d: id = %d, ожидается %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestAggregate_CappedAtMax(t *testing.T) {
	centres := make([]model.Centre, 0, 30)
	for i := 1; i <= 30; i++ {
		centres = append(centres, model.Centre{ID: int64(i), Titre: strPtr(fmt.Sprintf("Centre %d", i))})
	}
	data := Datasets{
		Centres:  centres,
		Produits: []model.Produit{{ID: 1, Titre: strPtr("Centre commercial")}},
	}

	got := Aggregate("centre", data)
	if len(got) != MaxResults {
		t.Fatalf("получено %d результатов, ожидается %d", len(got), MaxResults)
	}
	for _, r := range got {
		if r.Type != TypeCentres {
			t.Fatalf("после заполнения лимита центрами не должно быть других типов: %+v", r)
		}
	}
}
