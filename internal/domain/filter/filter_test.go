package filter

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// strPtr — вспомогательная функция для создания *string.
func strPtr(s string) *string {
	return &s
}

func centres() []model.Centre {
	return []model.Centre{
		{ID: 1, Titre: strPtr("Paris Nord")},
		{ID: 42, Titre: strPtr("Lyon")},
		{ID: 7, Titre: nil},
		{ID: 14, Titre: strPtr("Marseille PARIS")},
	}
}

func ids[T model.Record](records []T) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.RecordID())
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter_Centres(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []int64
	}{
		{name: "пустой запрос — без изменений", query: "", expected: []int64{1, 42, 7, 14}},
		{name: "только пробелы — без изменений", query: "   ", expected: []int64{1, 42, 7, 14}},
		{name: "регистронезависимо, порядок сохраняется", query: "paris", expected: []int64{1, 14}},
		{name: "совпадение только по id", query: "4", expected: []int64{42, 14}},
		{name: "nil-поле не совпадает", query: "zzz", expected: []int64{}},
		{name: "id 7 находится при nil titre", query: "7", expected: []int64{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(centres(), tt.query, CentreFields))
			if !equalIDs(got, tt.expected) {
				t.Errorf("Filter(%q) = %v, ожидается %v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	once := Filter(centres(), "a", CentreFields)
	twice := Filter(once, "a", CentreFields)
	if !equalIDs(ids(once), ids(twice)) {
		t.Errorf("повторная фильтрация изменила результат: %v → %v", ids(once), ids(twice))
	}
}

func TestFilter_Utilisateurs(t *testing.T) {
	users := []model.Utilisateur{
		{ID: 100, Nom: strPtr("Durand"), Prenom: strPtr("Alice"), Pseudo: strPtr("adurand"), FonctionTitre: strPtr("Agent")},
		{ID: 101, Nom: strPtr("Martin"), Login: strPtr("bmartin"), CentreTitre: strPtr("Lille")},
		{ID: 102, Nom: strPtr("Petit")},
	}

	got := ids(Filter(users, "LILLE", UtilisateurFields))
	if !equalIDs(got, []int64{101}) {
		t.Errorf("поиск по centre_titre = %v, ожидается [101]", got)
	}

	got = ids(Filter(users, "agent", UtilisateurFields))
	if !equalIDs(got, []int64{100}) {
		t.Errorf("поиск по fonction_titre = %v, ожидается [100]", got)
	}
}

func TestFilter_EtatTaux(t *testing.T) {
	etats := []model.Etat{
		{ID: 1, Titre: strPtr("Validé"), Taux: decimal.NewNullDecimal(decimal.RequireFromString("12.5"))},
		{ID: 2, Titre: strPtr("Annulé")},
	}

	got := ids(Filter(etats, "12.5", EtatFields))
	if !equalIDs(got, []int64{1}) {
		t.Errorf("поиск по taux = %v, ожидается [1]", got)
	}
}

func TestFilter_QueryKeepsInnerSpaces(t *testing.T) {
	got := ids(Filter(centres(), "paris nord", CentreFields))
	if !equalIDs(got, []int64{1}) {
		t.Errorf("Filter(\"paris nord\") = %v, ожидается [1]", got)
	}
}
