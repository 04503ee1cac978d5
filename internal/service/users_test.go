package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/rolepolicy"
)

const (
	fonctionAgent       = 3
	fonctionSuperviseur = 4
	fonctionMulti       = 9
)

// fakeIssuer — TokenIssuer с фиксированным ответом.
type fakeIssuer struct {
	token *model.GeneratedToken
	err   error
	got   int64
}

func (f *fakeIssuer) GenerateToken(_ context.Context, id int64) (*model.GeneratedToken, error) {
	f.got = id
	return f.token, f.err
}

func utilisateur(id, fonction int64) model.Utilisateur {
	return model.Utilisateur{
		ID:       id,
		Nom:      model.StrPtr("Nom"),
		Pseudo:   model.StrPtr("p"),
		Login:    model.StrPtr("login"),
		Fonction: model.Int64Ptr(fonction),
		Centre:   model.Int64Ptr(1),
		Etat:     model.EtatActive,
		Password: "secret",
	}
}

func newUserService(t *testing.T, issuer TokenIssuer) (*UserService, *fakeSource[model.Utilisateur]) {
	t.Helper()
	src := &fakeSource[model.Utilisateur]{items: []model.Utilisateur{
		utilisateur(1, fonctionSuperviseur),
		utilisateur(2, fonctionAgent),
	}}
	users := NewCatalog[model.Utilisateur]("utilisateurs", src, filter.UtilisateurFields, CatalogOptions{}, testLogger())
	roles := NewRoleService(&fakeLister{}, rolepolicy.RoleTitles{}, rolepolicy.RoleMap{
		Agent:       fonctionAgent,
		Superviseur: fonctionSuperviseur,
		MultiCentre: fonctionMulti,
	}, time.Minute, testLogger())
	return NewUserService(users, roles, issuer, testLogger()), src
}

func TestUserService_FormShape(t *testing.T) {
	svc, _ := newUserService(t, &fakeIssuer{})

	shape, err := svc.FormShape(context.Background(), model.Int64Ptr(fonctionAgent), nil)
	if err != nil {
		t.Fatalf("FormShape: %v", err)
	}
	if shape.Role != rolepolicy.RoleAgent || !shape.ChefEquipe.Shown {
		t.Errorf("shape = %+v", shape)
	}
	if len(shape.ChefEquipe.Candidates) != 1 || shape.ChefEquipe.Candidates[0].ID != 1 {
		t.Errorf("кандидаты супервизора: %+v", shape.ChefEquipe.Candidates)
	}
	if !shape.PasswordRequired {
		t.Error("при создании пароль обязателен")
	}
}

func TestUserService_Draft(t *testing.T) {
	svc, _ := newUserService(t, &fakeIssuer{})

	draft, err := svc.Draft(context.Background(), nil)
	if err != nil || draft.ID != 0 || draft.Etat != model.EtatActive {
		t.Errorf("новый черновик = %+v, %v", draft, err)
	}

	draft, err = svc.Draft(context.Background(), model.Int64Ptr(2))
	if err != nil {
		t.Fatalf("Draft(2): %v", err)
	}
	if draft.Password != "" {
		t.Error("пароль не должен подставляться в форму редактирования")
	}
}

func TestUserService_SwitchFonction(t *testing.T) {
	svc, _ := newUserService(t, &fakeIssuer{})
	draft := utilisateur(0, fonctionAgent)
	draft.ChefEquipe = model.Int64Ptr(1)

	svc.SwitchFonction(context.Background(), &draft, model.Int64Ptr(fonctionMulti))
	if draft.ChefEquipe != nil || draft.Centre != nil {
		t.Errorf("после смены функции: chef=%v centre=%v", draft.ChefEquipe, draft.Centre)
	}
}

func TestUserService_Submit(t *testing.T) {
	t.Run("создание", func(t *testing.T) {
		svc, src := newUserService(t, &fakeIssuer{})
		draft := utilisateur(0, fonctionAgent)
		draft.ChefEquipe = model.Int64Ptr(1)

		if err := svc.Submit(context.Background(), draft, nil); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		svc.Catalog().Wait()
		if len(src.created) != 1 {
			t.Errorf("created = %d", len(src.created))
		}
	})

	t.Run("мультицентр копирует первый центр", func(t *testing.T) {
		svc, src := newUserService(t, &fakeIssuer{})
		draft := utilisateur(0, fonctionMulti)
		draft.Centre = nil
		draft.Centres = model.IDList{5, 6}

		if err := svc.Submit(context.Background(), draft, nil); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		svc.Catalog().Wait()
		if got := src.created[0].Centre; got == nil || *got != 5 {
			t.Errorf("centre = %v, ожидается 5", got)
		}
	})

	t.Run("редактирование без пароля", func(t *testing.T) {
		svc, src := newUserService(t, &fakeIssuer{})
		draft := utilisateur(0, fonctionSuperviseur)
		draft.Password = ""

		if err := svc.Submit(context.Background(), draft, model.Int64Ptr(1)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		svc.Catalog().Wait()
		if len(src.updated) != 1 || src.updated[0] != 1 {
			t.Errorf("updated = %v", src.updated)
		}
	})

	t.Run("создание без пароля", func(t *testing.T) {
		svc, src := newUserService(t, &fakeIssuer{})
		draft := utilisateur(0, fonctionSuperviseur)
		draft.Password = ""

		err := svc.Submit(context.Background(), draft, nil)
		var verr *model.ValidationError
		if !errors.As(err, &verr) || verr.Field != "password" {
			t.Errorf("ожидается ошибка поля password, получено %v", err)
		}
		if len(src.created) != 0 {
			t.Error("запись не должна уходить в API")
		}
	})
}

func TestUserService_SubmitEditKeepsHiddenFields(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(u *model.Utilisateur)
		verify func(t *testing.T, got model.Utilisateur)
	}{
		{
			name: "та же функция: id_rp_qualif не в форме агента",
			edit: func(u *model.Utilisateur) {
				u.Nom = model.StrPtr("Renommé")
				u.ChefEquipe = model.Int64Ptr(1)
			},
			verify: func(t *testing.T, got model.Utilisateur) {
				if got.IDRPQualif == nil || *got.IDRPQualif != 1 {
					t.Errorf("id_rp_qualif = %v, ожидается 1", got.IDRPQualif)
				}
				if model.Deref(got.Nom) != "Renommé" || got.ChefEquipe == nil {
					t.Errorf("поля формы не применены: %+v", got)
				}
			},
		},
		{
			name: "смена на мультицентр очищает chef_equipe",
			edit: func(u *model.Utilisateur) {
				u.Fonction = model.Int64Ptr(fonctionMulti)
				u.Centre = nil
				u.Centres = model.IDList{7}
			},
			verify: func(t *testing.T, got model.Utilisateur) {
				if got.ChefEquipe != nil {
					t.Errorf("chef_equipe = %v, ожидается nil", *got.ChefEquipe)
				}
				if got.IDRPQualif == nil || *got.IDRPQualif != 1 {
					t.Errorf("id_rp_qualif = %v, ожидается 1", got.IDRPQualif)
				}
				if got.Centre == nil || *got.Centre != 7 {
					t.Errorf("centre = %v, ожидается 7", got.Centre)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, src := newUserService(t, &fakeIssuer{})
			src.items[1].ChefEquipe = model.Int64Ptr(1)
			src.items[1].IDRPQualif = model.Int64Ptr(1)

			// Форма редактирования агента: без пароля и без id_rp_qualif
			posted := utilisateur(0, fonctionAgent)
			posted.Password = ""
			tt.edit(&posted)

			if err := svc.Submit(context.Background(), posted, model.Int64Ptr(2)); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			svc.Catalog().Wait()
			if len(src.updatedRecs) != 1 {
				t.Fatalf("updated = %v", src.updated)
			}
			got := src.updatedRecs[0]
			if got.ID != 2 || got.Password != "" {
				t.Errorf("id = %d, password = %q", got.ID, got.Password)
			}
			tt.verify(t, got)
		})
	}
}

func TestUserService_GenerateToken(t *testing.T) {
	iat := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	exp := iat.Add(time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "2",
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}

	issuer := &fakeIssuer{token: &model.GeneratedToken{Token: signed, ExpiresIn: 3600}}
	svc, _ := newUserService(t, issuer)

	info, err := svc.GenerateToken(context.Background(), 2)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issuer.got != 2 || info.Token != signed || info.ExpiresIn != 3600 {
		t.Errorf("info = %+v", info)
	}
	if info.Subject != "2" || info.IssuedAt == nil || !info.IssuedAt.Equal(iat) || info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Errorf("claims: sub=%q iat=%v exp=%v", info.Subject, info.IssuedAt, info.ExpiresAt)
	}
}

func TestUserService_GenerateTokenOpaque(t *testing.T) {
	svc, _ := newUserService(t, &fakeIssuer{token: &model.GeneratedToken{Token: "opaque", ExpiresIn: 60}})

	info, err := svc.GenerateToken(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if info.Subject != "" || info.IssuedAt != nil {
		t.Errorf("непрозрачный токен не должен давать claims: %+v", info)
	}
}

func TestUserService_GenerateTokenUnknownUser(t *testing.T) {
	issuer := &fakeIssuer{}
	svc, _ := newUserService(t, issuer)

	if _, err := svc.GenerateToken(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидается ErrNotFound, получено %v", err)
	}
	if issuer.got != 0 {
		t.Error("API не должен вызываться для неизвестного пользователя")
	}
}
