// references.go — проверка ссылок записи на другие справочники перед
// отправкой в API: подсостояние → состояние, пользователь → функция и центры.
package service

import (
	"context"
	"errors"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// ReferenceCheck проверяет ссылки записи. Ссылка на отсутствующую запись —
// *model.ValidationError, недоступный справочник — ошибка загрузки.
type ReferenceCheck[T any] func(ctx context.Context, rec T) error

// SetReferenceCheck задаёт проверку ссылок для Create и Update.
// Вызывается при сборке справочников, до обработки запросов.
func (c *Catalog[T]) SetReferenceCheck(check ReferenceCheck[T]) {
	c.references = check
}

// LinkReferences подключает проверки ссылок между справочниками.
func (cs *Catalogs) LinkReferences() {
	if cs.SousEtats != nil && cs.Etats != nil {
		cs.SousEtats.SetReferenceCheck(SousEtatReferences(cs.Etats))
	}
	if cs.Utilisateurs != nil && cs.Fonctions != nil && cs.Centres != nil {
		cs.Utilisateurs.SetReferenceCheck(UtilisateurReferences(cs.Fonctions, cs.Centres))
	}
}

// SousEtatReferences — id_etat должен указывать на существующее состояние.
func SousEtatReferences(etats *Catalog[model.Etat]) ReferenceCheck[model.SousEtat] {
	return func(ctx context.Context, s model.SousEtat) error {
		return requireRecord(ctx, etats, "id_etat", s.IDEtat)
	}
}

// UtilisateurReferences — функция и центры пользователя должны существовать.
func UtilisateurReferences(fonctions *Catalog[model.Fonction], centres *Catalog[model.Centre]) ReferenceCheck[model.Utilisateur] {
	return func(ctx context.Context, u model.Utilisateur) error {
		if u.Fonction != nil {
			if err := requireRecord(ctx, fonctions, "fonction", *u.Fonction); err != nil {
				return err
			}
		}
		if u.Centre != nil {
			if err := requireRecord(ctx, centres, "centre", *u.Centre); err != nil {
				return err
			}
		}
		for _, id := range u.Centres {
			if err := requireRecord(ctx, centres, "centres_ids", id); err != nil {
				return err
			}
		}
		return nil
	}
}

// requireRecord проверяет, что в справочнике cat есть запись id.
// Нулевой id пропускается: обязательность проверяют теги validate.
func requireRecord[R model.Record](ctx context.Context, cat *Catalog[R], field string, id int64) error {
	if id == 0 {
		return nil
	}
	_, err := cat.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return model.NewLocalizedValidationError(field, "validation.reference_missing",
			"ссылка на несуществующую запись "+cat.Name())
	}
	return err
}
