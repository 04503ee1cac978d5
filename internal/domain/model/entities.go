// Пакет model — доменные модели справочников, управляемых через
// внешний Management API. Поля, которые API может не вернуть, — указатели.
package model

import (
	"github.com/shopspring/decimal"
)

// EtatActive — значение флага etat для активной записи.
const EtatActive = 1

// Record — общий интерфейс справочной записи с числовым идентификатором.
type Record interface {
	RecordID() int64
}

// Centre — центр (филиал).
type Centre struct {
	ID    int64   `json:"id"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (c Centre) RecordID() int64 { return c.ID }

// Departement — департамент (административная единица).
type Departement struct {
	ID    int64   `json:"id"`
	Code  *string `json:"code" validate:"required,max=3"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (d Departement) RecordID() int64 { return d.ID }

// Produit — продукт.
type Produit struct {
	ID    int64   `json:"id"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (p Produit) RecordID() int64 { return p.ID }

// Fonction — функция (роль) пользователя.
// GroupesMessagesAutorises — id функций, которым разрешено писать
// пользователям этой функции. Пустой список — разрешено всем.
type Fonction struct {
	ID                       int64   `json:"id"`
	Titre                    *string `json:"titre" validate:"required"`
	Etat                     int     `json:"etat" validate:"oneof=0 1"`
	GroupesMessagesAutorises IDList  `json:"groupes_messages_autorises"`
}

// RecordID возвращает идентификатор записи.
func (f Fonction) RecordID() int64 { return f.ID }

// Impact — знак влияния состояния.
type Impact string

const (
	ImpactPositive Impact = "POSITIVE"
	ImpactNegative Impact = "NEGATIVE"
	ImpactNeutre   Impact = "NEUTRE"
)

// Etat — состояние (статус) с цветом, порядком и знаком влияния.
type Etat struct {
	ID           int64               `json:"id"`
	Titre        *string             `json:"titre" validate:"required"`
	Abbreviation *string             `json:"abbreviation" validate:"omitempty,max=10"`
	Groupe       *string             `json:"groupe"`
	Taux         decimal.NullDecimal `json:"taux"`
	Couleur      *string             `json:"couleur" validate:"omitempty,hexcolor"`
	Ordre        int                 `json:"ordre" validate:"gte=0"`
	Impact       Impact              `json:"impact" validate:"omitempty,oneof=POSITIVE NEGATIVE NEUTRE"`
}

// RecordID возвращает идентификатор записи.
func (e Etat) RecordID() int64 { return e.ID }

// SousEtat — подсостояние, принадлежащее ровно одному Etat.
type SousEtat struct {
	ID        int64   `json:"id"`
	Titre     *string `json:"titre" validate:"required"`
	IDEtat    int64   `json:"id_etat" validate:"required,gt=0"`
	EtatTitre *string `json:"etat_titre,omitempty"`
}

// RecordID возвращает идентификатор записи.
func (s SousEtat) RecordID() int64 { return s.ID }

// Profession — профессия.
type Profession struct {
	ID    int64   `json:"id"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (p Profession) RecordID() int64 { return p.ID }

// TypeContrat — тип договора.
type TypeContrat struct {
	ID    int64   `json:"id"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (t TypeContrat) RecordID() int64 { return t.ID }

// ModeChauffage — способ отопления.
type ModeChauffage struct {
	ID    int64   `json:"id"`
	Titre *string `json:"titre" validate:"required"`
	Etat  int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (m ModeChauffage) RecordID() int64 { return m.ID }

// Installateur — монтажная организация.
type Installateur struct {
	ID        int64   `json:"id"`
	Titre     *string `json:"titre" validate:"required"`
	Contact   *string `json:"contact"`
	Telephone *string `json:"telephone" validate:"omitempty,max=20"`
	Etat      int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (i Installateur) RecordID() int64 { return i.ID }

// StrPtr возвращает указатель на s или nil для пустой строки.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref возвращает значение указателя или пустую строку.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
