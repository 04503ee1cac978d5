package model

// Utilisateur — пользователь внешней системы.
// Centre и Centres взаимоисключающие: Centres заполняется только для
// мультицентровой функции (см. rolepolicy).
type Utilisateur struct {
	ID            int64   `json:"id"`
	Nom           *string `json:"nom" validate:"required"`
	Prenom        *string `json:"prenom"`
	Pseudo        *string `json:"pseudo" validate:"required"`
	Login         *string `json:"login" validate:"required"`
	Password      string  `json:"password,omitempty"`
	Fonction      *int64  `json:"fonction" validate:"required"`
	FonctionTitre *string `json:"fonction_titre,omitempty"`
	Centre        *int64  `json:"centre"`
	CentreTitre   *string `json:"centre_titre,omitempty"`
	Centres       IDList  `json:"centres_ids"`
	ChefEquipe    *int64  `json:"chef_equipe"`
	IDRPQualif    *int64  `json:"id_rp_qualif"`
	Etat          int     `json:"etat" validate:"oneof=0 1"`
}

// RecordID возвращает идентификатор записи.
func (u Utilisateur) RecordID() int64 { return u.ID }

// Active сообщает, активен ли пользователь.
func (u Utilisateur) Active() bool { return u.Etat == EtatActive }

// HasFonction сообщает, совпадает ли функция пользователя с id.
func (u Utilisateur) HasFonction(id int64) bool {
	return u.Fonction != nil && *u.Fonction == id
}

// GeneratedToken — токен, выданный API для пользователя.
type GeneratedToken struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Int64Ptr возвращает указатель на v.
func Int64Ptr(v int64) *int64 {
	return &v
}
