package mgmtclient

import (
	"context"
	"net/url"
)

// Имена коллекций Management API.
const (
	ResourceCentres        = "centres"
	ResourceUtilisateurs   = "utilisateurs"
	ResourceDepartements   = "departements"
	ResourceProduits       = "produits"
	ResourceFonctions      = "fonctions"
	ResourceEtats          = "etats"
	ResourceSousEtats      = "sous-etats"
	ResourceProfessions    = "professions"
	ResourceTypesContrat   = "types-contrat"
	ResourceModesChauffage = "modes-chauffage"
	ResourceInstallateurs  = "installateurs"
)

// Resource — типизированная коллекция API. Реализует интерфейс источника
// данных сервисного слоя для одной сущности.
type Resource[T any] struct {
	client *Client
	name   string
	query  url.Values
}

// NewResource создаёт типизированную коллекцию name.
func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

// WithQuery возвращает копию коллекции с параметрами GET-запроса списка.
func (r *Resource[T]) WithQuery(q url.Values) *Resource[T] {
	cp := *r
	cp.query = q
	return &cp
}

// Name возвращает имя коллекции.
func (r *Resource[T]) Name() string { return r.name }

// List загружает все записи коллекции.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return List[T](ctx, r.client, r.name, r.query)
}

// Create создаёт запись.
func (r *Resource[T]) Create(ctx context.Context, rec T) error {
	return r.client.Create(ctx, r.name, rec)
}

// Update обновляет запись id.
func (r *Resource[T]) Update(ctx context.Context, id int64, rec T) error {
	return r.client.Update(ctx, r.name, id, rec)
}

// Delete удаляет запись id.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, r.name, id)
}
