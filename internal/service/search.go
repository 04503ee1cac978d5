// search.go — SearchService: глобальный поиск по всем справочникам.
// Списки загружаются лениво: только при первом Warm или Search.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/search"
)

// Catalogs — справочники консоли.
type Catalogs struct {
	Centres        *Catalog[model.Centre]
	Utilisateurs   *Catalog[model.Utilisateur]
	Departements   *Catalog[model.Departement]
	Produits       *Catalog[model.Produit]
	Fonctions      *Catalog[model.Fonction]
	Etats          *Catalog[model.Etat]
	SousEtats      *Catalog[model.SousEtat]
	Professions    *Catalog[model.Profession]
	TypesContrat   *Catalog[model.TypeContrat]
	ModesChauffage *Catalog[model.ModeChauffage]
	Installateurs  *Catalog[model.Installateur]
}

// SearchService — глобальный поиск.
type SearchService struct {
	cats   *Catalogs
	warmed atomic.Bool
	logger *slog.Logger
}

// NewSearchService создаёт сервис глобального поиска.
func NewSearchService(cats *Catalogs, logger *slog.Logger) *SearchService {
	return &SearchService{
		cats:   cats,
		logger: logger.With(slog.String("service", "search")),
	}
}

// Warmed сообщает, загружались ли уже данные для поиска.
func (s *SearchService) Warmed() bool {
	return s.warmed.Load()
}

// Warm загружает все справочники (вызывается при фокусе на поле поиска).
func (s *SearchService) Warm(ctx context.Context) error {
	_, err := s.datasets(ctx)
	return err
}

// Search ищет query во всех справочниках. limit <= 0 или больше
// search.MaxResults ограничивается search.MaxResults.
// Пустой запрос не загружает данные.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if filter.IsBlank(query) {
		return []search.Result{}, nil
	}

	data, err := s.datasets(ctx)
	if err != nil {
		return nil, err
	}

	results := search.Aggregate(query, data)
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// datasets загружает списки параллельно. Недоступный справочник пропускается
// с предупреждением; ошибка возвращается, только если не загрузился ни один.
func (s *SearchService) datasets(ctx context.Context) (search.Datasets, error) {
	var (
		data   search.Datasets
		mu     sync.Mutex
		failed []error
		total  int
	)

	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, fn func(context.Context) error) {
		total++
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				s.logger.Warn("Справочник недоступен для поиска",
					slog.String("entity", name),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
			return nil
		})
	}

	c := s.cats
	load(c.Centres.Name(), func(ctx context.Context) (err error) {
		data.Centres, err = c.Centres.List(ctx)
		return err
	})
	load(c.Utilisateurs.Name(), func(ctx context.Context) (err error) {
		data.Utilisateurs, err = c.Utilisateurs.List(ctx)
		return err
	})
	load(c.Departements.Name(), func(ctx context.Context) (err error) {
		data.Departements, err = c.Departements.List(ctx)
		return err
	})
	load(c.Produits.Name(), func(ctx context.Context) (err error) {
		data.Produits, err = c.Produits.List(ctx)
		return err
	})
	load(c.Fonctions.Name(), func(ctx context.Context) (err error) {
		data.Fonctions, err = c.Fonctions.List(ctx)
		return err
	})
	load(c.Etats.Name(), func(ctx context.Context) (err error) {
		data.Etats, err = c.Etats.List(ctx)
		return err
	})
	load(c.Professions.Name(), func(ctx context.Context) (err error) {
		data.Professions, err = c.Professions.List(ctx)
		return err
	})
	load(c.TypesContrat.Name(), func(ctx context.Context) (err error) {
		data.TypesContrat, err = c.TypesContrat.List(ctx)
		return err
	})
	load(c.ModesChauffage.Name(), func(ctx context.Context) (err error) {
		data.ModesChauffage, err = c.ModesChauffage.List(ctx)
		return err
	})
	load(c.Installateurs.Name(), func(ctx context.Context) (err error) {
		data.Installateurs, err = c.Installateurs.List(ctx)
		return err
	})

	_ = g.Wait()

	if len(failed) == total {
		return search.Datasets{}, errors.Join(failed...)
	}
	s.warmed.Store(true)
	return data, nil
}
