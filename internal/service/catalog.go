// catalog.go — Catalog: список записей одного справочника.
// Загрузка → фильтрация → пагинация на каждый запрос, изменения через API
// с последующей инвалидацией кэша и фоновой перезагрузкой (refetch-on-write).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/refadmin/internal/domain/export"
	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/paging"
)

// Prometheus-метрики справочников.
var (
	catalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ra_catalog_cache_hits_total",
		Help: "Количество попаданий в кэш списков справочников.",
	}, []string{"entity"})
	catalogCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ra_catalog_cache_misses_total",
		Help: "Количество промахов кэша списков справочников.",
	}, []string{"entity"})
	catalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ra_catalog_mutations_total",
		Help: "Количество операций изменения справочников.",
	}, []string{"entity", "op", "result"})
)

// DefaultPerPage — размер страницы по умолчанию.
const DefaultPerPage = 10

// PerPageOptions — допустимые размеры страницы.
var PerPageOptions = []int{10, 25, 50, 100}

// refetchTimeout — таймаут фоновой перезагрузки после изменения.
const refetchTimeout = 30 * time.Second

// Source — источник записей справочника (Management API).
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, id int64, rec T) error
	Delete(ctx context.Context, id int64) error
}

// Query — параметры отображения списка.
type Query struct {
	Search  string
	Page    int
	PerPage int
}

// Page — одна страница отфильтрованного списка.
type Page[T any] struct {
	Items      []T
	Search     string
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	// Start, End — номера первой и последней записи страницы (с 1)
	Start  int
	End    int
	Window []paging.Token
	Nav    paging.Navigator
}

// ExportFormat — формат выгрузки.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportFile — готовый файл выгрузки.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CatalogOptions — параметры Catalog.
type CatalogOptions struct {
	// TTL кэшированного списка
	TTL time.Duration
	// OnChange вызывается после каждого успешного изменения
	OnChange func()
}

// Catalog — список записей одного справочника с собственным состоянием.
type Catalog[T model.Record] struct {
	name     string
	source   Source[T]
	fields   []filter.Field[T]
	validate *validator.Validate
	onChange func()

	// references — проверка ссылок на другие справочники (может быть nil)
	references ReferenceCheck[T]

	cache   *expirable.LRU[string, []T]
	loads   singleflight.Group
	// gen увеличивается при каждом изменении: загрузка, начатая до
	// изменения, не попадает в кэш
	gen     atomic.Uint64
	pending atomic.Bool
	refetch sync.WaitGroup

	logger *slog.Logger
	now    func() time.Time
}

// NewCatalog создаёт справочник name поверх source.
// fields — поля, по которым ищет фильтр списка.
func NewCatalog[T model.Record](
	name string,
	source Source[T],
	fields []filter.Field[T],
	opts CatalogOptions,
	logger *slog.Logger,
) *Catalog[T] {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	return &Catalog[T]{
		name:     name,
		source:   source,
		fields:   fields,
		validate: newValidator(),
		onChange: opts.OnChange,
		cache:    expirable.NewLRU[string, []T](1, nil, opts.TTL),
		logger:   logger.With(slog.String("component", "catalog"), slog.String("entity", name)),
		now:      time.Now,
	}
}

// Name возвращает имя справочника.
func (c *Catalog[T]) Name() string { return c.name }

// List возвращает все записи справочника (из кэша или из API).
// Параллельные промахи объединяются в один запрос к API.
func (c *Catalog[T]) List(ctx context.Context) ([]T, error) {
	if items, ok := c.cache.Get(c.name); ok {
		catalogCacheHits.WithLabelValues(c.name).Inc()
		return items, nil
	}
	catalogCacheMisses.WithLabelValues(c.name).Inc()

	v, err, _ := c.loads.Do(c.name, func() (any, error) {
		return c.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// load загружает список из API и кладёт его в кэш.
func (c *Catalog[T]) load(ctx context.Context) ([]T, error) {
	start := c.now()
	gen := c.gen.Load()
	items, err := c.source.List(ctx)
	if err != nil {
		c.logger.Warn("Ошибка загрузки списка",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("загрузка %s: %w", c.name, err)
	}
	if c.gen.Load() != gen {
		c.logger.Debug("Список изменился во время загрузки, кэш не обновлён")
		return items, nil
	}
	c.cache.Add(c.name, items)
	c.logger.Debug("Список загружен",
		slog.Int("count", len(items)),
		slog.Duration("duration", c.now().Sub(start)),
	)
	return items, nil
}

// Refresh принудительно перезагружает список.
func (c *Catalog[T]) Refresh(ctx context.Context) error {
	c.Invalidate()
	_, err := c.List(ctx)
	return err
}

// Invalidate сбрасывает кэш без перезагрузки. Загрузки, которые уже
// выполняются, результат в кэш не положат, следующий List идёт в API.
func (c *Catalog[T]) Invalidate() {
	c.gen.Add(1)
	c.loads.Forget(c.name)
	c.cache.Remove(c.name)
}

// Find возвращает запись по id.
func (c *Catalog[T]) Find(ctx context.Context, id int64) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, rec := range items {
		if rec.RecordID() == id {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%w: %s/%d", ErrNotFound, c.name, id)
}

// Filtered возвращает записи, подходящие под поисковый запрос.
func (c *Catalog[T]) Filtered(ctx context.Context, search string) ([]T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Filter(items, search, c.fields), nil
}

// View возвращает страницу отфильтрованного списка. Страница за пределами
// [1, totalPages] сбрасывается на 1.
func (c *Catalog[T]) View(ctx context.Context, q Query) (*Page[T], error) {
	filtered, err := c.Filtered(ctx, q.Search)
	if err != nil {
		return nil, err
	}
	return Paginate(filtered, q), nil
}

// Paginate строит страницу из уже отфильтрованного списка.
func Paginate[T any](filtered []T, q Query) *Page[T] {
	perPage := q.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := len(filtered)
	totalPages := paging.TotalPages(total, perPage)
	current := paging.Normalize(q.Page, totalPages)
	lo, hi := paging.Bounds(current, perPage, total)
	start, end := paging.Range(current, perPage, total)

	return &Page[T]{
		Items:      filtered[lo:hi],
		Search:     q.Search,
		Page:       current,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		Window:     paging.Window(current, totalPages),
		Nav:        paging.Navigator{Current: current, Total: totalPages},
	}
}

// --- Изменения ---

// Validate проверяет запись по тегам validate модели.
func (c *Catalog[T]) Validate(rec T) error {
	return validateRecord(c.validate, rec)
}

// check проверяет теги validate и ссылки на другие справочники.
func (c *Catalog[T]) check(ctx context.Context, rec T) error {
	if err := c.Validate(rec); err != nil {
		return err
	}
	if c.references == nil {
		return nil
	}
	return c.references(ctx, rec)
}

// Create валидирует и создаёт запись.
func (c *Catalog[T]) Create(ctx context.Context, rec T) error {
	if err := c.check(ctx, rec); err != nil {
		return err
	}
	return c.mutate(ctx, "create", 0, func(ctx context.Context) error {
		return c.source.Create(ctx, rec)
	})
}

// Update валидирует и обновляет запись id.
func (c *Catalog[T]) Update(ctx context.Context, id int64, rec T) error {
	if err := c.check(ctx, rec); err != nil {
		return err
	}
	return c.mutate(ctx, "update", id, func(ctx context.Context) error {
		return c.source.Update(ctx, id, rec)
	})
}

// Delete удаляет запись id. confirmed — пользователь подтвердил удаление.
func (c *Catalog[T]) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return c.mutate(ctx, "delete", id, func(ctx context.Context) error {
		return c.source.Delete(ctx, id)
	})
}

// Pending сообщает, выполняется ли сейчас операция изменения.
func (c *Catalog[T]) Pending() bool {
	return c.pending.Load()
}

// mutate выполняет операцию изменения: не более одной одновременно,
// после успеха — инвалидация кэша и фоновая перезагрузка.
func (c *Catalog[T]) mutate(ctx context.Context, op string, id int64, fn func(context.Context) error) error {
	if !c.pending.CompareAndSwap(false, true) {
		return ErrMutationPending
	}
	defer c.pending.Store(false)

	if err := fn(ctx); err != nil {
		catalogMutations.WithLabelValues(c.name, op, "error").Inc()
		c.logger.Warn("Ошибка изменения записи",
			slog.String("op", op),
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return err
	}

	catalogMutations.WithLabelValues(c.name, op, "ok").Inc()
	c.logger.Info("Запись изменена",
		slog.String("op", op),
		slog.Int64("id", id),
	)

	c.Invalidate()
	if c.onChange != nil {
		c.onChange()
	}

	c.refetch.Add(1)
	go func() {
		defer c.refetch.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
		defer cancel()
		if _, err := c.List(ctx); err != nil {
			c.logger.Warn("Ошибка перезагрузки списка после изменения",
				slog.String("error", err.Error()),
			)
		}
	}()
	return nil
}

// Wait ожидает завершения фоновых перезагрузок.
func (c *Catalog[T]) Wait() {
	c.refetch.Wait()
}

// --- Экспорт ---

// Export выгружает отфильтрованный список в CSV или XLSX.
// Пустой набор — export.ErrEmptyExport.
func (c *Catalog[T]) Export(ctx context.Context, search string, columns []export.Column[T], format ExportFormat) (*ExportFile, error) {
	filtered, err := c.Filtered(ctx, search)
	if err != nil {
		return nil, err
	}
	today := c.now()

	switch format {
	case ExportCSV:
		text, err := export.ToCSV(filtered, columns)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Name:        export.FileName(c.name, today),
			ContentType: "text/csv; charset=utf-8",
			Data:        []byte(text),
		}, nil
	case ExportXLSX:
		buf, err := export.ToXLSX(filtered, columns, c.name)
		if err != nil {
			if errors.Is(err, export.ErrEmptyExport) {
				return nil, err
			}
			return nil, fmt.Errorf("выгрузка %s в XLSX: %w", c.name, err)
		}
		return &ExportFile{
			Name:        export.XLSXFileName(c.name, today),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        buf.Bytes(),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
