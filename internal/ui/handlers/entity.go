// entity.go — экран справочника: список с поиском и пагинацией,
// модальная форма, удаление с подтверждением, выгрузка CSV/XLSX.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/refadmin/internal/domain/export"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// Column — колонка таблицы и выгрузки.
type Column[T any] struct {
	// Key — имя поля (заголовок — перевод "col.{Key}")
	Key   string
	Value func(T) any
	// Translate — ячейка показывает перевод "{Key}.{значение}"
	Translate bool
	// Swatch — значение является цветом
	Swatch bool
}

// FormSpec — поля формы и разбор отправленной формы.
type FormSpec[T any] struct {
	Fields func(ctx context.Context, rec T) ([]views.Field, error)
	// Parse собирает запись из формы; id — редактируемая запись (0 при создании)
	Parse func(form url.Values, id int64) (T, error)
	// Draft — начальные значения формы создания (может быть nil)
	Draft func() T
}

// Screen — экран справочника, монтируемый в /ui/{entity}.
type Screen interface {
	Entity() string
	Routes(r chi.Router)
}

// EntityHandler — обработчики экрана одного справочника.
type EntityHandler[T model.Record] struct {
	entity  string
	catalog *service.Catalog[T]
	columns []Column[T]
	form    FormSpec[T]
	actions views.RowActions
	shell   *Shell
	logger  *slog.Logger
}

// NewEntityHandler создаёт экран справочника.
func NewEntityHandler[T model.Record](
	catalog *service.Catalog[T],
	columns []Column[T],
	form FormSpec[T],
	shell *Shell,
	logger *slog.Logger,
) *EntityHandler[T] {
	return &EntityHandler[T]{
		entity:  catalog.Name(),
		catalog: catalog,
		columns: columns,
		form:    form,
		actions: views.RowActions{Edit: true, Delete: true},
		shell:   shell,
		logger:  logger.With(slog.String("component", "ui.entity"), slog.String("entity", catalog.Name())),
	}
}

// Entity возвращает имя справочника.
func (h *EntityHandler[T]) Entity() string { return h.entity }

// Routes регистрирует маршруты экрана.
func (h *EntityHandler[T]) Routes(r chi.Router) {
	h.mountList(r)
	r.Get("/form", h.HandleForm)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}", h.HandleUpdate)
}

// mountList — маршруты списка, удаления и выгрузки.
func (h *EntityHandler[T]) mountList(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/export.csv", h.HandleExport(service.ExportCSV))
	r.Get("/export.xlsx", h.HandleExport(service.ExportXLSX))
	r.Delete("/{id}", h.HandleDelete)
}

// HandleList обрабатывает GET /ui/{entity} — экран списка.
// Параметры: q (поиск), page, per_page.
func (h *EntityHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := h.shell.listQuery(r, h.entity)

	page, err := h.catalog.View(ctx, q)
	if err != nil {
		h.logger.Warn("Ошибка загрузки списка", slog.String("error", err.Error()))
		h.shell.renderScreen(w, r, h.entity, views.Alert(alertFor(ctx, err)))
		return
	}

	h.shell.renderScreen(w, r, h.entity, views.Screen(h.screenData(ctx, page)))
}

// screenData преобразует страницу в данные экрана.
func (h *EntityHandler[T]) screenData(ctx context.Context, page *service.Page[T]) views.ScreenData {
	headers := make([]string, len(h.columns))
	for i, col := range h.columns {
		headers[i] = i18n.T(ctx, "col."+col.Key)
	}

	rows := make([]views.Row, 0, len(page.Items))
	for _, rec := range page.Items {
		cells := make([]views.Cell, len(h.columns))
		for i, col := range h.columns {
			cells[i] = cell(ctx, col, rec)
		}
		rows = append(rows, views.Row{ID: rec.RecordID(), Cells: cells})
	}

	return views.ScreenData{
		Entity:         h.entity,
		Headers:        headers,
		Rows:           rows,
		Actions:        h.actions,
		Search:         page.Search,
		Page:           page.Page,
		PerPage:        page.PerPage,
		TotalItems:     page.TotalItems,
		TotalPages:     page.TotalPages,
		Start:          page.Start,
		End:            page.End,
		Window:         page.Window,
		Nav:            page.Nav,
		PerPageOptions: service.PerPageOptions,
		Pending:        h.catalog.Pending(),
	}
}

// cell форматирует значение колонки для таблицы.
func cell[T any](ctx context.Context, col Column[T], rec T) views.Cell {
	text := export.FormatValue(col.Value(rec))
	c := views.Cell{Text: text}
	switch {
	case text == "":
	case col.Translate:
		c.Text = i18n.T(ctx, col.Key+"."+text)
	case col.Swatch:
		c.Swatch = text
	}
	return c
}

// HandleForm обрабатывает GET /ui/{entity}/form[?id=] — модальная форма.
func (h *EntityHandler[T]) HandleForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rec T
	var id int64
	if p := queryInt64(r.URL.Query(), "id"); p != nil {
		found, err := h.catalog.Find(ctx, *p)
		if err != nil {
			renderAlert(w, r, alertFor(ctx, err), h.logger)
			return
		}
		rec, id = found, *p
	} else if h.form.Draft != nil {
		rec = h.form.Draft()
	}

	h.renderForm(w, r, id, rec, nil)
}

// HandleCreate обрабатывает POST /ui/{entity} — создание записи.
func (h *EntityHandler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, 0)
}

// HandleUpdate обрабатывает POST /ui/{entity}/{id} — изменение записи.
func (h *EntityHandler[T]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Некорректный идентификатор записи", http.StatusBadRequest)
		return
	}
	h.submit(w, r, id)
}

// submit разбирает форму и отправляет запись в API. При ошибке форма
// остаётся открытой с введёнными данными.
func (h *EntityHandler[T]) submit(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка разбора формы", http.StatusBadRequest)
		return
	}

	rec, err := h.form.Parse(r.PostForm, id)
	if err == nil {
		if id == 0 {
			err = h.catalog.Create(ctx, rec)
		} else {
			err = h.catalog.Update(ctx, id, rec)
		}
	}
	if err != nil {
		alert := alertFor(ctx, err)
		h.renderForm(w, r, id, rec, &alert)
		return
	}

	key := "alert.created"
	if id != 0 {
		key = "alert.updated"
	}
	renderChanged(w, r, key, h.logger)
}

// renderForm отрисовывает форму записи rec.
func (h *EntityHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, id int64, rec T, alert *views.AlertData) {
	fields, err := h.form.Fields(r.Context(), rec)
	if err != nil {
		renderAlert(w, r, alertFor(r.Context(), err), h.logger)
		return
	}
	render(w, r, views.Form(views.FormData{
		Entity: h.entity,
		ID:     id,
		Fields: fields,
		Alert:  alert,
	}), h.logger)
}

// HandleDelete обрабатывает DELETE /ui/{entity}/{id}?confirm=true.
func (h *EntityHandler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Некорректный идентификатор записи", http.StatusBadRequest)
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.catalog.Delete(ctx, id, confirmed); err != nil {
		renderAlert(w, r, alertFor(ctx, err), h.logger)
		return
	}
	renderChanged(w, r, "alert.deleted", h.logger)
}

// HandleExport обрабатывает GET /ui/{entity}/export.{csv,xlsx} — выгрузка
// отфильтрованного списка. Пустой набор — уведомление вместо файла.
func (h *EntityHandler[T]) HandleExport(format service.ExportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		columns := make([]export.Column[T], len(h.columns))
		for i, col := range h.columns {
			columns[i] = export.Column[T]{Key: col.Key, Label: i18n.T(ctx, "col."+col.Key), Value: col.Value}
		}

		file, err := h.catalog.Export(ctx, h.shell.exportSearch(r, h.entity), columns, format)
		if err != nil {
			renderAlert(w, r, alertFor(ctx, err), h.logger)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
		if _, err := w.Write(file.Data); err != nil {
			h.logger.Warn("Ошибка отправки выгрузки", slog.String("error", err.Error()))
		}
	}
}
