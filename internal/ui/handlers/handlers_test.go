package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/rolepolicy"
	"github.com/bigkaa/refadmin/internal/repository"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// memSource — источник записей в памяти вместо Management API.
type memSource[T model.Record] struct {
	mu      sync.Mutex
	items   []T
	listErr error
	created []T
	updated []T
	deleted []int64
}

func (s *memSource[T]) List(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return slices.Clone(s.items), nil
}

func (s *memSource[T]) Create(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, rec)
	return nil
}

func (s *memSource[T]) Update(_ context.Context, _ int64, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, rec)
	return nil
}

func (s *memSource[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memSource[T]) snapshot() (created, updated []T, deleted []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.created), slices.Clone(s.updated), slices.Clone(s.deleted)
}

// fakeIssuer — выпуск токена с фиксированным ответом.
type fakeIssuer struct{}

func (fakeIssuer) GenerateToken(context.Context, int64) (*model.GeneratedToken, error) {
	return &model.GeneratedToken{Token: "opaque-token", ExpiresIn: 600}, nil
}

// noFonctions — список функций недоступен: роли только из конфигурации.
type noFonctions struct{}

func (noFonctions) ListFonctions(context.Context, bool) ([]model.Fonction, error) {
	return nil, errors.New("недоступно")
}

func centre(id int64, titre string) model.Centre {
	return model.Centre{ID: id, Titre: model.StrPtr(titre), Etat: model.EtatActive}
}

func user(id, fonction int64) model.Utilisateur {
	return model.Utilisateur{
		ID:       id,
		Nom:      model.StrPtr("Martin"),
		Pseudo:   model.StrPtr("u" + string(rune('0'+id))),
		Login:    model.StrPtr("login"),
		Fonction: model.Int64Ptr(fonction),
		Centre:   model.Int64Ptr(1),
		Etat:     model.EtatActive,
	}
}

const (
	fonctionAgent       = 3
	fonctionSuperviseur = 4
	fonctionMulti       = 9
)

// testConsole — роутер консоли с экранами centres и utilisateurs.
type testConsole struct {
	router  chi.Router
	centres *memSource[model.Centre]
	users   *memSource[model.Utilisateur]
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	logger := testLogger()

	centresSrc := &memSource[model.Centre]{items: []model.Centre{
		centre(1, "Lyon"), centre(2, "Paris"), centre(3, "Lille"),
	}}
	usersSrc := &memSource[model.Utilisateur]{items: []model.Utilisateur{
		user(1, fonctionSuperviseur), user(2, fonctionAgent),
	}}
	fonctionsSrc := &memSource[model.Fonction]{items: []model.Fonction{
		{ID: fonctionAgent, Titre: model.StrPtr("Agent"), Etat: 1},
		{ID: fonctionSuperviseur, Titre: model.StrPtr("Superviseur"), Etat: 1},
		{ID: fonctionMulti, Titre: model.StrPtr("Multi"), Etat: 1},
	}}

	centres := service.NewCatalog[model.Centre]("centres", centresSrc, filter.CentreFields, service.CatalogOptions{}, logger)
	usersCat := service.NewCatalog[model.Utilisateur]("utilisateurs", usersSrc, filter.UtilisateurFields, service.CatalogOptions{}, logger)
	fonctions := service.NewCatalog[model.Fonction]("fonctions", fonctionsSrc, filter.FonctionFields, service.CatalogOptions{}, logger)
	usersCat.SetReferenceCheck(service.UtilisateurReferences(fonctions, centres))
	t.Cleanup(func() {
		centres.Wait()
		usersCat.Wait()
	})

	roles := service.NewRoleService(noFonctions{}, rolepolicy.RoleTitles{}, rolepolicy.RoleMap{
		Agent:       fonctionAgent,
		Superviseur: fonctionSuperviseur,
		MultiCentre: fonctionMulti,
	}, time.Minute, logger)
	users := service.NewUserService(usersCat, roles, fakeIssuer{}, logger)

	tabs := []string{"centres", "utilisateurs"}
	prefs := service.NewPreferencesService(repository.NewMemoryPreferenceStore(100, time.Hour), tabs, logger)
	shell := NewShell(tabs, prefs, logger)

	screens := []Screen{
		NewEntityHandler(centres, centreColumns, titledForm(
			func(c model.Centre) (*string, int) { return c.Titre, c.Etat },
			func(id int64, titre *string, etat int) model.Centre {
				return model.Centre{ID: id, Titre: titre, Etat: etat}
			},
		), shell, logger),
		NewUsersHandler(users, centres, fonctions, shell, logger),
	}

	r := chi.NewRouter()
	r.Route("/ui", func(r chi.Router) {
		r.Get("/", shell.HandleIndex)
		r.Post("/lang", HandleSetLanguage)
		for _, s := range screens {
			r.Route("/"+s.Entity(), s.Routes)
		}
	})
	return &testConsole{router: r, centres: centresSrc, users: usersSrc}
}

func (c *testConsole) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func TestEntityHandler_ListFullAndPartial(t *testing.T) {
	c := newTestConsole(t)

	full := c.do(http.MethodGet, "/ui/centres", nil, false)
	if full.Code != http.StatusOK {
		t.Fatalf("статус = %d", full.Code)
	}
	if !strings.Contains(full.Body.String(), "<!DOCTYPE html>") {
		t.Error("обычный запрос должен получить полную страницу")
	}

	partial := c.do(http.MethodGet, "/ui/centres", nil, true)
	body := partial.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("HTMX-запрос должен получить только фрагмент")
	}
	for _, want := range []string{"Lyon", "Paris", "Lille", "col.titre", "etat.1"} {
		if !strings.Contains(body, want) {
			t.Errorf("в списке нет %q", want)
		}
	}
}

func TestEntityHandler_SearchPersisted(t *testing.T) {
	c := newTestConsole(t)

	first := c.do(http.MethodGet, "/ui/centres?q=li", nil, true).Body.String()
	if !strings.Contains(first, "Lille") || strings.Contains(first, "Paris") {
		t.Fatalf("фильтр не применён: %s", first)
	}

	// Без q используется сохранённая строка поиска
	second := c.do(http.MethodGet, "/ui/centres", nil, true).Body.String()
	if !strings.Contains(second, "Lille") || strings.Contains(second, "Paris") {
		t.Error("строка поиска не сохранилась")
	}

	// Пустой q сбрасывает поиск
	third := c.do(http.MethodGet, "/ui/centres?q=", nil, true).Body.String()
	if !strings.Contains(third, "Paris") {
		t.Error("пустой q должен сбросить поиск")
	}
}

func TestShell_HandleIndexRedirectsToActiveTab(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodGet, "/ui/", nil, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/ui/centres" {
		t.Errorf("по умолчанию: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	c.do(http.MethodGet, "/ui/utilisateurs", nil, true)
	rec = c.do(http.MethodGet, "/ui/", nil, false)
	if rec.Header().Get("Location") != "/ui/utilisateurs" {
		t.Errorf("активная вкладка не сохранилась: %q", rec.Header().Get("Location"))
	}
}

func TestEntityHandler_Create(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodPost, "/ui/centres", url.Values{"titre": {"Nantes"}, "etat": {"1"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != views.EventChanged {
		t.Errorf("HX-Trigger = %q", rec.Header().Get("HX-Trigger"))
	}
	if rec.Header().Get("HX-Retarget") != views.TargetAlerts {
		t.Errorf("HX-Retarget = %q", rec.Header().Get("HX-Retarget"))
	}
	if !strings.Contains(rec.Body.String(), "alert.created") {
		t.Errorf("нет уведомления об успехе: %s", rec.Body.String())
	}

	created, _, _ := c.centres.snapshot()
	if len(created) != 1 || model.Deref(created[0].Titre) != "Nantes" || created[0].Etat != model.EtatActive {
		t.Errorf("создано: %+v", created)
	}
}

func TestEntityHandler_CreateValidationKeepsForm(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodPost, "/ui/centres", url.Values{"titre": {"  "}}, true)
	body := rec.Body.String()

	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("при ошибке событие изменения не отправляется")
	}
	if !strings.Contains(body, "alert-warning") || !strings.Contains(body, "col.titre : ") {
		t.Errorf("нет предупреждения с подписью поля: %s", body)
	}
	if !strings.Contains(body, `hx-post="/ui/centres"`) {
		t.Error("форма должна остаться открытой")
	}
	if created, _, _ := c.centres.snapshot(); len(created) != 0 {
		t.Errorf("запись не должна создаваться: %+v", created)
	}
}

func TestEntityHandler_Update(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodPost, "/ui/centres/2", url.Values{"titre": {"Paris 2"}}, true)
	if rec.Header().Get("HX-Trigger") != views.EventChanged {
		t.Fatalf("изменение не выполнено: %s", rec.Body.String())
	}
	_, updated, _ := c.centres.snapshot()
	if len(updated) != 1 || updated[0].ID != 2 || updated[0].Etat != 0 {
		t.Errorf("изменено: %+v", updated)
	}
}

func TestEntityHandler_Form(t *testing.T) {
	c := newTestConsole(t)

	create := c.do(http.MethodGet, "/ui/centres/form", nil, true).Body.String()
	if !strings.Contains(create, `hx-post="/ui/centres"`) || !strings.Contains(create, "checked") {
		t.Errorf("форма создания: %s", create)
	}

	edit := c.do(http.MethodGet, "/ui/centres/form?id=3", nil, true).Body.String()
	if !strings.Contains(edit, `hx-post="/ui/centres/3"`) || !strings.Contains(edit, `value="Lille"`) {
		t.Errorf("форма изменения: %s", edit)
	}

	missing := c.do(http.MethodGet, "/ui/centres/form?id=42", nil, true).Body.String()
	if !strings.Contains(missing, "alert.not_found") {
		t.Errorf("неизвестная запись: %s", missing)
	}
}

func TestEntityHandler_DeleteRequiresConfirmation(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodDelete, "/ui/centres/1", nil, true)
	if !strings.Contains(rec.Body.String(), "alert.confirm_required") {
		t.Errorf("без подтверждения: %s", rec.Body.String())
	}
	if _, _, deleted := c.centres.snapshot(); len(deleted) != 0 {
		t.Fatal("удаление без подтверждения выполнено")
	}

	rec = c.do(http.MethodDelete, "/ui/centres/1?confirm=true", nil, true)
	if rec.Header().Get("HX-Trigger") != views.EventChanged {
		t.Errorf("HX-Trigger = %q", rec.Header().Get("HX-Trigger"))
	}
	if _, _, deleted := c.centres.snapshot(); !slices.Equal(deleted, []int64{1}) {
		t.Errorf("удалено: %v", deleted)
	}
}

func TestEntityHandler_BadID(t *testing.T) {
	c := newTestConsole(t)
	if rec := c.do(http.MethodDelete, "/ui/centres/abc?confirm=true", nil, true); rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, ожидается 400", rec.Code)
	}
}

func TestEntityHandler_Export(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(http.MethodGet, "/ui/centres/export.csv?q=lyon", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "centres") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\uFEFF") || !strings.Contains(body, "Lyon") || strings.Contains(body, "Paris") {
		t.Errorf("CSV: %q", body)
	}

	xlsx := c.do(http.MethodGet, "/ui/centres/export.xlsx", nil, false)
	if !strings.HasPrefix(xlsx.Body.String(), "PK") {
		t.Error("XLSX должен быть zip-архивом")
	}

	empty := c.do(http.MethodGet, "/ui/centres/export.csv?q=zzz", nil, false)
	if !strings.Contains(empty.Body.String(), "alert.empty_export") {
		t.Errorf("пустая выгрузка: %s", empty.Body.String())
	}
}

func TestEntityHandler_ListError(t *testing.T) {
	c := newTestConsole(t)
	c.centres.mu.Lock()
	c.centres.listErr = errors.New("connection refused")
	c.centres.mu.Unlock()

	body := c.do(http.MethodGet, "/ui/centres", nil, true).Body.String()
	if !strings.Contains(body, "alert-error") || !strings.Contains(body, "alert.internal") {
		t.Errorf("ошибка загрузки: %s", body)
	}
}

func TestUsersHandler_FormFollowsFonction(t *testing.T) {
	c := newTestConsole(t)

	agent := c.do(http.MethodGet, "/ui/utilisateurs/form?prev_fonction=&fonction=3", nil, true).Body.String()
	if !strings.Contains(agent, `name="chef_equipe"`) || !strings.Contains(agent, `name="centre"`) {
		t.Errorf("форма агента: %s", agent)
	}
	if !strings.Contains(agent, rolepolicy.LabelSuperviseur) {
		t.Error("подпись chef_equipe для агента — Superviseur")
	}

	multi := c.do(http.MethodGet, "/ui/utilisateurs/form?prev_fonction=3&fonction=9&centre=1&chef_equipe=1", nil, true).Body.String()
	if !strings.Contains(multi, `name="centres_ids"`) {
		t.Error("мультицентровая функция: нет выбора центров")
	}
	if strings.Contains(multi, `name="chef_equipe"`) || strings.Contains(multi, `name="centre"`) {
		t.Errorf("неприменимые поля не скрыты: %s", multi)
	}
}

func TestUsersHandler_EditNeverShowsPassword(t *testing.T) {
	c := newTestConsole(t)
	c.users.mu.Lock()
	c.users.items[0].Password = "secret"
	c.users.mu.Unlock()

	body := c.do(http.MethodGet, "/ui/utilisateurs/form?id=1", nil, true).Body.String()
	if strings.Contains(body, "secret") {
		t.Error("пароль не должен подставляться в форму")
	}
	if !strings.Contains(body, `hx-post="/ui/utilisateurs/1"`) {
		t.Errorf("форма изменения: %s", body)
	}
}

func TestUsersHandler_CreateRequiresPassword(t *testing.T) {
	c := newTestConsole(t)

	form := url.Values{
		"nom": {"Durand"}, "pseudo": {"dd"}, "login": {"durand"},
		"fonction": {"4"}, "centre": {"1"}, "etat": {"1"},
	}
	rec := c.do(http.MethodPost, "/ui/utilisateurs", form, true)
	if rec.Header().Get("HX-Trigger") != "" || !strings.Contains(rec.Body.String(), "col.password") {
		t.Errorf("без пароля: %s", rec.Body.String())
	}

	form.Set("password", "s3cret")
	rec = c.do(http.MethodPost, "/ui/utilisateurs", form, true)
	if rec.Header().Get("HX-Trigger") != views.EventChanged {
		t.Fatalf("создание: %s", rec.Body.String())
	}
	created, _, _ := c.users.snapshot()
	if len(created) != 1 || created[0].Password != "s3cret" || model.Deref(created[0].Login) != "durand" {
		t.Errorf("создано: %+v", created)
	}
}

func TestUsersHandler_CreateUnknownReference(t *testing.T) {
	tests := []struct {
		name  string
		set   url.Values
		alert string
	}{
		{"неизвестная функция", url.Values{"fonction": {"777"}}, "col.fonction : ссылка на несуществующую запись fonctions"},
		{"неизвестный центр", url.Values{"centre": {"999"}}, "col.centre : ссылка на несуществующую запись centres"},
		{
			"неизвестный центр мультицентра",
			url.Values{"fonction": {"9"}, "centres_ids": {"1", "999"}},
			"col.centres_ids : ссылка на несуществующую запись centres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConsole(t)
			form := url.Values{
				"nom": {"Durand"}, "pseudo": {"dd"}, "login": {"durand"}, "password": {"s3cret"},
				"fonction": {"4"}, "centre": {"1"}, "etat": {"1"},
			}
			for k, v := range tt.set {
				form[k] = v
			}

			rec := c.do(http.MethodPost, "/ui/utilisateurs", form, true)
			body := rec.Body.String()
			if rec.Header().Get("HX-Trigger") != "" {
				t.Fatalf("запись с несуществующей ссылкой принята: %s", body)
			}
			if !strings.Contains(body, tt.alert) {
				t.Errorf("ожидается %q: %s", tt.alert, body)
			}
			if created, _, _ := c.users.snapshot(); len(created) != 0 {
				t.Errorf("запись ушла в API: %+v", created)
			}
		})
	}
}

func TestUsersHandler_UpdateKeepsHiddenFields(t *testing.T) {
	c := newTestConsole(t)
	c.users.mu.Lock()
	c.users.items[1].IDRPQualif = model.Int64Ptr(1)
	c.users.mu.Unlock()

	// Форма агента не содержит id_rp_qualif
	form := url.Values{
		"nom": {"Martin"}, "pseudo": {"u2"}, "login": {"login"},
		"fonction": {"3"}, "centre": {"2"}, "etat": {"1"},
	}
	rec := c.do(http.MethodPost, "/ui/utilisateurs/2", form, true)
	if rec.Header().Get("HX-Trigger") != views.EventChanged {
		t.Fatalf("изменение: %s", rec.Body.String())
	}

	_, updated, _ := c.users.snapshot()
	if len(updated) != 1 {
		t.Fatalf("updated = %+v", updated)
	}
	got := updated[0]
	if got.IDRPQualif == nil || *got.IDRPQualif != 1 {
		t.Errorf("id_rp_qualif = %v, ожидается 1", got.IDRPQualif)
	}
	if got.ID != 2 || got.Centre == nil || *got.Centre != 2 || got.Password != "" {
		t.Errorf("обновлено: %+v", got)
	}
}

func TestUsersHandler_Token(t *testing.T) {
	c := newTestConsole(t)

	body := c.do(http.MethodPost, "/ui/utilisateurs/2/token", nil, true).Body.String()
	if !strings.Contains(body, "opaque-token") || !strings.Contains(body, "token.title") {
		t.Errorf("панель токена: %s", body)
	}

	rec := c.do(http.MethodPost, "/ui/utilisateurs/77/token", nil, true)
	if rec.Header().Get("HX-Retarget") != views.TargetAlerts || !strings.Contains(rec.Body.String(), "alert.not_found") {
		t.Errorf("неизвестный пользователь: %s", rec.Body.String())
	}
}

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		referer  string
		wantLang string
		wantLoc  string
	}{
		{"english", "en", "http://example.com/ui/etats?page=2", "en", "/ui/etats?page=2"},
		{"unsupported", "de", "", "fr", "/ui/"},
		{"foreign referer", "fr", "http://evil.test/x", "fr", "/ui/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/ui/lang",
				strings.NewReader(url.Values{"lang": {tt.lang}}.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			HandleSetLanguage(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("статус = %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLoc)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Value != tt.wantLang {
				t.Errorf("cookie = %+v", cookies)
			}
		})
	}
}

func TestFormReader(t *testing.T) {
	f := newFormReader(url.Values{
		"titre":  {"  Lyon "},
		"ordre":  {"x"},
		"taux":   {"12,5"},
		"groups": {"1", "", "3"},
	})

	if got := model.Deref(f.str("titre")); got != "Lyon" {
		t.Errorf("str = %q", got)
	}
	if f.str("absent") != nil {
		t.Error("пустое поле должно быть nil")
	}
	if d := f.amount("taux"); !d.Valid || d.Decimal.String() != "12.5" {
		t.Errorf("amount = %+v", d)
	}
	if ids := f.ids("groups"); !slices.Equal([]int64(ids), []int64{1, 3}) {
		t.Errorf("ids = %v", ids)
	}
	if f.err != nil {
		t.Fatalf("неожиданная ошибка: %v", f.err)
	}

	if got := f.number("ordre", 7); got != 7 {
		t.Errorf("number = %d, ожидается значение по умолчанию", got)
	}
	var verr *model.ValidationError
	if !errors.As(f.err, &verr) || verr.Field != "ordre" {
		t.Errorf("ожидается ValidationError поля ordre, получено %v", f.err)
	}
}
