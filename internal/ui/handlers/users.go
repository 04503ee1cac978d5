// users.go — экран пользователей: форма с полями, зависящими от функции,
// и генерация токена.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/search"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// usersFormPath — перерисовка формы при смене функции.
const usersFormPath = "/ui/utilisateurs/form"

// UsersHandler — экран пользователей. Список, удаление и выгрузка
// общие со всеми справочниками.
type UsersHandler struct {
	*EntityHandler[model.Utilisateur]

	users     *service.UserService
	centres   *service.Catalog[model.Centre]
	fonctions *service.Catalog[model.Fonction]
}

// NewUsersHandler создаёт экран пользователей.
func NewUsersHandler(
	users *service.UserService,
	centres *service.Catalog[model.Centre],
	fonctions *service.Catalog[model.Fonction],
	shell *Shell,
	logger *slog.Logger,
) *UsersHandler {
	base := NewEntityHandler(users.Catalog(), utilisateurColumns, FormSpec[model.Utilisateur]{}, shell, logger)
	base.actions.Token = true
	return &UsersHandler{
		EntityHandler: base,
		users:         users,
		centres:       centres,
		fonctions:     fonctions,
	}
}

// Routes регистрирует маршруты экрана пользователей.
func (h *UsersHandler) Routes(r chi.Router) {
	h.mountList(r)
	r.Get("/form", h.HandleForm)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}", h.HandleUpdate)
	r.Post("/{id}/token", h.HandleToken)
}

// HandleForm обрабатывает GET /ui/utilisateurs/form.
// Без prev_fonction — открытие формы (?id= для редактирования).
// С prev_fonction — перерисовка после смены функции: введённые значения
// сохраняются, неприменимые к новой функции поля очищаются.
func (h *UsersHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()
	editingID := queryInt64(values, "id")

	var draft model.Utilisateur
	if values.Has("prev_fonction") {
		f := newFormReader(values)
		draft = parseUtilisateur(f)
		next := draft.Fonction
		draft.Fonction = f.id("prev_fonction")
		h.users.SwitchFonction(ctx, &draft, next)
	} else {
		var err error
		draft, err = h.users.Draft(ctx, editingID)
		if err != nil {
			renderAlert(w, r, alertFor(ctx, err), h.logger)
			return
		}
	}

	h.renderUserForm(w, r, draft, editingID, nil)
}

// HandleCreate обрабатывает POST /ui/utilisateurs.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.submitUser(w, r, nil)
}

// HandleUpdate обрабатывает POST /ui/utilisateurs/{id}.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Некорректный идентификатор записи", http.StatusBadRequest)
		return
	}
	h.submitUser(w, r, &id)
}

// submitUser проверяет черновик по правилам функции и отправляет в API.
func (h *UsersHandler) submitUser(w http.ResponseWriter, r *http.Request, editingID *int64) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка разбора формы", http.StatusBadRequest)
		return
	}

	f := newFormReader(r.PostForm)
	draft := parseUtilisateur(f)
	err := f.err
	if err == nil {
		err = h.users.Submit(ctx, draft, editingID)
	}
	if err != nil {
		alert := alertFor(ctx, err)
		draft.Password = ""
		h.renderUserForm(w, r, draft, editingID, &alert)
		return
	}

	key := "alert.created"
	if editingID != nil {
		key = "alert.updated"
	}
	renderChanged(w, r, key, h.logger)
}

// HandleToken обрабатывает POST /ui/utilisateurs/{id}/token.
func (h *UsersHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Некорректный идентификатор записи", http.StatusBadRequest)
		return
	}

	info, err := h.users.GenerateToken(ctx, id)
	if err != nil {
		w.Header().Set("HX-Retarget", views.TargetAlerts)
		w.Header().Set("HX-Reswap", "innerHTML")
		renderAlert(w, r, alertFor(ctx, err), h.logger)
		return
	}

	label := strconv.FormatInt(id, 10)
	if u, err := h.catalog.Find(ctx, id); err == nil {
		label = search.UtilisateurLabel(u)
	}
	render(w, r, views.TokenPanel(label, info), h.logger)
}

// renderUserForm отрисовывает форму с набором полей для функции черновика.
func (h *UsersHandler) renderUserForm(w http.ResponseWriter, r *http.Request, draft model.Utilisateur, editingID *int64, alert *views.AlertData) {
	ctx := r.Context()

	fields, err := h.userFields(ctx, draft, editingID)
	if err != nil {
		renderAlert(w, r, alertFor(ctx, err), h.logger)
		return
	}

	var id int64
	if editingID != nil {
		id = *editingID
	}
	render(w, r, views.Form(views.FormData{
		Entity: h.entity,
		ID:     id,
		Fields: fields,
		Alert:  alert,
	}), h.logger)
}

// userFields строит поля формы по FormShape.
func (h *UsersHandler) userFields(ctx context.Context, draft model.Utilisateur, editingID *int64) ([]views.Field, error) {
	shape, err := h.users.FormShape(ctx, draft.Fonction, editingID)
	if err != nil {
		return nil, err
	}
	fonctions, err := h.fonctions.List(ctx)
	if err != nil {
		return nil, err
	}
	centres, err := h.centres.List(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]views.Field, 0, 14)
	if editingID != nil {
		fields = append(fields, views.Field{Name: "id", Kind: views.FieldHidden, Value: strconv.FormatInt(*editingID, 10)})
	}
	prev := ""
	if draft.Fonction != nil {
		prev = strconv.FormatInt(*draft.Fonction, 10)
	}
	fields = append(fields,
		views.Field{Name: "prev_fonction", Kind: views.FieldHidden, Value: prev},
		textField("nom", draft.Nom, true),
		textField("prenom", draft.Prenom, false),
		textField("pseudo", draft.Pseudo, true),
		textField("login", draft.Login, true),
		views.Field{Name: "password", Kind: views.FieldPassword, Required: shape.PasswordRequired},
	)

	fonction := selectField("fonction", draft.Fonction,
		options(fonctions, func(f model.Fonction) string { return model.Deref(f.Titre) }), true)
	fonction.Reload = usersFormPath
	fields = append(fields, fonction)

	centreOptions := options(centres, search.CentreLabel)
	if shape.Centre.Shown {
		fields = append(fields, selectField("centre", draft.Centre, centreOptions, shape.Centre.Required))
	}
	if shape.Centres.Shown {
		fields = append(fields, multiSelectField("centres_ids", draft.Centres, centreOptions, shape.Centres.Required))
	}
	if shape.ChefEquipe.Shown {
		f := selectField("chef_equipe", draft.ChefEquipe, options(shape.ChefEquipe.Candidates, search.UtilisateurLabel), false)
		f.Label = shape.ChefEquipe.Label
		fields = append(fields, f)
	}
	if shape.RPQualif.Shown {
		fields = append(fields, selectField("id_rp_qualif", draft.IDRPQualif, options(shape.RPQualif.Candidates, search.UtilisateurLabel), false))
	}

	fields = append(fields, etatField(draft.Etat))
	return fields, nil
}

// parseUtilisateur собирает черновик пользователя из формы.
func parseUtilisateur(f *formReader) model.Utilisateur {
	return model.Utilisateur{
		Nom:        f.str("nom"),
		Prenom:     f.str("prenom"),
		Pseudo:     f.str("pseudo"),
		Login:      f.str("login"),
		Password:   f.form.Get("password"),
		Fonction:   f.id("fonction"),
		Centre:     f.id("centre"),
		Centres:    f.ids("centres_ids"),
		ChefEquipe: f.id("chef_equipe"),
		IDRPQualif: f.id("id_rp_qualif"),
		Etat:       f.etat(),
	}
}

