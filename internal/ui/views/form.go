package views

import (
	"context"
	"slices"

	"github.com/a-h/templ"

	"github.com/bigkaa/refadmin/internal/ui/i18n"
)

// FieldKind — тип поля формы.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldNumber      FieldKind = "number"
	FieldPassword    FieldKind = "password"
	FieldColor       FieldKind = "color"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	FieldCheckbox    FieldKind = "checkbox"
	FieldHidden      FieldKind = "hidden"
)

// Option — вариант выбора.
type Option struct {
	Value string
	Label string
}

// Field — поле формы.
type Field struct {
	Name string
	// Label — подпись; пустая — перевод "col.{Name}"
	Label    string
	Kind     FieldKind
	Value    string
	Values   []string
	Options  []Option
	Required bool
	// Step — шаг для числовых полей
	Step string
	// Reload — при изменении поля форма перерисовывается этим GET-запросом
	Reload string
}

// FormData — модальная форма создания или изменения записи.
type FormData struct {
	Entity string
	// ID — редактируемая запись; 0 — создание
	ID     int64
	Fields []Field
	Alert  *AlertData
}

// Form отрисовывает модальную форму. После отправки ответ заменяет
// содержимое #modal (ошибка) или закрывает окно событием EventChanged.
func Form(d FormData) templ.Component {
	return component(func(ctx context.Context, h *html) {
		action := "/ui/" + d.Entity
		title := i18n.T(ctx, "form.create") + " · " + i18n.T(ctx, "tab."+d.Entity)
		if d.ID != 0 {
			action += "/" + i64toa(d.ID)
			title = i18n.T(ctx, "form.edit") + " · " + i18n.T(ctx, "tab."+d.Entity)
		}

		h.open("div", "class", "modal", "role", "dialog", "aria-modal", "true")
		h.open("form",
			"hx-post", action,
			"hx-target", TargetModal,
			"hx-disabled-elt", "find button[type=submit]",
		)
		h.elem("h2", title)

		if d.Alert != nil {
			h.component(ctx, Alert(*d.Alert))
		}

		for _, f := range d.Fields {
			field(ctx, h, f)
		}

		h.open("div", "class", "form-actions")
		h.elem("button", i18n.T(ctx, "form.save"), "type", "submit", "class", "primary")
		h.elem("button", i18n.T(ctx, "form.cancel"), "type", "button", "data-close-modal", "true")
		h.close("div")

		h.close("form")
		h.close("div")
	})
}

// field отрисовывает одно поле с подписью.
func field(ctx context.Context, h *html, f Field) {
	if f.Kind == FieldHidden {
		h.open("input", "type", "hidden", "name", f.Name, "value", f.Value)
		return
	}

	label := f.Label
	if label == "" {
		label = i18n.T(ctx, "col."+f.Name)
	}
	id := "f-" + f.Name

	h.open("div", "class", "field")
	h.open("label", "for", id)
	h.text(label)
	if f.Required {
		h.raw(` <span class="required">*</span>`)
	}
	h.close("label")

	switch f.Kind {
	case FieldSelect, FieldMultiSelect:
		multiple := f.Kind == FieldMultiSelect
		h.raw("<select")
		h.attr("id", id)
		h.attr("name", f.Name)
		h.flag("multiple", multiple)
		h.flag("required", f.Required)
		reloadAttrs(h, f)
		h.raw(">")
		if !multiple {
			h.elem("option", i18n.T(ctx, "form.choose"), "value", "")
		}
		for _, opt := range f.Options {
			h.begin("option", "value", opt.Value)
			h.flag("selected", opt.Value == f.Value || slices.Contains(f.Values, opt.Value))
			h.end()
			h.text(opt.Label)
			h.close("option")
		}
		h.close("select")

	case FieldCheckbox:
		h.raw(`<input type="checkbox" value="1"`)
		h.attr("id", id)
		h.attr("name", f.Name)
		h.flag("checked", f.Value == "1")
		h.raw(">")

	default:
		h.raw("<input")
		h.attr("id", id)
		h.attr("type", string(f.Kind))
		h.attr("name", f.Name)
		if f.Kind != FieldPassword {
			h.attr("value", f.Value)
		}
		if f.Step != "" {
			h.attr("step", f.Step)
		}
		h.flag("required", f.Required)
		h.raw(">")
	}
	h.close("div")
}

// reloadAttrs — перерисовка формы при изменении поля.
func reloadAttrs(h *html, f Field) {
	if f.Reload == "" {
		return
	}
	h.attr("hx-get", f.Reload)
	h.attr("hx-trigger", "change")
	h.attr("hx-target", TargetModal)
	h.attr("hx-include", "closest form")
}
