// forms.go — разбор отправленных форм и построение полей.
package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// formReader читает значения формы, запоминая первую ошибку разбора.
// Поля с ошибкой остаются пустыми, остальные заполняются: форма
// перерисовывается с введёнными данными.
type formReader struct {
	form url.Values
	err  error
}

func newFormReader(form url.Values) *formReader {
	return &formReader{form: form}
}

// fail запоминает ошибку поля, если ошибки ещё не было.
func (f *formReader) fail(name, key, message string) {
	if f.err == nil {
		f.err = model.NewLocalizedValidationError(name, key, message)
	}
}

// str — строковое поле; пустое значение — nil.
func (f *formReader) str(name string) *string {
	return model.StrPtr(strings.TrimSpace(f.form.Get(name)))
}

// id — необязательное целое поле (идентификатор).
func (f *formReader) id(name string) *int64 {
	raw := strings.TrimSpace(f.form.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.fail(name, "validation.number", "ожидается целое число")
		return nil
	}
	return &v
}

// number — целое поле со значением по умолчанию def.
func (f *formReader) number(name string, def int) int {
	raw := strings.TrimSpace(f.form.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.fail(name, "validation.number", "ожидается целое число")
		return def
	}
	return v
}

// etat — флаг активности из checkbox.
func (f *formReader) etat() int {
	if f.form.Get("etat") == "1" {
		return model.EtatActive
	}
	return 0
}

// ids — список идентификаторов из множественного выбора.
func (f *formReader) ids(name string) model.IDList {
	out := model.IDList{}
	for _, raw := range f.form[name] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			f.fail(name, "validation.number", "ожидается целое число")
			continue
		}
		out = append(out, v)
	}
	return out
}

// amount — необязательное десятичное поле. Запятая допускается
// как десятичный разделитель.
func (f *formReader) amount(name string) decimal.NullDecimal {
	raw := strings.TrimSpace(f.form.Get(name))
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		f.fail(name, "validation.number", "ожидается число")
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// --- Поля формы ---

func textField(name string, value *string, required bool) views.Field {
	return views.Field{Name: name, Kind: views.FieldText, Value: model.Deref(value), Required: required}
}

func etatField(etat int) views.Field {
	value := ""
	if etat == model.EtatActive {
		value = "1"
	}
	return views.Field{Name: "etat", Kind: views.FieldCheckbox, Value: value}
}

func selectField(name string, selected *int64, options []views.Option, required bool) views.Field {
	f := views.Field{Name: name, Kind: views.FieldSelect, Options: options, Required: required}
	if selected != nil {
		f.Value = strconv.FormatInt(*selected, 10)
	}
	return f
}

func multiSelectField(name string, selected model.IDList, options []views.Option, required bool) views.Field {
	values := make([]string, len(selected))
	for i, id := range selected {
		values[i] = strconv.FormatInt(id, 10)
	}
	return views.Field{Name: name, Kind: views.FieldMultiSelect, Values: values, Options: options, Required: required}
}

// options строит варианты выбора из записей справочника.
func options[T model.Record](records []T, label func(T) string) []views.Option {
	out := make([]views.Option, 0, len(records))
	for _, rec := range records {
		out = append(out, views.Option{
			Value: strconv.FormatInt(rec.RecordID(), 10),
			Label: label(rec),
		})
	}
	return out
}
