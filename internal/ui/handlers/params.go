// params.go — разбор параметров пути и строки запроса.
package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// pathID возвращает числовой {id} из пути.
func pathID(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	return id, err
}

// queryInt возвращает необязательный целый параметр запроса.
// Отсутствующий или некорректный параметр — nil.
func queryInt(values url.Values, name string) *int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, values, &v); err != nil {
		return nil
	}
	return v
}

// queryInt64 — то же для идентификаторов записей.
func queryInt64(values url.Values, name string) *int64 {
	var v *int64
	if err := runtime.BindQueryParameter("form", true, false, name, values, &v); err != nil {
		return nil
	}
	if v != nil && *v <= 0 {
		return nil
	}
	return v
}
