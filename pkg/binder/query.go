package binder

import "net/http"

// Query binds URL query parameters into fields tagged `query:"name"`.
// Values are taken verbatim after URL decoding.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
