package i18n

import "embed"

// LocaleFS — каталоги переводов locales/{code}.json, встроенные в бинарник.
//
//go:embed locales/*.json
var LocaleFS embed.FS
