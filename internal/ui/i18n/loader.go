package i18n

import (
	"fmt"
	"log/slog"
)

// LoadFromEmbedFS загружает locales/{code}.json для каждого языка из Languages.
// Ключи, отсутствующие в неосновных каталогах, попадают в лог: на экране
// вместо них будет строка основного каталога.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	for _, code := range Codes() {
		path := "locales/" + code + ".json"
		data, err := LocaleFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(code, data); err != nil {
			return err
		}
	}

	for _, code := range Codes() {
		if missing := bundle.MissingKeys(code); len(missing) > 0 {
			logger.Warn("Каталог переводов неполон",
				slog.String("lang", code),
				slog.Any("missing", missing),
			)
		}
	}

	logger.Info("Каталоги переводов загружены", slog.Any("languages", Codes()))
	return nil
}
