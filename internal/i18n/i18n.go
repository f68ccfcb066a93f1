// Package i18n provides the small set of UI label translations, picking the
// language from the system locale with an environment override.
package i18n

import (
	"log"
	"os"
	"strings"

	"github.com/jeandeaual/go-locale"
)

var lang string

var translations = map[string]map[string]string{
	"Start": {
		"pt": "Iniciar",
		"es": "Iniciar",
		"ru": "Старт",
	},
	"Apply": {
		"pt": "Aplicar",
		"es": "Aplicar",
		"ru": "Применить",
	},
	"Stop": {
		"pt": "Parar",
		"es": "Parar",
		"ru": "Стоп",
	},
	"Continue": {
		"pt": "Continuar",
		"es": "Continuar",
		"ru": "Продолжить",
	},
	"Restart": {
		"pt": "Reiniciar",
		"es": "Reiniciar",
		"ru": "Заново",
	},
	"minutes": {
		"pt": "minutos",
		"es": "minutos",
		"ru": "минут",
	},
	"Ready": {
		"pt": "Pronto",
		"es": "Listo",
		"ru": "Готов",
	},
	"Work": {
		"pt": "Trabalho",
		"es": "Trabajo",
		"ru": "Работа",
	},
	"Break": {
		"pt": "Pausa",
		"es": "Pausa",
		"ru": "Перерыв",
	},
	"Time to rest your eyes!": {
		"pt": "Hora de descansar os olhos!",
		"es": "¡Hora de descansar los ojos!",
		"ru": "Пора дать глазам отдохнуть!",
	},
	"Break over": {
		"pt": "Fim da pausa",
		"es": "Fin de la pausa",
		"ru": "Перерыв окончен",
	},
	"Quit": {
		"pt": "Sair",
		"es": "Salir",
		"ru": "Выход",
	},
}

func init() {
	if forcedLang := strings.TrimSpace(os.Getenv("TWENTYTWENTY_LANG")); forcedLang != "" {
		lang = forcedLang
		return
	}

	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		lang = "en"
		return
	}

	detected := userLocales[0]
	switch {
	case strings.HasPrefix(detected, "pt"):
		lang = "pt"
	case strings.HasPrefix(detected, "es"):
		lang = "es"
	case strings.HasPrefix(detected, "ru"):
		lang = "ru"
	default:
		lang = "en"
	}
	log.Printf("Language set to: %s", lang)
}

// T translates a label, falling back to the key itself.
func T(key string) string {
	if translated, ok := translations[key][lang]; ok {
		return translated
	}
	return key
}

// GetLang returns the active language code.
func GetLang() string {
	return lang
}
