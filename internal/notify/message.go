package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Supported alert languages, first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.Swahili,
}

var matcher = language.NewMatcher(supported)

const alertFormat = "Bloom alert: %s is flowering near %s (%s). Intensity %d%%."

func init() {
	message.SetString(language.Spanish, alertFormat,
		"Alerta de floración: %s está floreciendo cerca de %s (%s). Intensidad %d%%.")
	message.SetString(language.Swahili, alertFormat,
		"Tahadhari ya maua: %s inachanua karibu na %s (%s). Kiwango %d%%.")
}

// RenderMessage formats the alert in the grower's preferred language,
// falling back to English for unknown tags.
func RenderMessage(lang string, event domain.BloomEvent) string {
	tag, _ := language.MatchStrings(matcher, lang)
	p := message.NewPrinter(tag)
	return p.Sprintf(alertFormat,
		event.Crop,
		event.Region,
		event.Detected.UTC().Format("Jan 2006"),
		int(event.Intensity*100),
	)
}
