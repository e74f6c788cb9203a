package notify

import (
	"fmt"
	"html"
	"strings"
	"tour-monitor/models"
	"tour-monitor/utils"
)

// Message is everything needed to render one price report.
type Message struct {
	Route    models.Route
	Price    int
	Decision models.Decision
	// Optional search link appended to the text
	Link string
}

// Format renders m as Telegram HTML. All dynamic values are escaped.
func Format(m Message) string {
	var b strings.Builder

	switch m.Decision.Kind {
	case models.Dropped:
		b.WriteString("📉 <b>Цена снизилась!</b>")
	case models.Risen:
		b.WriteString("📈 <b>Цена выросла</b>")
	case models.Unchanged:
		b.WriteString("ℹ️ <b>Цена не изменилась</b>")
	default:
		b.WriteString("🔥 <b>Найдена находка!</b>")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "✈️ %s → %s\n", html.EscapeString(m.Route.Origin), html.EscapeString(m.Route.Destination))
	if m.Route.Nights > 0 {
		fmt.Fprintf(&b, "🌙 Ночей: %d\n", m.Route.Nights)
	}
	fmt.Fprintf(&b, "💰 Цена: %s руб.", utils.FormatPrice(m.Price))

	switch m.Decision.Kind {
	case models.Dropped:
		fmt.Fprintf(&b, "\n⬇️ Было: %s руб. (−%s)", utils.FormatPrice(m.Decision.Previous), utils.FormatPrice(m.Decision.Delta))
	case models.Risen:
		fmt.Fprintf(&b, "\n⬆️ Было: %s руб. (+%s)", utils.FormatPrice(m.Decision.Previous), utils.FormatPrice(m.Decision.Delta))
	}

	if m.Link != "" {
		fmt.Fprintf(&b, "\n\n<a href=\"%s\">Открыть поиск</a>", html.EscapeString(m.Link))
	}
	return b.String()
}
