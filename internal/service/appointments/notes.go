package appointments

import (
	"fmt"
	"strings"

	"github.com/m04kA/CUP-SyncService/internal/domain"
)

// buildNotes собирает текст заметок события в фиксированном порядке.
// Первая строка всегда маркер синхронизации, отсутствующие поля пропускаются.
func buildNotes(booking *domain.BookingDetails) string {
	lines := []string{
		domain.SyncMarkerLine,
		"Prenotazione: " + booking.ID,
	}

	if booking.Service.Name != "" {
		line := "Prestazione: " + booking.Service.Name
		if booking.Service.Category != "" {
			line += " (" + booking.Service.Category + ")"
		}
		lines = append(lines, line)
	}
	if booking.Site.Name != "" {
		lines = append(lines, "Sede: "+booking.Site.Name)
	}
	if booking.Doctor.Name != "" {
		lines = append(lines, "Dottore: "+booking.Doctor.Name)
	}
	if booking.Payment != nil {
		lines = append(lines, fmt.Sprintf("Pagamento: %.2f EUR (%s)", booking.Payment.Amount, booking.Payment.Status))
	}
	if booking.Note != nil && *booking.Note != "" {
		lines = append(lines, "Note: "+*booking.Note)
	}

	return strings.Join(lines, "\n")
}
