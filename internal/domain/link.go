package domain

import "time"

// BookingEventLink связь пренотации CUP с созданным событием календаря GHL
// Единственный ключ идемпотентности: повторная доставка booking.created
// находит связь и не создает дубликат события.
// Жизненный цикл: create -> read (0..n) -> delete при отмене пренотации.
type BookingEventLink struct {
	BookingID  string
	EventID    string
	ContactID  string
	CalendarID string
	CreatedAt  time.Time
}
