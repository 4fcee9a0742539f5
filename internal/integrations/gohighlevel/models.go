package gohighlevel

// Contact контакт GHL
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CustomField кастомное поле контакта
type CustomField struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// CreateContactRequest запрос создания контакта
type CreateContactRequest struct {
	LocationID   string        `json:"locationId"`
	FirstName    string        `json:"firstName,omitempty"`
	LastName     string        `json:"lastName,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Source       string        `json:"source,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

// UpdateContactRequest запрос обновления контакта
// Пустые поля не отправляются и остаются нетронутыми в GHL
type UpdateContactRequest struct {
	FirstName    string        `json:"firstName,omitempty"`
	LastName     string        `json:"lastName,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

// SearchFilter фильтр поиска контактов
type SearchFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type searchContactsRequest struct {
	LocationID string         `json:"locationId"`
	Page       int            `json:"page"`
	PageLimit  int            `json:"pageLimit"`
	Filters    []SearchFilter `json:"filters"`
}

type searchContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

type createContactResponse struct {
	Contact Contact `json:"contact"`
}

// CreateEventRequest запрос создания события календаря
type CreateEventRequest struct {
	CalendarID               string `json:"calendarId"`
	LocationID               string `json:"locationId"`
	ContactID                string `json:"contactId"`
	AssignedUserID           string `json:"assignedUserId,omitempty"`
	StartTime                string `json:"startTime"` // ISO: "2025-12-03T14:00:00.000Z"
	EndTime                  string `json:"endTime"`
	Title                    string `json:"title"`
	AppointmentStatus        string `json:"appointmentStatus"`
	Notes                    string `json:"notes,omitempty"`
	Address                  string `json:"address,omitempty"`
	IgnoreFreeSlotValidation bool   `json:"ignoreFreeSlotValidation"`
	ToNotify                 bool   `json:"toNotify"`
}

// UpdateEventRequest запрос обновления события календаря
type UpdateEventRequest struct {
	CalendarID        string `json:"calendarId,omitempty"`
	AssignedUserID    string `json:"assignedUserId,omitempty"`
	StartTime         string `json:"startTime,omitempty"`
	EndTime           string `json:"endTime,omitempty"`
	Title             string `json:"title,omitempty"`
	AppointmentStatus string `json:"appointmentStatus,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// Calendar календарь GHL
type Calendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type calendarsResponse struct {
	Calendars []Calendar `json:"calendars"`
}

// User пользователь GHL
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

type usersResponse struct {
	Users []User `json:"users"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
