package domain

import (
	"regexp"
	"strings"
)

// Legacy-формат поля dati_cliente: "Mario Rossi (mario@example.com) RSSMRA80A01H501Z"
var (
	contactNameRe   = regexp.MustCompile(`^([^(]+)`)
	contactEmailRe  = regexp.MustCompile(`\(([^@\s]+@[^)\s]+)\)`)
	contactFiscalRe = regexp.MustCompile(`([A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z])$`)
	contactPhoneRe  = regexp.MustCompile(`(\+39)?[\s]?([0-9]{3}[\s]?[0-9]{3,4}[\s]?[0-9]{3,4})`)
)

// ParseContactLine извлекает данные пациента из свободного текстового поля
// старого формата CUP. Возвращает ok=false, если имя извлечь не удалось;
// частичные или угаданные данные молча не возвращаются.
func ParseContactLine(line string) (PatientRecord, bool) {
	nameMatch := contactNameRe.FindStringSubmatch(line)
	if nameMatch == nil {
		return PatientRecord{}, false
	}

	fullName := strings.TrimSpace(nameMatch[1])
	// фискальный код может попасть в группу имени, если скобок с email нет
	if fc := contactFiscalRe.FindString(fullName); fc != "" {
		fullName = strings.TrimSpace(strings.TrimSuffix(fullName, fc))
	}
	if fullName == "" {
		return PatientRecord{}, false
	}

	parts := strings.Fields(fullName)
	rec := PatientRecord{FirstName: parts[0]}
	if len(parts) > 1 {
		rec.LastName = strings.Join(parts[1:], " ")
	}

	if m := contactEmailRe.FindStringSubmatch(line); m != nil {
		email := m[1]
		rec.Email = &email
	}
	if m := contactFiscalRe.FindString(strings.TrimSpace(line)); m != "" {
		fc := m
		rec.FiscalCode = &fc
	}
	if m := contactPhoneRe.FindString(line); m != "" {
		phone := strings.ReplaceAll(m, " ", "")
		rec.Phone = &phone
	}

	return rec, true
}
