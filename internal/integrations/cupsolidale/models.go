package cupsolidale

import "encoding/json"

// apiResponse envelope всех ответов CUP Solidale
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
	Paging  *paging         `json:"paging"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type paging struct {
	Next string `json:"next"`
}

// Prenotazione пренотация из списка CUP
type Prenotazione struct {
	ID              json.Number `json:"id_prenotazione"`
	Sede            string      `json:"sede"`
	Dottore         string      `json:"dottore"`
	DataPrestazione string      `json:"data_prestazione"` // "2025-12-03 14:00"
	NomePrestazione string      `json:"nome_prestazione"`
	DatiCliente     string      `json:"dati_cliente"`
	DatiPaziente    string      `json:"dati_paziente"`
	EuroTotale      float64     `json:"euro_totale"`
	MetodoPagamento string      `json:"metodo_pagamento"`
}

// Sede филиал клиники
type Sede struct {
	ID        string  `json:"id_sede"`
	Stato     string  `json:"stato"`
	Nome      string  `json:"nome"`
	Indirizzo string  `json:"indirizzo"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Dottore врач
type Dottore struct {
	ID       string           `json:"id_dottore"`
	Nome     string           `json:"nome"`
	Status   string           `json:"status"`
	Services []DottoreService `json:"services"`
}

type DottoreService struct {
	IDPrestazione string `json:"id_prestazione"`
	Nome          string `json:"nome"`
	Status        string `json:"status"`
}

// Prestazione услуга
type Prestazione struct {
	ID          string  `json:"id_prestazione"`
	Status      string  `json:"status"`
	Nome        string  `json:"nome"`
	Prezzo      float64 `json:"prezzo"`
	Descrizione string  `json:"descrizione"`
	Categoria   string  `json:"categoria"` // visita | laboratorio | diagnostica
	Durata      int     `json:"durata"`
}

// Indisponibilita блок недоступности врача
type Indisponibilita struct {
	ID         string `json:"id_indisponibilita"`
	IDDottore  string `json:"id_dottore"`
	IDSede     string `json:"id_sede"`
	Tipologia  string `json:"tipologia"`   // всегда "indisponibile"
	DataInizio string `json:"data_inizio"` // "yyyy-mm-dd"
	OraInizio  string `json:"ora_inizio"`  // "hh:mm"
	DataFine   string `json:"data_fine"`
	OraFine    string `json:"ora_fine"`
}

type batchIndisponibilitaRequest struct {
	Blocks []Indisponibilita `json:"blocks"`
}
