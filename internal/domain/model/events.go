package model

// EventRecord is one tournament, special date or announcement.
type EventRecord struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// EventsBoard is data/eventos.json.
type EventsBoard struct {
	Torneos          []EventRecord `json:"torneos"`
	FechasEspeciales []EventRecord `json:"fechas_especiales"`
	Publicaciones    []EventRecord `json:"publicaciones"`
}
