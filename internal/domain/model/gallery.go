package model

import "encoding/json"

// GalleryEntry is one category of data/galeria.json.
type GalleryEntry struct {
	Category string
	Files    []string
}

// Gallery is data/galeria.json in document order.
type Gallery []GalleryEntry

// UnmarshalJSON keeps the key order of the JSON object. Entries whose value is
// not a list of file names are skipped.
func (g *Gallery) UnmarshalJSON(data []byte) error {
	out := Gallery{}
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) {
		var files []string
		if json.Unmarshal(raw, &files) != nil {
			return
		}
		out = append(out, GalleryEntry{Category: key, Files: files})
	})
	if err != nil {
		return err
	}
	*g = out
	return nil
}

// FallbackGallery is shown when data/galeria.json cannot be loaded.
func FallbackGallery() Gallery {
	return Gallery{
		{Category: "instalaciones", Files: []string{"sala_principal.jpg", "area_lounge.jpg"}},
		{Category: "barra", Files: []string{"barra_principal.jpg", "servicio_barra.jpg"}},
		{Category: "mesas", Files: []string{"mesa_profesional.jpg", "vista_mesas.jpg"}},
		{Category: "torneos", Files: []string{"ceremonia_ganadores.jpg", "accion_torneo.jpg"}},
	}
}
