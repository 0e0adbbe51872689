package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MenuItem is one entry of a menu category.
type MenuItem struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Precio Price  `json:"precio"`
}

// Price keeps the published price as text. Numbers are stored in their
// shortest decimal form.
type Price struct {
	Raw string
	Set bool
}

// UnmarshalJSON accepts strings, numbers and null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price{Raw: s, Set: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price{Raw: strconv.FormatFloat(f, 'f', -1, 64), Set: true}
	return nil
}

// Present reports whether the item advertises a price.
func (p Price) Present() bool {
	return p.Set && p.Raw != ""
}

// MenuCategory is one category key of data/menu.json with its items.
type MenuCategory struct {
	Key   string
	Items []MenuItem
}

// MenuCatalog is data/menu.json in document order.
type MenuCatalog []MenuCategory

// UnmarshalJSON keeps the key order of the JSON object. Categories whose value
// is not a list of items are skipped.
func (c *MenuCatalog) UnmarshalJSON(data []byte) error {
	out := MenuCatalog{}
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) {
		var items []MenuItem
		if json.Unmarshal(raw, &items) != nil {
			return
		}
		out = append(out, MenuCategory{Key: key, Items: items})
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// categoryNames maps menu category keys to their display titles.
var categoryNames = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"bebidas": "Bebidas",
	"comidas": "Comidas",
	"licores": "Licores",
	"snacks":  "Snacks",
	"promos":  "Promociones",
}

// CategoryTitle returns the display title of a menu category, or the key itself.
func CategoryTitle(key string) string {
	if name, ok := categoryNames[key]; ok {
		return name
	}
	return key
}
