package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// PlayerRecord is one entry of data/jugadores.json.
type PlayerRecord struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Texto  string `json:"texto"`
	Puesto Puesto `json:"puesto"`
}

// Puesto is a player's rank. The JSON may carry it as a number or a string;
// both keep their textual form. A null or missing puesto is unset, which is
// not the same as an empty string.
type Puesto struct {
	value string
	set   bool
}

// NewPuesto returns a puesto holding s.
func NewPuesto(s string) Puesto {
	return Puesto{value: s, set: true}
}

// UnmarshalJSON accepts numbers, strings and null.
func (p *Puesto) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Puesto{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = NewPuesto(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = NewPuesto(n.String())
	return nil
}

// String returns the textual rank, "" when unset.
func (p Puesto) String() string { return p.value }

// IsSet reports whether the JSON carried a non-null puesto.
func (p Puesto) IsSet() bool { return p.set }

// IsEmpty reports whether the puesto is the empty string. Unset is not empty.
func (p Puesto) IsEmpty() bool { return p.set && p.value == "" }

// Rank returns the numeric rank and whether the value is an integer. Integral
// decimals such as 1.0 count.
func (p Puesto) Rank() (int, bool) {
	if !p.set {
		return 0, false
	}
	if n, err := strconv.Atoi(p.value); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(p.value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
