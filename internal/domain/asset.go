package domain

import (
	"fmt"
	"strings"
)

// Asset is one entry of the tradeable asset catalog.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Label returns the human-readable form used for console selection,
// e.g. "BTC - Bitcoin".
func (a Asset) Label() string {
	return fmt.Sprintf("%s - %s", strings.ToUpper(a.Symbol), a.Name)
}
