// Package sample ships the collection the editor resets to.
package sample

import (
	_ "embed"

	"github.com/xtbe/arcbp-editor/internal/models"
	"github.com/xtbe/arcbp-editor/internal/shape"
)

//go:embed blueprints.json
var raw []byte

// Collection returns a fresh copy of the sample collection.
func Collection() models.Collection {
	c, err := shape.Parse(raw)
	if err != nil {
		panic("sample: embedded collection is invalid: " + err.Error())
	}
	return c
}
