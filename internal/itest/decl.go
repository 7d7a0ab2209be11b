package itest

import (
	_ "embed"

	"github.com/wippyai/object-abi/iface"
)

//go:embed itest.toml
var declaration []byte

// Declaration returns the fixture interfaces in declaration-file form.
func Declaration() []byte {
	return declaration
}

// ParseDeclaration parses the embedded declaration.
func ParseDeclaration() (*iface.Document, error) {
	return iface.Parse(declaration)
}
