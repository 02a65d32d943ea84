// Package repository contains the data access layer for the Goldan API.
// This file defines sentinel errors shared by the individual repositories so
// that handlers can map failure scenarios onto HTTP status codes without
// string matching.
package repository

import "errors"

// ErrCatalogPlantNotFound is returned when a catalog species cannot be
// located. Handlers translate this into HTTP 404.
var ErrCatalogPlantNotFound = errors.New("catalog plant not found")

// ErrGardenNotFound is returned when a garden does not exist or does not
// belong to the requesting user. Handlers translate this into HTTP 404.
var ErrGardenNotFound = errors.New("garden not found")

// ErrPlantNotFound is returned when a user plant does not exist or does not
// belong to the requesting user. Handlers translate this into HTTP 404.
var ErrPlantNotFound = errors.New("plant not found")
