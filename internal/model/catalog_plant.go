package model

import "time"

// CatalogPlant is immutable reference data describing a plant species.
// Rows are created by the catalog import job and are never mutated by end
// users; user plants reference them for default care intervals and
// descriptive care text.
//
// Fields:
//  ID                        – primary key identifier.
//  CommonName                – everyday name shown in the app.
//  ScientificName            – botanical name.
//  Description               – free-text species description.
//  LightNeeds                – care text for light requirements.
//  SoilNeeds                 – care text for soil requirements.
//  DefaultWateringInterval   – default days between waterings.
//  DefaultFertilizerInterval – default days between fertilizings.
//  ImageURL                  – canonical species image.
//  CreatedAt                 – timestamp of catalog import.
type CatalogPlant struct {
	ID                        uint64    // catalog_plants.id
	CommonName                string    // catalog_plants.common_name
	ScientificName            string    // catalog_plants.scientific_name
	Description               string    // catalog_plants.description
	LightNeeds                string    // catalog_plants.light_needs
	SoilNeeds                 string    // catalog_plants.soil_needs
	DefaultWateringInterval   int       // catalog_plants.default_watering_interval_days
	DefaultFertilizerInterval int       // catalog_plants.default_fertilizer_interval_days
	ImageURL                  string    // catalog_plants.image_url
	CreatedAt                 time.Time // catalog_plants.created_at
}
