// Seeds the shared celestial object reference table from a JSON file.
//
//	go run ./cmd/seed -file jsons/celestial_objects.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"

	"astrocat/internal/config"
	"astrocat/internal/database"
	"astrocat/internal/domain"
)

type seedObject struct {
	ObjectID       string   `json:"object_id"`
	Name           string   `json:"name"`
	ObjectType     string   `json:"object_type"`
	RightAscension *float64 `json:"right_ascension"`
	Declination    *float64 `json:"declination"`
	Magnitude      *float64 `json:"magnitude"`
	Description    string   `json:"description"`
}

func main() {
	file := flag.String("file", "jsons/celestial_objects.json", "path to the celestial objects JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal(err)
	}

	var objects []seedObject
	if err := json.Unmarshal(data, &objects); err != nil {
		log.Fatal(err)
	}

	for _, o := range objects {
		id := o.ObjectID
		if id == "" {
			id = uuid.New().String()
		}
		obj := domain.CelestialObject{
			ID:             id,
			Name:           o.Name,
			ObjectType:     o.ObjectType,
			RightAscension: o.RightAscension,
			Declination:    o.Declination,
			Magnitude:      o.Magnitude,
			Description:    o.Description,
		}
		if err := db.Create(&obj).Error; err != nil {
			log.Fatalf("failed to seed %q: %v", o.Name, err)
		}
	}

	log.Printf("seeded %d celestial objects", len(objects))
}
