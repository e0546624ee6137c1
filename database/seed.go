package database

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-floor/models"
	"gopkg.in/yaml.v3"
)

// Seed is the startup data: the menu catalog and the initial floor plan.
type Seed struct {
	Categories []models.Category
	MenuItems  []models.MenuItem
	Tables     []models.Table
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Menu       []seedMenuItem `yaml:"menu"`
	Tables     []seedTable    `yaml:"tables"`
}

type seedCategory struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Order int    `yaml:"order"`
}

type seedMenuItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Type        string `yaml:"type"`
	Available   *bool  `yaml:"available"`
}

type seedTable struct {
	Number int `yaml:"number"`
	Seats  int `yaml:"seats"`
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seed := &Seed{}
	categoryType := make(map[string]models.ItemType, len(f.Categories))
	for _, c := range f.Categories {
		t := models.ItemType(c.Type)
		if c.ID == "" || !t.Valid() {
			return nil, fmt.Errorf("seed category %q: id and a food or drink type are required", c.Name)
		}
		categoryType[c.ID] = t
		seed.Categories = append(seed.Categories, models.Category{ID: c.ID, Name: c.Name, Type: t, Order: c.Order})
	}

	seen := map[string]bool{}
	for _, m := range f.Menu {
		if m.ID == "" || seen[m.ID] {
			return nil, fmt.Errorf("seed menu item %q: missing or duplicate id", m.Name)
		}
		seen[m.ID] = true

		price, err := decimal.NewFromString(m.Price)
		if err != nil {
			return nil, fmt.Errorf("seed menu item %s: price %q: %w", m.ID, m.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("seed menu item %s: negative price", m.ID)
		}

		// items inherit the department of their category unless they name one
		t := models.ItemType(m.Type)
		if t == "" {
			t = categoryType[m.Category]
		}
		if !t.Valid() {
			return nil, fmt.Errorf("seed menu item %s: unknown type %q", m.ID, m.Type)
		}

		available := true
		if m.Available != nil {
			available = *m.Available
		}
		seed.MenuItems = append(seed.MenuItems, models.MenuItem{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Price:       price,
			CategoryID:  m.Category,
			Type:        t,
			Available:   available,
		})
	}

	for _, t := range f.Tables {
		seed.Tables = append(seed.Tables, models.Table{Number: t.Number, Seats: t.Seats})
	}
	return seed, nil
}
