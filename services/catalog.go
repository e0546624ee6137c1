package services

import (
	"fmt"
	"sort"

	"github.com/yeremiapane/restaurant-floor/models"
)

// Catalog is the read-only menu. It is loaded once at startup.
type Catalog struct {
	categories []models.Category
	items      []models.MenuItem
	byID       map[string]int
}

func NewCatalog(categories []models.Category, items []models.MenuItem) *Catalog {
	c := &Catalog{
		categories: append([]models.Category(nil), categories...),
		items:      append([]models.MenuItem(nil), items...),
		byID:       make(map[string]int, len(items)),
	}
	sort.SliceStable(c.categories, func(i, j int) bool { return c.categories[i].Order < c.categories[j].Order })
	for i, item := range c.items {
		c.byID[item.ID] = i
	}
	return c
}

func (c *Catalog) MenuItem(id string) (models.MenuItem, error) {
	idx, ok := c.byID[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrMenuItemNotFound)
	}
	return c.items[idx], nil
}

func (c *Catalog) MenuItems() []models.MenuItem {
	return append([]models.MenuItem{}, c.items...)
}

func (c *Catalog) MenuItemsByType(t models.ItemType) []models.MenuItem {
	out := make([]models.MenuItem, 0)
	for _, item := range c.items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalog) MenuItemsByCategory(categoryID string) []models.MenuItem {
	out := make([]models.MenuItem, 0)
	for _, item := range c.items {
		if item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out
}

// Categories lists categories in display order.
func (c *Catalog) Categories() []models.Category {
	return append([]models.Category{}, c.categories...)
}

func (c *Catalog) CategoriesByType(t models.ItemType) []models.Category {
	out := make([]models.Category, 0)
	for _, cat := range c.categories {
		if cat.Type == t {
			out = append(out, cat)
		}
	}
	return out
}
