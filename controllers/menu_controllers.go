package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type MenuController struct {
	Catalog *services.Catalog
}

func NewMenuController(catalog *services.Catalog) *MenuController {
	return &MenuController{Catalog: catalog}
}

// GetAllMenus -> menu items, filtered by ?type= or ?category_id=
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	if category := c.Query("category_id"); category != "" {
		utils.RespondJSON(c, http.StatusOK, "List of menus", mc.Catalog.MenuItemsByCategory(category))
		return
	}
	if raw := c.Query("type"); raw != "" {
		t := models.ItemType(raw)
		if !t.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown item type %q", raw))
			return
		}
		utils.RespondJSON(c, http.StatusOK, "List of menus", mc.Catalog.MenuItemsByType(t))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", mc.Catalog.MenuItems())
}

func (mc *MenuController) GetMenu(c *gin.Context) {
	item, err := mc.Catalog.MenuItem(c.Param("menu_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

// GetCategories -> categories in display order, optionally by ?type=
func (mc *MenuController) GetCategories(c *gin.Context) {
	if raw := c.Query("type"); raw != "" {
		t := models.ItemType(raw)
		if !t.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown item type %q", raw))
			return
		}
		utils.RespondJSON(c, http.StatusOK, "List of categories", mc.Catalog.CategoriesByType(t))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", mc.Catalog.Categories())
}
