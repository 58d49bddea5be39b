// Package category приводит категории товаров из хранилища к витринным значениям.
// Это забота слоя отображения, ядро движка категории не интерпретирует.
package category

import "strings"

// Витринные категории магазина.
const (
	All         = "Todos"
	Clothing    = "Ropa"
	Supplements = "Suplementos"
	Drinks      = "Bebidas"
)

var synonyms = map[string]string{
	"bebidas":     Drinks,
	"bebida":      Drinks,
	"drink":       Drinks,
	"drinks":      Drinks,
	"ropa":        Clothing,
	"vestimenta":  Clothing,
	"clothing":    Clothing,
	"suplementos": Supplements,
	"suplemento":  Supplements,
	"supplement":  Supplements,
	"supplements": Supplements,
}

// Normalize возвращает витринную категорию для сырого значения.
// Неизвестные и пустые значения попадают в All, чтобы товар не пропал из каталога.
func Normalize(raw string) string {
	if c, ok := synonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return All
}

// List возвращает категории в порядке отображения.
func List() []string {
	return []string{All, Clothing, Supplements, Drinks}
}
