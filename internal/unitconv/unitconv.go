package unitconv

import "sibos-pos/internal/model"

// Category partitions measurement units. Conversion is only defined within
// one category; crossing categories (mass→volume) would need a density and
// is always an error.
type Category string

const (
	Mass    Category = "mass"
	Volume  Category = "volume"
	Count   Category = "count"
	Unknown Category = ""
)

// Factors to the category base unit (gram for mass, milliliter for volume).
// Count units carry no mutual ratio: pcs, box and portion only convert to
// themselves.
var toBase = map[string]float64{
	"kg":         1000,
	"gram":       1,
	"liter":      1000,
	"ml":         1,
	"tablespoon": 15,
	"teaspoon":   5,
	"pcs":        1,
	"box":        1,
	"portion":    1,
}

var categories = map[string]Category{
	"kg":         Mass,
	"gram":       Mass,
	"liter":      Volume,
	"ml":         Volume,
	"tablespoon": Volume,
	"teaspoon":   Volume,
	"pcs":        Count,
	"box":        Count,
	"portion":    Count,
}

// CategoryOf returns the unit's category, or Unknown for an unrecognized
// unit string.
func CategoryOf(unit string) Category {
	return categories[unit]
}

// Convert converts amount from one unit to another. Same-unit conversion is
// the identity and is checked first so repeated conversions don't
// accumulate float drift. Cross-category or unknown-unit conversion
// returns (0, ErrIncompatibleUnit); callers at the authoring boundary must
// treat that as a hard error, computation callers fall back to zero.
func Convert(amount float64, fromUnit, toUnit string) (float64, error) {
	if fromUnit == toUnit {
		return amount, nil
	}
	fromCat, toCat := categories[fromUnit], categories[toUnit]
	if fromCat == Unknown || toCat == Unknown || fromCat != toCat {
		return 0, model.ErrIncompatibleUnit
	}
	if fromCat == Count {
		// No fixed ratio between count units (a box size is per-item
		// knowledge the converter doesn't have).
		return 0, model.ErrIncompatibleUnit
	}
	return amount * toBase[fromUnit] / toBase[toUnit], nil
}

// Compatible reports whether a quantity in fromUnit can be expressed in
// toUnit.
func Compatible(fromUnit, toUnit string) bool {
	_, err := Convert(1, fromUnit, toUnit)
	return err == nil
}

// CompatibleUnits returns every unit a quantity in baseUnit can be
// expressed in, the base unit itself included. Count units return only
// themselves.
func CompatibleUnits(baseUnit string) []string {
	cat := categories[baseUnit]
	if cat == Unknown {
		return nil
	}
	if cat == Count {
		return []string{baseUnit}
	}
	var units []string
	for _, u := range orderedUnits {
		if categories[u] == cat {
			units = append(units, u)
		}
	}
	return units
}

// Stable listing order for CompatibleUnits.
var orderedUnits = []string{"kg", "gram", "liter", "ml", "tablespoon", "teaspoon", "pcs", "box", "portion"}
