package unitconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sibos-pos/internal/model"
)

func TestConvertWithinCategory(t *testing.T) {
	cases := []struct {
		amount   float64
		from, to string
		want     float64
	}{
		{2, "kg", "gram", 2000},
		{500, "gram", "kg", 0.5},
		{1, "liter", "ml", 1000},
		{3, "tablespoon", "ml", 45},
		{2, "teaspoon", "ml", 10},
		{30, "ml", "tablespoon", 2},
		{7, "pcs", "pcs", 7},
		{25.5, "kg", "kg", 25.5},
	}
	for _, c := range cases {
		got, err := Convert(c.amount, c.from, c.to)
		require.NoError(t, err, "%v %s -> %s", c.amount, c.from, c.to)
		assert.InDelta(t, c.want, got, 1e-9)
	}
}

func TestConvertCrossCategoryFails(t *testing.T) {
	for _, pair := range [][2]string{
		{"kg", "ml"},
		{"liter", "gram"},
		{"pcs", "kg"},
		{"pcs", "box"}, // count units carry no mutual ratio
		{"gram", "nonsense"},
	} {
		got, err := Convert(10, pair[0], pair[1])
		assert.ErrorIs(t, err, model.ErrIncompatibleUnit, "%s -> %s", pair[0], pair[1])
		assert.Zero(t, got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	units := map[string][]string{
		"mass":   {"kg", "gram"},
		"volume": {"liter", "ml", "tablespoon", "teaspoon"},
	}
	for _, group := range units {
		for _, a := range group {
			for _, b := range group {
				x := 3.7
				there, err := Convert(x, a, b)
				require.NoError(t, err)
				back, err := Convert(there, b, a)
				require.NoError(t, err)
				assert.InDelta(t, x, back, 1e-9, "%s <-> %s", a, b)
			}
		}
	}
}

func TestCompatibleUnits(t *testing.T) {
	assert.ElementsMatch(t, []string{"kg", "gram"}, CompatibleUnits("kg"))
	assert.ElementsMatch(t, []string{"liter", "ml", "tablespoon", "teaspoon"}, CompatibleUnits("ml"))
	assert.Equal(t, []string{"box"}, CompatibleUnits("box"))
	assert.Nil(t, CompatibleUnits("furlong"))
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("kg", "gram"))
	assert.True(t, Compatible("portion", "portion"))
	assert.False(t, Compatible("kg", "liter"))
	assert.False(t, Compatible("box", "pcs"))
}
