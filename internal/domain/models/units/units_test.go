package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMassUnit(t *testing.T) {
	assert.Equal(t, Gram, ParseMassUnit("g"))
	assert.Equal(t, Pound, ParseMassUnit("lb"))
	assert.Equal(t, Kilogram, ParseMassUnit("kg"))
	for _, s := range []string{"", "KG", "oz", "tonne"} {
		assert.Equal(t, DefaultMassUnit, ParseMassUnit(s), s)
	}
	assert.Equal(t, "kg", MassUnit("").Fallback())
	assert.Len(t, MassUnit("").Values(), 3)
}
