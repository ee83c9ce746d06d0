// Package units holds the closed value sets shared by trade models.
package units

// MassUnit is the unit a quantity or price is expressed in.
type MassUnit string

const (
	Gram     MassUnit = "g"
	Kilogram MassUnit = "kg"
	Pound    MassUnit = "lb"
)

// DefaultMassUnit is used for any stored value outside the known set.
const DefaultMassUnit = Kilogram

func (MassUnit) Values() []string {
	return []string{string(Gram), string(Kilogram), string(Pound)}
}

func (MassUnit) Fallback() string {
	return string(DefaultMassUnit)
}

// ParseMassUnit normalizes s, falling back to DefaultMassUnit.
func ParseMassUnit(s string) MassUnit {
	switch MassUnit(s) {
	case Gram, Kilogram, Pound:
		return MassUnit(s)
	default:
		return DefaultMassUnit
	}
}
