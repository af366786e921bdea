package costing

import (
	"strings"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// Policy política de costeo del motor. Las dos políticas son mutuamente
// excluyentes por par (item, bodega); el valor se pasa explícito a cada
// operación en vez de leerse de estado global, para poder variarlo en tests.
type Policy string

const (
	// PolicyFIFO primeras entradas, primeras salidas (capas de costo).
	PolicyFIFO Policy = "FIFO"
	// PolicyMovingAverage costo promedio ponderado móvil.
	PolicyMovingAverage Policy = "MOVING_AVERAGE"
)

// String devuelve la representación textual de la política.
func (p Policy) String() string { return string(p) }

// Valid indica si la política es una de las soportadas.
func (p Policy) Valid() bool {
	return p == PolicyFIFO || p == PolicyMovingAverage
}

// ParsePolicy acepta los alias usados por configuración y reportes:
// fifo | avg | moving_avg | moving_average (sin distinguir mayúsculas).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIFO":
		return PolicyFIFO, nil
	case "AVG", "MOVING_AVG", "MOVING_AVERAGE":
		return PolicyMovingAverage, nil
	default:
		return "", domain.ErrInvalidInput
	}
}
