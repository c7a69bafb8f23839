package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtilization(t *testing.T) {
	assert.Equal(t, 0.0, Utilization(500, 0))
	assert.Equal(t, 0.0, Utilization(0, 0))
	assert.Equal(t, 50.0, Utilization(500, 1000))
	assert.InDelta(t, 56.5, Utilization(5650, 10000), 0.001)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$5,650.00", Format(5650, "USD"))
	assert.Equal(t, "$0.00", Format(0, "USD"))
	assert.Equal(t, "€45.00", Format(45, "EUR"))
	// unknown codes are prefixed verbatim
	assert.Equal(t, "KZT 12.50", Format(12.5, "kzt"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Pending", Capitalize("pending"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "A", Capitalize("a"))
}
