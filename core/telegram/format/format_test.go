package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "Tom &amp; Jerry &lt;3", EscapeHTML("Tom & Jerry <3"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "450.00 RUB", Money(45000, "RUB"))
	assert.Equal(t, "0.05", Decimal(5))
	assert.Equal(t, "-1.20 RUB", Money(-120, "RUB"))
	assert.Equal(t, "12.30", Money(1230, ""))
}
