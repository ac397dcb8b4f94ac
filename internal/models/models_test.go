package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotals(t *testing.T) {
	items := []CartItem{
		{PriceAtAddition: 500, Quantity: 3},
		{PriceAtAddition: 0.1, Quantity: 3},
	}
	count, total := CartTotals(items)
	assert.Equal(t, 6, count)
	assert.Equal(t, 1500.3, total)

	count, total = CartTotals(nil)
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestProductVariants(t *testing.T) {
	p := Product{Sizes: StringList{"S", "M"}}
	assert.True(t, p.HasSize("M"))
	assert.False(t, p.HasSize("XL"))
	assert.False(t, p.HasSize(""))
	assert.True(t, p.HasColor(""))
	assert.False(t, p.HasColor("red"))
}

func TestStringListValueAndScan(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["S","M"]`)))
	assert.Equal(t, StringList{"S", "M"}, l)
	require.NoError(t, l.Scan(`["L"]`))
	assert.Equal(t, StringList{"L"}, l)
	assert.Error(t, l.Scan(42))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSeller.Valid())
	assert.False(t, Role("ROOT").Valid())
}
