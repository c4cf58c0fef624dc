package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryAssurance_String(t *testing.T) {
	tests := []struct {
		d    DeliveryAssurance
		want string
	}{
		{0, "None"},
		{AtMostOnce, "AtMostOnce"},
		{AtLeastOnce, "AtLeastOnce"},
		{InOrder, "InOrder"},
		{ExactlyOnce, "AtMostOnce|AtLeastOnce"},
		{AtMostOnce | InOrder, "AtMostOnce|InOrder"},
		{DeliveryAssurance(0x80), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestDeliveryAssurance_Has(t *testing.T) {
	d := AtMostOnce.With(InOrder)

	assert.True(t, d.Has(AtMostOnce))
	assert.True(t, d.Has(InOrder))
	assert.False(t, d.Has(AtLeastOnce))
	assert.False(t, d.Has(ExactlyOnce), "组合标志要求全部包含")
	assert.False(t, d.Has(0))
}

func TestParseDeliveryAssurance(t *testing.T) {
	t.Run("Combined", func(t *testing.T) {
		d, err := ParseDeliveryAssurance("AtMostOnce|InOrder")
		require.NoError(t, err)
		assert.Equal(t, AtMostOnce|InOrder, d)
	})

	t.Run("ExactlyOnce", func(t *testing.T) {
		d, err := ParseDeliveryAssurance("exactly_once, in_order")
		require.NoError(t, err)
		assert.Equal(t, ExactlyOnce|InOrder, d)
	})

	t.Run("Empty", func(t *testing.T) {
		d, err := ParseDeliveryAssurance("")
		require.NoError(t, err)
		assert.Equal(t, DeliveryAssurance(0), d)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseDeliveryAssurance("AtMostOnce|Sometimes")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Sometimes", perr.Value)
	})
}
