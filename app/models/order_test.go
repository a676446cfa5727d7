package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusCreated, StatusProcessing},
		{StatusCreated, StatusCashOnDelivery},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, ValidTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	denied := [][2]string{
		{StatusCreated, StatusShipped},
		{StatusCreated, StatusDelivered},
		{StatusProcessing, StatusCreated},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusCreated},
		{StatusDelivered, StatusShipped},
		{StatusCashOnDelivery, StatusDelivered},
		{StatusCreated, StatusCreated},
		{StatusCreated, "refunded"},
	}
	for _, tr := range denied {
		assert.False(t, ValidTransition(tr[0], tr[1]), "%s -> %s should be rejected", tr[0], tr[1])
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []string{StatusCreated, StatusCashOnDelivery, StatusProcessing, StatusShipped, StatusDelivered} {
		assert.True(t, KnownStatus(s), s)
	}
	assert.False(t, KnownStatus("refunded"))
	assert.False(t, KnownStatus(""))
	assert.False(t, KnownStatus("Created"))
}
