package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Consultation=150", " X-ray = 80.50 ", "a=b=12"})
	require.NoError(t, err)
	assert.Equal(t, []models.BillItem{
		{Description: "Consultation", Amount: 150},
		{Description: "X-ray", Amount: 80.5},
		{Description: "a=b", Amount: 12},
	}, items)

	for _, bad := range []string{"Consultation", "=10", "Lab=ten"} {
		_, err := parseItems([]string{bad})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), bad)
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), bad)
	}
}

func TestCommandTree(t *testing.T) {
	bills := billsCmd()
	names := map[string]bool{}
	for _, c := range bills.Commands() {
		names[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"list": true, "create": true, "pay": true, "revenue": true}, names)

	appts := appointmentsCmd()
	for _, want := range []string{"complete", "cancel", "schedule", "today", "list"} {
		c, _, err := appts.Find([]string{want})
		require.NoError(t, err)
		assert.Equal(t, want, c.Name())
	}
}
