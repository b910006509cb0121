package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHUID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"109", "109", false},
		{"HU-109", "109", false},
		{"hu-109", "109", false},
		{"HU109", "109", false},
		{"  HU-42  ", "42", false},
		{"", "", true},
		{"HU-", "", true},
		{"abc", "", true},
		{"HU-12a", "", true},
		{"12.5", "", true},
	}

	for _, tt := range tests {
		got, err := ParseHUID(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestLabelColorStable(t *testing.T) {
	a := LabelColor("Gestión de Pedidos")
	b := LabelColor("Gestión de Pedidos")
	assert.Equal(t, a, b)
	assert.Contains(t, labelPalette, a)
}

func TestLabelColorEmpty(t *testing.T) {
	assert.Equal(t, labelColorNone, LabelColor(""))
}

func TestHUStatusValid(t *testing.T) {
	assert.True(t, HUStatusPending.Valid())
	assert.True(t, HUStatusAccepted.Valid())
	assert.True(t, HUStatusRejected.Valid())
	assert.False(t, HUStatus("done").Valid())
	assert.False(t, HUStatus("").Valid())
}

func TestFilterOptionsActive(t *testing.T) {
	assert.False(t, FilterOptions{}.Active())
	assert.False(t, FilterOptions{Module: FilterAll, Feature: FilterAll, Status: FilterAll}.Active())
	assert.True(t, FilterOptions{Search: "login"}.Active())
	assert.True(t, FilterOptions{Module: "Auth"}.Active())
	assert.True(t, FilterOptions{Status: "pending"}.Active())
}
