package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModulesDeduplicatesCaseInsensitively(t *testing.T) {
	got := NormalizeModules([]string{"Sales", "billing", "SALES", "sales"})
	assert.Equal(t, []string{"billing", "Sales"}, got)
}

func TestNormalizeModulesSortsByLowercase(t *testing.T) {
	got := NormalizeModules([]string{"Zeta", "alpha", "Beta"})
	assert.Equal(t, []string{"alpha", "Beta", "Zeta"}, got)
}

func TestNormalizeModulesDropsEmptyEntries(t *testing.T) {
	got := NormalizeModules([]string{"  ", "", "Core", " Core "})
	assert.Equal(t, []string{"Core"}, got)
}

func TestRequestEquivalenceAfterNormalization(t *testing.T) {
	a := NewRequest([]string{"Sales", "Billing"}, false, true, false)
	b := NewRequest([]string{"billing", "SALES", "sales"}, false, true, false)
	assert.Equal(t, a.Modules, b.Modules)
	assert.Equal(t, a.ModuleCSV(), b.ModuleCSV())
}

func TestModuleCSV(t *testing.T) {
	assert.Equal(t, "", NewRequest(nil, false, false, false).ModuleCSV())
	assert.Equal(t, "Billing,Sales",
		NewRequest([]string{"Sales", "Billing"}, false, false, false).ModuleCSV())
}
