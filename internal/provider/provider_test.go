package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricing_Cost_PerSecond(t *testing.T) {
	p := Pricing{Mode: PricePerSecond, Amount: 0.10, Currency: "USD"}

	assert.InDelta(t, 0.80, p.Cost(8), 1e-9)
	assert.InDelta(t, 1.20, p.Cost(12), 1e-9)
	assert.InDelta(t, 0.0, p.Cost(0), 1e-9)
}

func TestPricing_Cost_PerGeneration(t *testing.T) {
	p := Pricing{Mode: PricePerGeneration, Amount: 0.40, Currency: "USD"}

	// Flat pricing ignores duration entirely.
	assert.InDelta(t, 0.40, p.Cost(5), 1e-9)
	assert.InDelta(t, 0.40, p.Cost(60), 1e-9)
	assert.InDelta(t, 0.40, p.Cost(0), 1e-9)
}

func TestModel_SupportsDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		requested int
		want      bool
	}{
		{"member of declared set", []int{4, 8, 12}, 8, true},
		{"not a member", []int{4, 8, 12}, 7, false},
		{"empty set accepts anything", nil, 37, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Model{SupportedDurations: tt.durations}
			assert.Equal(t, tt.want, m.SupportsDuration(tt.requested))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusComplete.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
}

func TestFindModel(t *testing.T) {
	models := []Model{{ID: "a"}, {ID: "b"}}

	m, ok := FindModel(models, "b")
	assert.True(t, ok)
	assert.Equal(t, "b", m.ID)

	_, ok = FindModel(models, "missing")
	assert.False(t, ok)
}

func TestKeyConfig_AllowsModel(t *testing.T) {
	open := KeyConfig{Provider: NameOpenAI}
	assert.True(t, open.AllowsModel("sora-2"))

	restricted := KeyConfig{Provider: NameOpenAI, Models: []string{"sora-2"}}
	assert.True(t, restricted.AllowsModel("sora-2"))
	assert.False(t, restricted.AllowsModel("sora-2-pro"))
}
