package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFloatAcceptsNumericKinds(t *testing.T) {
	r := NewResult(map[string]any{
		"f64": 6.5,
		"int": 7,
		"i64": int64(8),
		"str": "9",
	})

	v, ok := r.Float("f64")
	require.True(t, ok)
	assert.Equal(t, 6.5, v)

	v, ok = r.Float("int")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	v, ok = r.Float("i64")
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	_, ok = r.Float("str")
	assert.False(t, ok)
	_, ok = r.Float("missing")
	assert.False(t, ok)
}

func TestResultStringsAcceptsJSONShape(t *testing.T) {
	r := NewResult(map[string]any{
		"typed": []string{"a", "b"},
		"json":  []any{"a", 1, "b"},
		"other": 42,
	})

	assert.Equal(t, []string{"a", "b"}, r.Strings("typed"))
	assert.Equal(t, []string{"a", "b"}, r.Strings("json"))
	assert.Nil(t, r.Strings("other"))
	assert.Nil(t, r.Strings("missing"))
}

func TestOutputsLatestAndFirst(t *testing.T) {
	o := Outputs{}
	o[AgentSynthesis] = append(o[AgentSynthesis], NewResult(map[string]any{"v": "one"}))
	o[AgentSynthesis] = append(o[AgentSynthesis], NewResult(map[string]any{"v": "two"}))

	first, ok := o.First(AgentSynthesis)
	require.True(t, ok)
	v, _ := first.String("v")
	assert.Equal(t, "one", v)

	latest, ok := o.Latest(AgentSynthesis)
	require.True(t, ok)
	v, _ = latest.String("v")
	assert.Equal(t, "two", v)

	_, ok = o.Latest(AgentPeerReview)
	assert.False(t, ok)
}

func TestOutputsHas(t *testing.T) {
	o := Outputs{
		AgentDomainAnalysis:   {NewResult(nil)},
		AgentLiteratureSurvey: {NewResult(nil)},
	}

	assert.True(t, o.Has(AgentDomainAnalysis))
	assert.True(t, o.Has(AgentDomainAnalysis, AgentLiteratureSurvey))
	assert.False(t, o.Has(AgentDomainAnalysis, AgentResearchQuestions))
	assert.True(t, o.Has())
}

func TestRegistryResolvesAgents(t *testing.T) {
	registry := NewRegistry()
	registry.Register(staticAgent{name: "b"}, staticAgent{name: "a"})

	a, err := registry.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Name())

	_, err = registry.Get("missing")
	assert.ErrorIs(t, err, ErrAgentNotRegistered)

	assert.Equal(t, []string{"a", "b"}, registry.Names())
}

type staticAgent struct{ name string }

func (a staticAgent) Name() string { return a.name }

func (a staticAgent) Process(_ context.Context, _ Request) (Result, error) {
	return NewResult(nil), nil
}
