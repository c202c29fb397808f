package canvas

import (
	"testing"

	"codeberg.org/notecanvas/server/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUnsetPersonaShowsPlaceholder(t *testing.T) {
	p := state.BloggerPersona{Style: "亲切", Expertise: []string{"护肤"}}

	out := RenderPersona(p)

	assert.Contains(t, out, PlaceholderPersona)
	assert.NotContains(t, out, "亲切")
	assert.NotContains(t, out, "护肤")
}

func TestRenderSetPersona(t *testing.T) {
	out := RenderPersona(state.BloggerPersona{Name: "小雅", Style: "亲切", Expertise: []string{"护肤"}})

	assert.NotContains(t, out, PlaceholderPersona)
	assert.Contains(t, out, "小雅")
	assert.Contains(t, out, "护肤")
}

func TestRenderTags(t *testing.T) {
	assert.Contains(t, RenderTags([]state.Tag{}), PlaceholderTags)

	out := RenderTags([]state.Tag{{Name: "好物推荐", HeatLevel: state.HeatHigh}})
	assert.NotContains(t, out, PlaceholderTags)
	assert.Contains(t, out, "#好物推荐")
	assert.Contains(t, out, "(high)")
}

func TestRenderInitialState(t *testing.T) {
	out := Render(state.Initial())

	for _, placeholder := range []string{
		PlaceholderProductName,
		PlaceholderPersona,
		PlaceholderMaterials,
		PlaceholderNote,
		PlaceholderTags,
	} {
		assert.Contains(t, out, placeholder)
	}
}

func TestRenderProgress(t *testing.T) {
	assert.Equal(t, "", RenderProgress(nil))

	out := RenderProgress([]state.LogEntry{{Message: "downloading a", Done: true}, {Message: "downloading b"}})
	assert.Contains(t, out, "downloading a")
	assert.Contains(t, out, "downloading b")
}

func TestRenderConfirmation(t *testing.T) {
	conf, err := BuildConfirmation(
		state.Initial().WithReferenceMaterials([]state.ReferenceMaterial{rm("a", "Alpha")}),
		deleteRequest(t, "a"),
		true,
	)
	require.NoError(t, err)

	out := RenderConfirmation(conf)
	assert.Contains(t, out, ConfirmDeleteTitle)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "删除")

	conf.Available = false
	assert.NotContains(t, RenderConfirmation(conf), "[y]")
}
