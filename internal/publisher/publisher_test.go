package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/notecanvas/server/internal/state"
)

func TestNoteHTML(t *testing.T) {
	out, err := NoteHTML("**种草** 这款面霜\n第二行\n\n- 保湿\n- 平价")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>种草</strong>")
	assert.Contains(t, out, "<br>")
	assert.Contains(t, out, "<li>保湿</li>")
}

func TestNoteHTMLDropsRawHTML(t *testing.T) {
	out, err := NoteHTML("hi <script>alert(1)</script>")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
}

func TestRender(t *testing.T) {
	s := state.Initial().
		WithProductName("云朵面霜").
		WithNote("姐妹们冲！").
		WithTags([]state.Tag{
			{Name: "护肤", HeatLevel: state.HeatHigh},
			{Name: "<b>平价</b>", HeatLevel: state.HeatLow},
		})

	out, err := Render(s)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>云朵面霜</title>")
	assert.Contains(t, page, "<p>姐妹们冲！</p>")
	assert.Contains(t, page, `<span class="tag tag-high">#护肤</span>`)
	assert.Contains(t, page, "#&lt;b&gt;平价&lt;/b&gt;")
}

func TestRenderWithoutTagsOrTitle(t *testing.T) {
	out, err := Render(state.Initial().WithNote("正文"))
	require.NoError(t, err)

	assert.Contains(t, string(out), "<title>小红书笔记</title>")
	assert.NotContains(t, string(out), `class="tags"`)
}

func TestRenderEmptyNote(t *testing.T) {
	_, err := Render(state.Initial())
	assert.ErrorIs(t, err, ErrEmptyNote)
}
