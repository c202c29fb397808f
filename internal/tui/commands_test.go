package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/notecanvas/server/internal/canvas"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/state"
)

func newTestCanvas() (*canvas.Canvas, *state.Store) {
	store := state.NewStore(state.Initial())
	return canvas.New(store), store
}

func TestRunCommandSetsFields(t *testing.T) {
	c, store := newTestCanvas()

	_, err := runCommand(c, "/name 云朵面霜")
	require.NoError(t, err)
	_, err = runCommand(c, "/category 护肤")
	require.NoError(t, err)
	_, err = runCommand(c, "/audience 敏感肌 学生党")
	require.NoError(t, err)
	_, err = runCommand(c, "/note 今天分享一款面霜")
	require.NoError(t, err)

	s := store.State()
	assert.Equal(t, "云朵面霜", s.ProductInfo.Name)
	assert.Equal(t, "护肤", s.ProductInfo.Category)
	assert.Equal(t, "敏感肌 学生党", s.ProductInfo.TargetAudience)
	assert.Equal(t, "今天分享一款面霜", s.Note)
	assert.Equal(t, uint64(4), store.Version())
}

func TestRunCommandStyleAndModel(t *testing.T) {
	c, store := newTestCanvas()

	_, err := runCommand(c, "/style review")
	require.NoError(t, err)
	assert.Equal(t, state.StyleReview, store.State().NoteStyle)

	_, err = runCommand(c, "/style poetry")
	require.Error(t, err)
	assert.Equal(t, state.StyleReview, store.State().NoteStyle)

	_, err = runCommand(c, "/model anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", store.State().Model)

	_, err = runCommand(c, "/model mistral")
	require.ErrorIs(t, err, llm.ErrInvalidConfiguration)
	assert.Equal(t, "anthropic", store.State().Model)
}

func TestRunCommandAddEditRemove(t *testing.T) {
	c, store := newTestCanvas()

	_, err := runCommand(c, "/add https://a.example user_review 真实测评")
	require.NoError(t, err)

	materials := store.State().ReferenceMaterials
	require.Len(t, materials, 1)
	assert.Equal(t, "https://a.example", materials[0].URL)
	assert.Equal(t, state.MaterialUserReview, materials[0].Type)
	assert.Equal(t, "真实测评", materials[0].Title)

	_, err = runCommand(c, "/add https://b.example 竞品笔记")
	require.NoError(t, err)

	materials = store.State().ReferenceMaterials
	require.Len(t, materials, 2)
	assert.Equal(t, state.MaterialCompetitorNote, materials[1].Type)
	assert.Equal(t, "竞品笔记", materials[1].Title)

	_, err = runCommand(c, "/edit https://a.example 新标题")
	require.NoError(t, err)
	assert.Equal(t, "新标题", store.State().ReferenceMaterials[0].Title)

	_, err = runCommand(c, "/rm https://a.example")
	require.NoError(t, err)

	materials = store.State().ReferenceMaterials
	require.Len(t, materials, 1)
	assert.Equal(t, "https://b.example", materials[0].URL)
	assert.Equal(t, canvas.ModeIdle, c.Mode())
}

func TestRunCommandAddWithoutURL(t *testing.T) {
	c, store := newTestCanvas()

	_, err := runCommand(c, "/add")
	require.Error(t, err)

	assert.Empty(t, store.State().ReferenceMaterials)
	assert.Equal(t, uint64(0), store.Version())
	assert.Equal(t, canvas.ModeIdle, c.Mode())
}

func TestRunCommandEditMissing(t *testing.T) {
	c, _ := newTestCanvas()

	_, err := runCommand(c, "/edit https://missing.example 标题")
	require.ErrorIs(t, err, canvas.ErrMaterialNotFound)
	assert.Equal(t, canvas.ModeIdle, c.Mode())
}

func TestRunCommandUnknown(t *testing.T) {
	c, _ := newTestCanvas()

	_, err := runCommand(c, "/dance")
	require.ErrorIs(t, err, errUnknownCommand)
}
