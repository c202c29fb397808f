package canvas

import (
	"errors"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/state"
)

// dialog state of the reference-material panel
type Mode int

const (
	ModeIdle Mode = iota
	ModeAdding
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeAdding:
		return "adding"
	case ModeEditing:
		return "editing"
	default:
		return "idle"
	}
}

var (
	ErrMaterialNotFound  = errors.New("reference material not found")
	ErrInvalidTransition = errors.New("invalid dialog transition")
)

// StateWriter is the part of a store the canvas reads and writes through.
// state.Store satisfies it; so does the terminal client's mirror.
type StateWriter interface {
	Snapshot() state.Snapshot
	Replace(next state.AgentState) state.Snapshot
}

// Confirmation is what the canvas shows for an agent-issued delete
// request: the requested materials that still exist, plus whether the
// YES/NO buttons may be shown.
type Confirmation struct {
	Request   bridge.Request
	URLs      []string
	Materials []state.ReferenceMaterial
	Available bool
}

// placeholder text for empty sections
const (
	PlaceholderProductName     = "产品名称"
	PlaceholderProductCategory = "产品类别"
	PlaceholderTargetAudience  = "目标用户"
	PlaceholderPersona         = "提供产品信息后，AI将生成合适的博主人设"
	PlaceholderMaterials       = "点击上方按钮添加参考素材。"
	PlaceholderNote            = "在这里撰写小红书笔记内容..."
	PlaceholderTags            = "AI将根据产品信息自动生成相关话题标签"
	ConfirmDeleteTitle         = "删除这些参考素材？"
)
