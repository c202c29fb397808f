package state

// kind of external source attached to a canvas
type MaterialType string

const (
	MaterialCompetitorNote MaterialType = "competitor_note"
	MaterialUserReview     MaterialType = "user_review"
	MaterialProductInfo    MaterialType = "product_info"
	MaterialTrendAnalysis  MaterialType = "trend_analysis"
	MaterialImage          MaterialType = "image"
)

// reports whether t is one of the known material types
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialCompetitorNote, MaterialUserReview, MaterialProductInfo, MaterialTrendAnalysis, MaterialImage:
		return true
	}

	return false
}

type HeatLevel string

const (
	HeatHigh   HeatLevel = "high"
	HeatMedium HeatLevel = "medium"
	HeatLow    HeatLevel = "low"
)

func (h HeatLevel) Valid() bool {
	return h == HeatHigh || h == HeatMedium || h == HeatLow
}

type NoteStyle string

const (
	StyleGrassPlanting NoteStyle = "grass_planting"
	StyleReview        NoteStyle = "review"
	StyleTutorial      NoteStyle = "tutorial"
	StyleLifestyle     NoteStyle = "lifestyle"
	StyleUnboxing      NoteStyle = "unboxing"
)

func (s NoteStyle) Valid() bool {
	switch s {
	case StyleGrassPlanting, StyleReview, StyleTutorial, StyleLifestyle, StyleUnboxing:
		return true
	}

	return false
}

// subject of the generated note
type ProductInfo struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Price          string   `json:"price,omitempty"`
	Features       []string `json:"features"`
	TargetAudience string   `json:"target_audience"`
	SellingPoints  []string `json:"selling_points"`
}

// an external source attached by the user. url is the lookup key for
// edit and delete; it is not enforced unique.
type ReferenceMaterial struct {
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        MaterialType `json:"type"`
	Content     string       `json:"content,omitempty"`
}

// a generated topical label
type Tag struct {
	Name      string    `json:"name"`
	HeatLevel HeatLevel `json:"heat_level"`
	Category  string    `json:"category"`
}

type BloggerPersona struct {
	Name              string   `json:"name"`
	Style             string   `json:"style"`
	Tone              string   `json:"tone"`
	TargetAudience    string   `json:"target_audience"`
	Expertise         []string `json:"expertise"`
	PersonalityTraits []string `json:"personality_traits"`
	ContentThemes     []string `json:"content_themes"`
}

// a persona with an empty name is unset and renders as a placeholder
func (p BloggerPersona) IsSet() bool {
	return p.Name != ""
}

// progress message emitted by the agent while it works
type LogEntry struct {
	Message string `json:"message"`
	Done    bool   `json:"done"`
}

// AgentState is the aggregate shared by the canvas and the remote agent.
// Every write replaces the whole value; list fields are never nil.
type AgentState struct {
	Model              string              `json:"model"`
	ProductInfo        ProductInfo         `json:"product_info"`
	Note               string              `json:"xiaohongshu_note"`
	ReferenceMaterials []ReferenceMaterial `json:"reference_materials"`
	Tags               []Tag               `json:"tags"`
	TargetAudience     string              `json:"target_audience"`
	NoteStyle          NoteStyle           `json:"note_style"`
	BloggerPersona     BloggerPersona      `json:"blogger_persona"`
	Logs               []LogEntry          `json:"logs"`
}

// a versioned value of the store. Version increases by one on every Replace.
type Snapshot struct {
	Version uint64     `json:"version"`
	State   AgentState `json:"state"`
}
