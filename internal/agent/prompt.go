package agent

import (
	"fmt"
	"strings"

	"codeberg.org/notecanvas/server/internal/state"
)

const sectionRule = "═══════════════════════════════════════════════════════════\n"

const routerInstructions = `你是小红书笔记助手的意图路由器。阅读用户最后一条消息，只输出一个 JSON 对象，不要输出其他内容：
{"intent": "conversation" | "note_creation" | "delete_materials", "urls": []}

- note_creation：用户要求撰写、改写或完善笔记、标签或博主人设。
- delete_materials：用户要求删除参考素材。把要删除素材的 url 放进 urls，只能使用下方列表中出现过的 url。
- conversation：其他所有情况，包括提问和闲聊。`

const noteInstructions = `你是一名资深小红书博主，根据下面的画布内容撰写笔记。只输出一个 JSON 对象：
{
  "product_info": {"name": "", "category": "", "price": "", "features": [], "target_audience": "", "selling_points": []},
  "xiaohongshu_note": "笔记正文，可使用 emoji 和分段",
  "tags": [{"name": "", "heat_level": "high|medium|low", "category": ""}],
  "blogger_persona": {"name": "", "style": "", "tone": "", "target_audience": "", "expertise": [], "personality_traits": [], "content_themes": []},
  "reply": "给用户的一句话说明"
}
不需要修改的字段请输出 null。`

const conversationInstructions = `你是一名小红书内容策划助手。结合画布内容回答用户的问题，语气亲切，回答简洁。如果用户想生成笔记，提醒他们直接说出需求。`

// renders the parts of the state the model needs to see
func buildStateContext(s state.AgentState) string {
	var builder strings.Builder

	builder.WriteString(sectionRule)
	builder.WriteString("当前画布\n")
	builder.WriteString(sectionRule)

	p := s.ProductInfo
	fmt.Fprintf(&builder, "产品名称: %s\n", orNone(p.Name))
	fmt.Fprintf(&builder, "产品类别: %s\n", orNone(p.Category))

	if p.Price != "" {
		fmt.Fprintf(&builder, "价格: %s\n", p.Price)
	}

	if len(p.Features) > 0 {
		fmt.Fprintf(&builder, "产品特点: %s\n", strings.Join(p.Features, "、"))
	}

	if len(p.SellingPoints) > 0 {
		fmt.Fprintf(&builder, "卖点: %s\n", strings.Join(p.SellingPoints, "、"))
	}

	fmt.Fprintf(&builder, "目标人群: %s\n", orNone(s.TargetAudience))
	fmt.Fprintf(&builder, "笔记风格: %s\n", orNone(string(s.NoteStyle)))

	if s.BloggerPersona.IsSet() {
		fmt.Fprintf(&builder, "博主人设: %s (%s, %s)\n", s.BloggerPersona.Name, s.BloggerPersona.Style, s.BloggerPersona.Tone)
	}

	if len(s.ReferenceMaterials) > 0 {
		builder.WriteString("\n")
		builder.WriteString(sectionRule)
		builder.WriteString("参考素材\n")
		builder.WriteString(sectionRule)

		for i, m := range s.ReferenceMaterials {
			fmt.Fprintf(&builder, "%d. [%s] %s\n   url: %s\n", i+1, m.Type, orNone(m.Title), m.URL)

			if m.Description != "" {
				fmt.Fprintf(&builder, "   描述: %s\n", m.Description)
			}

			if m.Content != "" {
				fmt.Fprintf(&builder, "   内容: %s\n", truncateRunes(m.Content, 800))
			}
		}
	}

	if s.Note != "" {
		builder.WriteString("\n")
		builder.WriteString(sectionRule)
		builder.WriteString("当前笔记\n")
		builder.WriteString(sectionRule)
		builder.WriteString(s.Note)
		builder.WriteString("\n")
	}

	if len(s.Tags) > 0 {
		names := make([]string, 0, len(s.Tags))
		for _, t := range s.Tags {
			names = append(names, "#"+t.Name)
		}

		fmt.Fprintf(&builder, "\n当前标签: %s\n", strings.Join(names, " "))
	}

	return builder.String()
}

func buildPrompt(instructions string, s state.AgentState) string {
	return instructions + "\n\n" + buildStateContext(s)
}

func orNone(v string) string {
	if v == "" {
		return "(未填写)"
	}

	return v
}
