package canvas

import (
	"fmt"
	"strings"

	"codeberg.org/notecanvas/server/internal/state"
	"github.com/charmbracelet/lipgloss"
)

// Render draws the whole canvas for s. Empty sections show their
// placeholder text instead of content.
func Render(s state.AgentState) string {
	sections := []string{
		renderProduct(s),
		renderPersona(s.BloggerPersona),
		renderMaterials(s.ReferenceMaterials),
		renderNote(s),
		renderTags(s.Tags),
	}

	if progress := RenderProgress(s.Logs); progress != "" {
		sections = append([]string{progress}, sections...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func field(label, value, placeholder string) string {
	if value == "" {
		return labelStyle.Render(label+": ") + placeholderStyle.Render(placeholder)
	}

	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

func renderProduct(s state.AgentState) string {
	lines := []string{
		sectionStyle.Render("产品信息"),
		field("名称", s.ProductInfo.Name, PlaceholderProductName),
		field("类别", s.ProductInfo.Category, PlaceholderProductCategory),
		field("目标用户", s.TargetAudience, PlaceholderTargetAudience),
		labelStyle.Render("笔记风格: ") + valueStyle.Render(string(s.NoteStyle)),
		labelStyle.Render("模型: ") + valueStyle.Render(s.Model),
	}

	return strings.Join(lines, "\n")
}

// RenderPersona draws the persona block, or only the placeholder when the
// persona is unset.
func RenderPersona(p state.BloggerPersona) string {
	return renderPersona(p)
}

func renderPersona(p state.BloggerPersona) string {
	lines := []string{sectionStyle.Render("博主人设")}

	if !p.IsSet() {
		return strings.Join(append(lines, placeholderStyle.Render(PlaceholderPersona)), "\n")
	}

	lines = append(lines,
		field("博主名称", p.Name, ""),
		field("内容风格", p.Style, ""),
		field("语言风格", p.Tone, ""),
		field("目标受众", p.TargetAudience, ""),
	)

	for _, group := range []struct {
		label string
		items []string
	}{
		{"专业领域", p.Expertise},
		{"个性特点", p.PersonalityTraits},
		{"内容主题", p.ContentThemes},
	} {
		if len(group.items) > 0 {
			lines = append(lines, labelStyle.Render(group.label+": ")+chips(group.items))
		}
	}

	return strings.Join(lines, "\n")
}

func chips(items []string) string {
	rendered := make([]string, len(items))
	for i, item := range items {
		rendered[i] = chipStyle.Render(item)
	}

	return strings.Join(rendered, " ")
}

func renderMaterials(materials []state.ReferenceMaterial) string {
	head := sectionStyle.Render("参考素材")

	if len(materials) == 0 {
		return head + "\n" + placeholderStyle.Render(PlaceholderMaterials)
	}

	return head + "\n" + RenderMaterialList(materials)
}

// RenderMaterialList draws one card per material, numbered from 1.
func RenderMaterialList(materials []state.ReferenceMaterial) string {
	cards := make([]string, len(materials))

	for i, m := range materials {
		title := m.Title
		if title == "" {
			title = m.URL
		}

		body := fmt.Sprintf("%d. %s  %s\n%s",
			i+1,
			valueStyle.Render(title),
			labelStyle.Render("["+string(m.Type)+"]"),
			labelStyle.Render(m.URL),
		)

		if m.Description != "" {
			body += "\n" + m.Description
		}

		cards[i] = cardStyle.Render(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderNote(s state.AgentState) string {
	head := sectionStyle.Render("小红书笔记")

	if strings.TrimSpace(s.Note) == "" {
		return head + "\n" + placeholderStyle.Render(PlaceholderNote)
	}

	return head + "\n" + valueStyle.Render(s.Note)
}

// RenderTags draws tag chips, or only the placeholder when there are none.
func RenderTags(tags []state.Tag) string {
	return renderTags(tags)
}

func renderTags(tags []state.Tag) string {
	head := sectionStyle.Render("话题标签")

	if len(tags) == 0 {
		return head + "\n" + placeholderStyle.Render(PlaceholderTags)
	}

	rendered := make([]string, len(tags))
	for i, tag := range tags {
		rendered[i] = chipStyle.Render("#"+tag.Name) + heatStyle.Render("("+string(tag.HeatLevel)+")")
	}

	return head + "\n" + strings.Join(rendered, " ")
}

// RenderProgress draws the agent's log, or "" when there is nothing to show.
func RenderProgress(logs []state.LogEntry) string {
	if len(logs) == 0 {
		return ""
	}

	lines := make([]string, len(logs))
	for i, entry := range logs {
		if entry.Done {
			lines[i] = logDoneStyle.Render("✓ " + entry.Message)
		} else {
			lines[i] = logActiveStyle.Render("… " + entry.Message)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderConfirmation draws a delete request. The buttons are only drawn
// while the request can still be answered.
func RenderConfirmation(c Confirmation) string {
	lines := []string{confirmTitleStyle.Render(ConfirmDeleteTitle)}

	if len(c.Materials) > 0 {
		lines = append(lines, RenderMaterialList(c.Materials))
	}

	if c.Available {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			buttonStyle.Render("[n] 取消"),
			" ",
			buttonStyle.Render("[y] 删除"),
		))
	}

	return strings.Join(lines, "\n")
}
