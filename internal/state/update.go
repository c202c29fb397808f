package state

import "slices"

// Copy-and-override helpers. Each returns a new AgentState built from a
// clone of s with one field group replaced; s itself is never modified.
// Nested values are rebuilt whole (e.g. setting the product name rebuilds
// ProductInfo) so sibling fields always carry over.

func (s AgentState) WithModel(model string) AgentState {
	out := s.Clone()
	out.Model = model
	return out
}

func (s AgentState) WithProductInfo(p ProductInfo) AgentState {
	out := s.Clone()
	out.ProductInfo = p.clone()
	return out.Normalize()
}

func (s AgentState) WithProductName(name string) AgentState {
	p := s.ProductInfo.clone()
	p.Name = name
	return s.WithProductInfo(p)
}

func (s AgentState) WithProductCategory(category string) AgentState {
	p := s.ProductInfo.clone()
	p.Category = category
	return s.WithProductInfo(p)
}

func (s AgentState) WithTargetAudience(audience string) AgentState {
	out := s.Clone()
	out.TargetAudience = audience
	return out
}

func (s AgentState) WithNote(note string) AgentState {
	out := s.Clone()
	out.Note = note
	return out
}

func (s AgentState) WithNoteStyle(style NoteStyle) AgentState {
	out := s.Clone()
	out.NoteStyle = style
	return out.Normalize()
}

func (s AgentState) WithTags(tags []Tag) AgentState {
	out := s.Clone()
	out.Tags = cloneList(tags)
	return out
}

func (s AgentState) WithBloggerPersona(p BloggerPersona) AgentState {
	out := s.Clone()
	out.BloggerPersona = p.clone()
	return out
}

func (s AgentState) WithReferenceMaterials(materials []ReferenceMaterial) AgentState {
	out := s.Clone()
	out.ReferenceMaterials = cloneList(materials)
	return out
}

func (s AgentState) WithLogs(logs []LogEntry) AgentState {
	out := s.Clone()
	out.Logs = cloneList(logs)
	return out
}

// empties the progress log; the canvas does this before every submission
func (s AgentState) ClearLogs() AgentState {
	return s.WithLogs(nil)
}

// appends a not-yet-done log entry and returns its index
func (s AgentState) AppendLog(message string) (AgentState, int) {
	logs := append(cloneList(s.Logs), LogEntry{Message: message})
	return s.WithLogs(logs), len(logs) - 1
}

// marks the log entry at index i done. out-of-range indexes (the canvas
// may have cleared the logs meanwhile) leave the state unchanged.
func (s AgentState) MarkLogDone(i int) AgentState {
	if i < 0 || i >= len(s.Logs) {
		return s.Clone()
	}

	logs := cloneList(s.Logs)
	logs[i].Done = true
	return s.WithLogs(logs)
}

// AddReferenceMaterial appends m when its url is non-empty. ok is false and
// the returned state equals s otherwise. duplicates are accepted.
func (s AgentState) AddReferenceMaterial(m ReferenceMaterial) (next AgentState, ok bool) {
	if m.URL == "" {
		return s.Clone(), false
	}

	materials := append(cloneList(s.ReferenceMaterials), m)
	return s.WithReferenceMaterials(materials), true
}

// removes every material whose url equals url
func (s AgentState) RemoveReferenceMaterial(url string) AgentState {
	return s.RemoveReferenceMaterials([]string{url})
}

// removes every material whose url is in urls, preserving the order of the rest
func (s AgentState) RemoveReferenceMaterials(urls []string) AgentState {
	kept := make([]ReferenceMaterial, 0, len(s.ReferenceMaterials))

	for _, m := range s.ReferenceMaterials {
		if !slices.Contains(urls, m.URL) {
			kept = append(kept, m)
		}
	}

	return s.WithReferenceMaterials(kept)
}

// ReplaceReferenceMaterial maps the list, swapping in edited for the entry
// keyed by originalURL. Only the first matching entry is replaced. When
// nothing matches, the list is returned unchanged and matched is false.
func (s AgentState) ReplaceReferenceMaterial(originalURL string, edited ReferenceMaterial) (next AgentState, matched bool) {
	materials := make([]ReferenceMaterial, len(s.ReferenceMaterials))

	for i, m := range s.ReferenceMaterials {
		if !matched && m.URL == originalURL {
			materials[i] = edited
			matched = true
			continue
		}
		materials[i] = m
	}

	return s.WithReferenceMaterials(materials), matched
}

// returns the materials whose url is in urls, in list order
func (s AgentState) MatchingMaterials(urls []string) []ReferenceMaterial {
	out := []ReferenceMaterial{}

	for _, m := range s.ReferenceMaterials {
		if slices.Contains(urls, m.URL) {
			out = append(out, m)
		}
	}

	return out
}

// returns the first material keyed by url
func (s AgentState) FindReferenceMaterial(url string) (ReferenceMaterial, bool) {
	i := slices.IndexFunc(s.ReferenceMaterials, func(m ReferenceMaterial) bool {
		return m.URL == url
	})

	if i < 0 {
		return ReferenceMaterial{}, false
	}

	return s.ReferenceMaterials[i], true
}
