package state

import (
	"encoding/json"
	"slices"
)

// model used when a new canvas starts
const DefaultModel = "deepseek"

// returns the fixed value a new session starts from
func Initial() AgentState {
	return AgentState{
		Model:     DefaultModel,
		NoteStyle: StyleGrassPlanting,
	}.Normalize()
}

// Normalize returns s with every list field non-nil and an empty note
// style replaced by the default one. Already-normalized values come back
// unchanged.
func (s AgentState) Normalize() AgentState {
	s.ProductInfo.Features = nonNil(s.ProductInfo.Features)
	s.ProductInfo.SellingPoints = nonNil(s.ProductInfo.SellingPoints)
	s.ReferenceMaterials = nonNil(s.ReferenceMaterials)
	s.Tags = nonNil(s.Tags)
	s.Logs = nonNil(s.Logs)
	s.BloggerPersona.Expertise = nonNil(s.BloggerPersona.Expertise)
	s.BloggerPersona.PersonalityTraits = nonNil(s.BloggerPersona.PersonalityTraits)
	s.BloggerPersona.ContentThemes = nonNil(s.BloggerPersona.ContentThemes)

	if s.NoteStyle == "" {
		s.NoteStyle = StyleGrassPlanting
	}

	return s
}

// Clone returns a deep copy so that neither side can mutate the other's
// backing arrays.
func (s AgentState) Clone() AgentState {
	out := s
	out.ProductInfo = s.ProductInfo.clone()
	out.BloggerPersona = s.BloggerPersona.clone()
	out.ReferenceMaterials = cloneList(s.ReferenceMaterials)
	out.Tags = cloneList(s.Tags)
	out.Logs = cloneList(s.Logs)

	return out
}

// UnmarshalJSON decodes and normalizes, so null or missing lists arrive empty.
func (s *AgentState) UnmarshalJSON(data []byte) error {
	type raw AgentState

	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*s = AgentState(decoded).Normalize()
	return nil
}

// MarshalJSON encodes a normalized copy so lists are [] rather than null.
func (s AgentState) MarshalJSON() ([]byte, error) {
	type raw AgentState
	return json.Marshal(raw(s.Normalize()))
}

func (p ProductInfo) clone() ProductInfo {
	p.Features = cloneList(p.Features)
	p.SellingPoints = cloneList(p.SellingPoints)
	return p
}

func (p BloggerPersona) clone() BloggerPersona {
	p.Expertise = cloneList(p.Expertise)
	p.PersonalityTraits = cloneList(p.PersonalityTraits)
	p.ContentThemes = cloneList(p.ContentThemes)
	return p
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}

	return list
}

func cloneList[T any](list []T) []T {
	if list == nil {
		return []T{}
	}

	return slices.Clone(list)
}
