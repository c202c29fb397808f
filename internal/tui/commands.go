package tui

import (
	stderrors "errors"
	"fmt"
	"strings"

	"codeberg.org/notecanvas/server/internal/canvas"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/state"
)

var errUnknownCommand = stderrors.New("unknown command")

// slash commands understood by the editor
var editorCommands = []Command{
	{Name: "/name <text>", Description: "set the product name"},
	{Name: "/category <text>", Description: "set the product category"},
	{Name: "/audience <text>", Description: "set the target audience"},
	{Name: "/style <style>", Description: "grass_planting, review, tutorial, lifestyle or unboxing"},
	{Name: "/model <provider>", Description: "openai, deepseek, anthropic or google_genai"},
	{Name: "/note <text>", Description: "overwrite the note"},
	{Name: "/add <url> [type] [title]", Description: "attach a reference material"},
	{Name: "/edit <url> <title>", Description: "retitle a reference material"},
	{Name: "/rm <url>", Description: "remove a reference material"},
	{Name: "/clear", Description: "clear the conversation"},
	{Name: "/help", Description: "list commands"},
}

// runCommand applies one slash command to c and returns a status line.
// /clear and /help are handled by the editor.
func runCommand(c *canvas.Canvas, line string) (string, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/name":
		c.SetProductName(rest)
		return "product name updated", nil

	case "/category":
		c.SetProductCategory(rest)
		return "product category updated", nil

	case "/audience":
		c.SetTargetAudience(rest)
		return "target audience updated", nil

	case "/style":
		style := state.NoteStyle(rest)
		if !style.Valid() {
			return "", fmt.Errorf("unknown note style %q", rest)
		}

		c.SetNoteStyle(style)
		return "note style set to " + rest, nil

	case "/model":
		if _, err := llm.ParseProvider(rest); err != nil {
			return "", err
		}

		c.SetModel(rest)
		return "model set to " + rest, nil

	case "/note":
		c.SetNote(rest)
		return "note updated", nil

	case "/add":
		return addMaterial(c, rest)

	case "/edit":
		return editMaterial(c, rest)

	case "/rm":
		if rest == "" {
			return "", fmt.Errorf("usage: /rm <url>")
		}

		c.Remove(rest)
		return "removed " + rest, nil
	}

	return "", fmt.Errorf("%w: %s", errUnknownCommand, name)
}

// /add <url> [type] [title...]; the type is optional when the second
// word is not a known material type
func addMaterial(c *canvas.Canvas, args string) (string, error) {
	fields := strings.Fields(args)

	draft := c.Draft()
	if len(fields) > 0 {
		draft.URL = fields[0]
		fields = fields[1:]
	}

	if len(fields) > 0 && state.MaterialType(fields[0]).Valid() {
		draft.Type = state.MaterialType(fields[0])
		fields = fields[1:]
	}

	if len(fields) > 0 {
		draft.Title = strings.Join(fields, " ")
	}

	if err := c.OpenAdd(); err != nil {
		return "", err
	}

	if err := c.SetDraft(draft); err != nil {
		c.Cancel()
		return "", err
	}

	added, err := c.ConfirmAdd()
	if err != nil {
		c.Cancel()
		return "", err
	}

	// an empty url keeps the dialog open; the terminal has no dialog to
	// leave open, so close it and keep the draft
	if !added {
		c.Cancel()
		return "", fmt.Errorf("usage: /add <url> [type] [title]")
	}

	return "added " + draft.URL, nil
}

func editMaterial(c *canvas.Canvas, args string) (string, error) {
	url, title, _ := strings.Cut(args, " ")
	if url == "" {
		return "", fmt.Errorf("usage: /edit <url> <title>")
	}

	if err := c.OpenEdit(url); err != nil {
		return "", err
	}

	draft := c.EditDraft()
	draft.Title = strings.TrimSpace(title)

	if err := c.SetEditDraft(draft); err != nil {
		c.Cancel()
		return "", err
	}

	matched, err := c.ConfirmEdit()
	if err != nil {
		return "", err
	}

	if !matched {
		return "", canvas.ErrMaterialNotFound
	}

	return "updated " + url, nil
}
