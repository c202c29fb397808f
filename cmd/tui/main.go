package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/tui"
)

func main() {
	flags, err := config.ParseClientFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "notecanvas needs an interactive terminal")
		os.Exit(1)
	}

	// log lines would draw over the alt screen
	logger.SetDefault(logger.Discard())

	app := tui.NewApp(flags.ServerURL, flags.SessionID)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running notecanvas: %v\n", err)
		os.Exit(1)
	}
}
