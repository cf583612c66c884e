package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/spilltag/internal/config"
	"github.com/gravitrone/spilltag/internal/logging"
	"github.com/gravitrone/spilltag/internal/ui"
)

// EditCmd returns the `spilltag edit` command. One id edits that item, more
// ids start a selection session tagging all of them at once.
func EditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <item-id>...",
		Short: "Edit item tags interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := ParseItemID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return RunEditor(c.OutOrStdout(), ids)
		},
	}
}

// RunEditor checks the server and runs the tag editor TUI for ids.
func RunEditor(out io.Writer, ids []int64) error {
	cfg, client, err := LoadClient()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.OpenFile(config.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	info, err := client.WithTimeout(pingTimeout).Ping(context.Background())
	if err != nil {
		return fmt.Errorf("server check: %w", err)
	}
	logger.Info("editing tags", "server", client.BaseURL(), "data_version", info.DataVersion, "items", ids)

	app := ui.NewApp(client, cfg, logger, ids)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	if done, ok := final.(ui.App); ok && len(ids) == 1 {
		fmt.Fprintf(out, "item %d: %s\n", ids[0], strings.Join(done.FinalTags(), ", "))
	}
	return nil
}
