package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/pipeline"
)

var (
	listHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	listDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	listWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known manuals and their source documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tbl := manuals.Default()
		sources := pipeline.Sources{Dir: cfg.InputDir, Explicit: cfg.Sources}
		fmt.Fprintln(cmd.OutOrStdout(), renderList(tbl, sources))
		return nil
	},
}

func renderList(tbl *manuals.Table, sources pipeline.Sources) string {
	var lines []string
	for _, m := range tbl.Manuals {
		src, err := sources.Find(m)
		switch {
		case errors.Is(err, pipeline.ErrNoSource):
			src = listWarn.Render("no source")
		case err != nil:
			src = listWarn.Render(err.Error())
		}
		lines = append(lines,
			listHead.Render(m.Key)+"  "+m.Name,
			listDim.Render("  id      ")+m.ID,
			listDim.Render("  output  ")+m.Output,
			listDim.Render("  source  ")+src,
		)
	}
	var codes []string
	for _, th := range tbl.Themes {
		codes = append(codes, fmt.Sprintf("%s %s", th.Code, th.Title))
	}
	lines = append(lines, listDim.Render("themes: ")+strings.Join(codes, ", "))
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(listCmd)
}
