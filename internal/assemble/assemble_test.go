package assemble

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/manualgest/internal/doctree"
	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/schema"
	"github.com/dgallion1/manualgest/internal/structure"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func assembleText(t *testing.T, pages ...string) *Result {
	t.Helper()
	tbl := manuals.Default()
	m, ok := tbl.Lookup("nybyg")
	require.True(t, ok)

	var ps []doctree.Page
	for i, p := range pages {
		ps = append(ps, doctree.Page{Number: i + 1, Text: p})
	}
	tokens := structure.NewParser(tbl, quietLog).Parse(ps)
	res, err := New(tbl, m, nil, quietLog).Assemble(tokens)
	require.NoError(t, err)
	return res
}

func TestAssemble_Scenario(t *testing.T) {
	res := assembleText(t, strings.Join([]string{
		"DET SOCIALE",
		"DS1 Livet Mellem Naboer",
		"DS1.1 Livet Mellem Naboer",
		"01 Det naturlige møde",
		"Beskrivelse",
		"Projektet skaber rammer for det naturlige",
		"møde mellem naboer.",
	}, "\n"))

	require.Len(t, res.Themes, 1)
	theme := res.Themes[0]
	assert.Equal(t, schema.TypeTheme, theme.Type)
	assert.Equal(t, "DS", theme.Code)
	assert.Equal(t, "Det Sociale", theme.Title)
	assert.Equal(t, "#d96552", theme.Style.PrimaryColor)

	require.Len(t, theme.Items, 1)
	crit := theme.Items[0]
	assert.Equal(t, schema.TypeCriterion, crit.Type)
	assert.Equal(t, "DS1", crit.Code)

	require.Len(t, crit.Items, 1)
	group := crit.Items[0]
	assert.Equal(t, schema.TypeTaskGroup, group.Type)
	assert.Equal(t, "DS1.1", group.Code)

	require.Len(t, group.Items, 1)
	task := group.Items[0]
	assert.Equal(t, schema.TypeTask, task.Type)
	assert.Equal(t, "01", task.Code)
	assert.Equal(t, "Det naturlige møde", task.Title)

	require.Len(t, task.Items, 1)
	item := task.Items[0]
	assert.Equal(t, schema.TypeTaskItem, item.Type)
	assert.Equal(t, "01.1", item.Code)
	assert.Equal(t, "<strong>Beskrivelse</strong>\nProjektet skaber rammer for det naturlige møde mellem naboer.", item.Text)
	require.NotNil(t, item.Definition)
	assert.Len(t, item.Definition.Options, 3)

	require.Len(t, task.Documentation, 1)
	assert.Equal(t, "pdf", task.Documentation[0].Type)
	assert.Equal(t, "Manual (side 1)", task.Documentation[0].Text)
	assert.True(t, strings.HasSuffix(task.Documentation[0].URL, "Nybyg.pdf?page=1"))

	assert.Empty(t, res.Issues)
}

func TestAssemble_DocumentationAndContribution(t *testing.T) {
	res := assembleText(t,
		"DS1.1 Livet Mellem Naboer\n01 Det naturlige møde\nBeskrivelse\nTekst om mødet.\nDokumentationskrav\nPlanudsnit / fotodokumentation,\nog beskrivelser i tekst",
		"Hvordan kan projektet bidrage?\nVed at skabe pladser.",
	)

	task := res.Themes[0].Items[0].Items[0].Items[0]
	require.Len(t, task.Documentation, 2)
	assert.Equal(t, schema.Documentation{
		Type:  "text",
		Label: "Dokumentationskrav",
		Text:  "Planudsnit / fotodokumentation, og beskrivelser i tekst",
	}, task.Documentation[1])

	require.Len(t, task.Items, 1)
	text := task.Items[0].Text
	assert.Contains(t, text, "<strong>Beskrivelse</strong>\nTekst om mødet.")
	assert.Contains(t, text, "<strong>Hvordan kan projektet bidrage</strong>\nVed at skabe pladser.")
	assert.NotContains(t, text, "Planudsnit", "documentation requirements stay on the task")
}

func TestAssemble_ReopenSiblingsInsteadOfDuplicating(t *testing.T) {
	res := assembleText(t,
		// Table of contents lists all themes first.
		"DET SOCIALE\nINDEKLIMA, ENERGI OG MILJØ\nMATERIALER",
		"DET SOCIALE\nDS1 Livet Mellem Naboer\nDS1.1 Livet Mellem Naboer\n01 Det naturlige møde\nBeskrivelse\nEt.",
		// Running header repeats the criterion; the open task must stay open.
		"DS1 Livet Mellem Naboer\nFortsat tekst.\n\n02 Fælles rum\nBeskrivelse\nTo.",
		"MATERIALER\nMA1 Materialevalg\nMA1.1 Materialevalg\n01 Genbrug\nBeskrivelse\nTre.",
	)

	var codes []string
	for _, th := range res.Themes {
		codes = append(codes, th.Code)
	}
	assert.Equal(t, []string{"DS", "IE", "MA"}, codes)

	ds := res.Themes[0]
	require.Len(t, ds.Items, 1)
	tasks := ds.Items[0].Items[0].Items
	require.Len(t, tasks, 2)
	assert.Contains(t, tasks[0].Items[0].Text, "Et. Fortsat tekst.")
	assert.Equal(t, 2, tasks[1].SortOrder)

	ma := res.Themes[2]
	assert.Equal(t, 3, ma.SortOrder)
	assert.Equal(t, "01", ma.Items[0].Items[0].Items[0].Code, "task codes repeat across groups")

	// IE has no criteria: kept with empty items and reported.
	ie := res.Themes[1]
	assert.NotNil(t, ie.Items)
	assert.Empty(t, ie.Items)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "IE", res.Issues[0].Path)
}

func TestAssemble_ContentsPageDoesNotOwnTheLink(t *testing.T) {
	res := assembleText(t,
		"DS1.1 Livet Mellem Naboer ........ 6\n01 Det naturlige møde ........ 6\n02 Fælles rum ........ 7",
		"", "", "", "",
		"DS1.1 Livet Mellem Naboer\n01 Det naturlige møde\nBeskrivelse\nEt.",
		"02 Fælles rum\nBeskrivelse\nTo.",
		// A task that already has content keeps its page.
		"01 Det naturlige møde",
	)

	tasks := res.Themes[0].Items[0].Items[0].Items
	require.Len(t, tasks, 2)
	for i, page := range []int{6, 7} {
		task := tasks[i]
		assert.Equal(t, page, task.Page, task.Code)
		require.Len(t, task.Documentation, 1, task.Code)
		assert.Equal(t, fmt.Sprintf("Manual (side %d)", page), task.Documentation[0].Text)
		assert.True(t, strings.HasSuffix(task.Documentation[0].URL, fmt.Sprintf("?page=%d", page)))
	}
}

func TestAssemble_ThemeNameInProseStaysText(t *testing.T) {
	res := assembleText(t, strings.Join([]string{
		"DET SOCIALE",
		"DS1 Livet Mellem Naboer",
		"DS1.1 Livet Mellem Naboer",
		"01 Det naturlige møde",
		"Beskrivelse",
		"Der skal anvendes genanvendte",
		"materialer.",
		"Det giver et bedre resultat for alle.",
	}, "\n"))

	require.Len(t, res.Themes, 1)
	task := res.Themes[0].Items[0].Items[0].Items[0]
	require.Len(t, task.Items, 1)
	assert.Contains(t, task.Items[0].Text, "genanvendte materialer. Det giver et bedre resultat for alle.")
}

func TestAssemble_CriterionSwitchesTheme(t *testing.T) {
	res := assembleText(t, "DET SOCIALE\nIE2 Energi\nIE2.1 Energi\n01 Forbrug\nBeskrivelse\nLavt.")
	require.Len(t, res.Themes, 2)
	assert.Equal(t, "IE", res.Themes[1].Code)
	assert.Equal(t, "Indeklima, Energi og Miljø", res.Themes[1].Title)
	assert.Equal(t, "IE2", res.Themes[1].Items[0].Code)
}

func TestAssemble_TaskGroupSynthesised(t *testing.T) {
	res := assembleText(t, "DET SOCIALE\nDS2 Bygninger\n\n01 Facader\nBeskrivelse\nTekst.")
	crit := res.Themes[0].Items[0]
	require.Len(t, crit.Items, 1)
	assert.Equal(t, "DS2.1", crit.Items[0].Code)
	assert.Equal(t, "Bygninger", crit.Items[0].Title)
	assert.Equal(t, "01", crit.Items[0].Items[0].Code)
}

func TestAssemble_TaskGroupWithoutCriterion(t *testing.T) {
	res := assembleText(t, "MA3.1 Sundt Byggeri\n01 Emissioner\nBeskrivelse\nLav.")
	require.Len(t, res.Themes, 1)
	assert.Equal(t, "MA", res.Themes[0].Code)
	crit := res.Themes[0].Items[0]
	assert.Equal(t, "MA3", crit.Code)
	assert.Equal(t, "Sundt Byggeri", crit.Title)
	assert.Equal(t, "MA3.1", crit.Items[0].Code)
}

func TestAssemble_TextOutsideTasks(t *testing.T) {
	res := assembleText(t, "Forord til manualen\nmed to linjer\n\nDET SOCIALE\nIntro til temaet.\nDS1 Livet Mellem Naboer\nOm kriteriet.")
	assert.Equal(t, 2, res.Unplaced)
	assert.Equal(t, "Intro til temaet.", res.Themes[0].Text)
	assert.Equal(t, "Om kriteriet.", res.Themes[0].Items[0].Text)
}

func TestAssemble_TaskWithoutCriterionIsText(t *testing.T) {
	res := assembleText(t, "DET SOCIALE\n\n01 Løs opgave")
	require.Len(t, res.Themes, 1)
	assert.Empty(t, res.Themes[0].Items)
	assert.Equal(t, "01 Løs opgave", res.Themes[0].Text)
}

func TestAssemble_TaskWithoutContentIsReported(t *testing.T) {
	res := assembleText(t, "DS1.1 Livet Mellem Naboer\n01 Det naturlige møde\n\n02 Fælles rum\nBeskrivelse\nTekst.")
	tasks := res.Themes[0].Items[0].Items[0].Items
	require.Len(t, tasks, 2)
	assert.Empty(t, tasks[0].Items)
	assert.NotNil(t, tasks[0].Documentation)

	var paths []string
	for _, is := range res.Issues {
		paths = append(paths, is.String())
	}
	assert.Equal(t, []string{`DS/DS1/DS1.1/01: task "Det naturlige møde" has no task-item`}, paths)
}

func TestAssemble_EmptyLabelKeepsItem(t *testing.T) {
	res := assembleText(t, "DS1.1 Livet\n01 Møde\nBeskrivelse\n\n02 Rum\nBeskrivelse\nTekst.")
	tasks := res.Themes[0].Items[0].Items[0].Items
	require.Len(t, tasks[0].Items, 1)
	assert.Equal(t, "<strong>Beskrivelse</strong>", tasks[0].Items[0].Text)
}

func TestAssemble_FoliosCounted(t *testing.T) {
	res := assembleText(t, "DET SOCIALE\n\n4", "5\nDS1 Livet Mellem Naboer")
	assert.Equal(t, 2, res.Folios)
}

func TestAssemble_Deterministic(t *testing.T) {
	page := "DET SOCIALE\nDS1 Livet Mellem Naboer\nDS1.1 Livet Mellem Naboer\n01 Det naturlige møde\nBeskrivelse\nTekst & mere."
	a, err := json.MarshalIndent(assembleText(t, page).Themes, "", "  ")
	require.NoError(t, err)
	b, err := json.MarshalIndent(assembleText(t, page).Themes, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestValidate(t *testing.T) {
	theme := schema.NewNode(schema.TypeTheme, "DS", "Det Sociale")
	crit := schema.NewNode(schema.TypeCriterion, "DS1", "Livet")
	task := schema.NewNode(schema.TypeTask, "01", "Forkert niveau")
	item := NewTaskItem("01", "")
	item.Definition.Options = item.Definition.Options[:2]
	task.Items = append(task.Items, item)
	crit.Items = append(crit.Items, task)
	theme.Items = append(theme.Items, crit)

	var msgs []string
	for _, is := range Validate([]*schema.Node{theme}) {
		msgs = append(msgs, is.String())
	}
	assert.Equal(t, []string{
		"DS/DS1: task under criterion",
		"DS/DS1/01/01.1: task item has no text",
		"DS/DS1/01/01.1: task item definition must have three options",
	}, msgs)
}

func TestDefaultDefinition(t *testing.T) {
	def := DefaultDefinition()
	assert.Equal(t, "select-single", def.Type)
	require.Len(t, def.Options, 3)
	for i, o := range def.Options {
		assert.Equal(t, i+1, o.Value)
	}
	assert.Equal(t, "option.2", def.Options[2].ID)
}

func TestValidate_EmptyManual(t *testing.T) {
	issues := Validate(nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "/: manual has no themes", issues[0].String())
}
