package cli

import (
	"bytes"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

const (
	greenColor = "#13aa52"
)

// additionalSections contains additional help sections for specific commands.
var additionalSections = map[string][]ffhelp.Section{
	"up": {
		{
			Title: "EXAMPLES",
			Lines: []string{
				`mongotest up --image=mongo:7.0`,
				`mongotest up --username=root --password=pass --count=2`,
				`MONGOTEST_IMAGE=mongo:6.0 mongotest up`,
			},
			LinePrefix: ffhelp.DefaultLinePrefix,
		},
	},
}

func createHelp(cmd *ff.Command) ffhelp.Help {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(greenColor))
	render := func(s string) string {
		if val := os.Getenv(ENV_NO_COLOR); val != "" {
			if ok, err := strconv.ParseBool(val); err == nil && ok {
				return s
			}
		}
		return style.Render(s)
	}
	if selected := cmd.GetSelected(); selected != nil {
		cmd = selected
	}
	// For the root command, we're going to print a custom help message.
	if cmd.Name == "mongotest" {
		return rootHelp(cmd, render)
	}
	var help ffhelp.Help

	if cmd.LongHelp != "" {
		section := ffhelp.NewUntitledSection(cmd.LongHelp)
		help = append(help, section)
	}

	title := cmd.Name
	if cmd.ShortHelp != "" {
		title = title + " -- " + cmd.ShortHelp
	}
	help = append(help, ffhelp.NewSection(render("COMMAND"), title))

	if cmd.Usage != "" {
		help = append(help, ffhelp.NewSection(render("USAGE"), cmd.Usage))
	}

	for _, section := range ffhelp.NewFlagsSections(cmd.Flags) {
		section.Title = render(section.Title)
		help = append(help, section)
	}
	if sections, ok := additionalSections[cmd.Name]; ok {
		for _, section := range sections {
			section.Title = render(section.Title)
			help = append(help, section)
		}
	}

	return help
}

func rootHelp(cmd *ff.Command, render func(s string) string) ffhelp.Help {
	var help ffhelp.Help

	section := ffhelp.NewUntitledSection("Throwaway single-node MongoDB replica sets in Docker, for integration tests.")
	help = append(help, section)

	section = ffhelp.NewSection(render("USAGE"), cmd.Usage)
	help = append(help, section)

	section = ffhelp.NewSubcommandsSection(cmd.Subcommands)
	section.Title = render("COMMANDS")
	help = append(help, section)

	for _, section := range ffhelp.NewFlagsSections(cmd.Flags) {
		section.Title = render(section.Title)
		help = append(help, section)
	}

	section = ffhelp.NewUntitledSection(render("ENVIRONMENT VARIABLES"))
	keys := []struct {
		name        string
		description string
	}{
		{"MONGOTEST_IMAGE", "MongoDB image, lower priority than --image"},
		{"MONGOTEST_USERNAME", "Root username, lower priority than --username"},
		{"MONGOTEST_PASSWORD", "Root password, lower priority than --password"},
		{ENV_ENV_FILE, "Dotenv file with MONGOTEST_* variables (default .env)"},
		{ENV_NO_COLOR, "Disable color output"},
	}
	buf := bytes.NewBuffer(nil)
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	for _, v := range keys {
		_, _ = tw.Write([]byte(ffhelp.DefaultLinePrefix + v.name + "\t" + v.description + "\n"))
	}
	tw.Flush()
	section.Lines = append(section.Lines, buf.String())
	help = append(help, section)

	section = ffhelp.NewUntitledSection(render("LEARN MORE"))
	section.Lines = append(section.Lines, ffhelp.DefaultLinePrefix+"Use 'mongotest <command> --help' for more information about a command")
	help = append(help, section)

	return help
}
