package main

import (
	"regexp"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/ui"
)

// reFlagDefault matches the "(default ...)" suffix pflag appends to usages.
var reFlagDefault = regexp.MustCompile(`\(default [^)]*\)`)

// usageTemplate is Cobra's default usage template with group titles,
// command names and flag defaults routed through the ui palette.
const usageTemplate = `{{accent "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{accent "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{accent "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{accent .Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{command (rpad .Name .NamePadding)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

{{accent "Additional Commands:"}}{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{command (rpad .Name .NamePadding)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{accent "Flags:"}}
{{flags (.LocalFlags.FlagUsages | trimTrailingWhitespaces)}}{{end}}{{if .HasAvailableInheritedFlags}}

{{accent "Global Flags:"}}
{{flags (.InheritedFlags.FlagUsages | trimTrailingWhitespaces)}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func init() {
	cobra.AddTemplateFunc("accent", ui.RenderAccent)
	cobra.AddTemplateFunc("command", ui.RenderCommand)
	cobra.AddTemplateFunc("flags", mutedDefaults)
}

// mutedDefaults dims every flag default in a FlagUsages block.
func mutedDefaults(usages string) string {
	return reFlagDefault.ReplaceAllStringFunc(usages, ui.RenderMuted)
}
