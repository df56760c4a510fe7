package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/mdnote/internal/ui/pretty"
)

// HelpFormatter renders styled help and usage output for Cobra commands.
type HelpFormatter struct {
	styles *pretty.Styles
}

// NewHelpFormatter creates a help formatter for the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: pretty.NewStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const usageTemplate = `{{ section "Usage:" }}{{if .Runnable}}
  {{ command .UseLine }}{{end}}{{if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ section "Examples:" }}
{{ dim .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ section "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ command (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ section "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ section "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"section":   h.styles.Section.Render,
		"command":   h.styles.Command.Render,
		"dim":       h.styles.Dim.Render,
		"flags":     h.formatFlags,
		"rpad":      rpad,
		"trimRight": trimTrailingWhitespaces,
	}
}

// formatFlags styles the flag names of a pflag usage block and leaves the
// descriptions plain.
func (h *HelpFormatter) formatFlags(flags *pflag.FlagSet) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		names, desc, found := strings.Cut(trimmed, "   ")
		if !found {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		lines[i] = indent + h.styles.Flag.Render(names) + "   " + desc
	}
	return strings.Join(lines, "\n")
}

// ApplyToCommand installs the styled templates on cmd. Subcommands inherit
// them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.funcs()

	usage := template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	help := template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate))

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		if err := usage.Execute(command.OutOrStderr(), command); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := help.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
