package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kingrea/rulebind/internal/binding"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func depsCmd(flags *globalFlags) *cobra.Command {
	var showMetrics bool
	cmd := &cobra.Command{
		Use:   "deps <validator-id> <rule-id...>",
		Short: "Resolve the property, context and lookup dependencies of rules",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg *prometheus.Registry
			var registerer prometheus.Registerer
			if showMetrics {
				reg = prometheus.NewRegistry()
				registerer = reg
			}
			s, err := openSession(flags, registerer)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			validatorID := args[0]
			for _, ruleID := range args[1:] {
				printRuleDependencies(out, s.ws.Resolver.RuleDependencies(validatorID, ruleID))
			}
			if reg != nil {
				return printMetrics(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print resolution counters after the lookup")
	return cmd
}

func printRuleDependencies(w io.Writer, deps binding.RuleDependencies) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s / %s", deps.ValidatorID, deps.RuleID)))
	for _, kind := range binding.MetadataKinds {
		label := labelStyle.Render(fmt.Sprintf("  %-11s", kind.String()))
		set, ok := deps.Set(kind)
		switch {
		case !ok:
			fmt.Fprintf(w, "%s %s\n", label, absentStyle.Render("absent"))
		case set.Len() == 0:
			fmt.Fprintf(w, "%s %s\n", label, absentStyle.Render("(none)"))
		default:
			fmt.Fprintf(w, "%s %s\n", label, strings.Join(set.Sorted(), ", "))
		}
	}
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(w, headingStyle.Render("metrics"))
	for _, mf := range families {
		var lines []string
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, pair := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("  %s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}
