package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/rulebind/internal/binding"
)

func namesCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "names <validator-id> [rule-id...]",
		Short: "Print the artifact and member names derived from identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printNames(cmd.OutOrStdout(), namespace, args[0], args[1:])
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", binding.DefaultNamespace, "Namespace prefix for qualified names")
	return cmd
}

func printNames(w io.Writer, namespace, validatorID string, ruleIDs []string) {
	fmt.Fprintln(w, headingStyle.Render(validatorID))
	for _, kind := range binding.Kinds {
		className := binding.ClassName(validatorID, kind)
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-15s", kind.String())), binding.QualifiedName(namespace, className))
	}
	for _, ruleID := range ruleIDs {
		line := fmt.Sprintf("  %s -> %s", ruleID, binding.MemberName(ruleID))
		if !binding.IsPortableRuleID(ruleID) {
			line += " " + warnStyle.Render("(non-portable rule id: member name may not be generated)")
		}
		fmt.Fprintln(w, line)
	}
}
