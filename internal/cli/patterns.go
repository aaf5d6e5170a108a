package cli

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect the bot pattern table",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bot families in matching order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}

		data := pterm.TableData{{"#", "Label", "Category", "Patterns"}}
		for i, f := range a.classifier.Patterns() {
			data = append(data, []string{strconv.Itoa(i + 1), f.Label, f.Category, strings.Join(f.Patterns, ", ")})
		}
		renderTable(data)
		return nil
	},
}

var patternsTestCmd = &cobra.Command{
	Use:   "test <user agent> [more user agents...]",
	Short: "Show which bot family each user agent is attributed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}

		data := pterm.TableData{{"User agent", "Bot", "Matched pattern"}}
		for _, ua := range args {
			info, ok := a.classifier.IdentifyWithInfo(ua)
			if !ok {
				data = append(data, []string{ua, pterm.Gray("human"), ""})
				continue
			}
			data = append(data, []string{ua, info.Name, info.MatchedPattern})
		}
		renderTable(data)
		return nil
	},
}

func init() {
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsTestCmd)
}
