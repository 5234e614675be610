package cli

import (
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// shellGenerators writes a completion script for each supported shell.
var shellGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func shells() []string {
	names := make([]string, 0, len(shellGenerators))
	for name := range shellGenerators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [" + strings.Join(shells(), "|") + "]",
		Short: "Print a shell completion script",
		Long: `Print a completion script covering commands, flags, output formats,
renderers and org files.

  source <(orgchart completion bash)
  orgchart completion zsh > "${fpath[1]}/_orgchart"
  orgchart completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// orgFileExtensions are the files offered for a chart argument.
var orgFileExtensions = []string{"yaml", "yml", "json"}

// completeOrgFile completes the optional org file argument.
func completeOrgFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return orgFileExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the comma-separated --format list, keeping
// what has been typed so far as a prefix.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, seen := "", map[string]bool{}
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		for _, f := range parseFormats(toComplete[:i]) {
			seen[f] = true
		}
	}
	var out []string
	for _, f := range sortedKeys(pipeline.ValidFormats) {
		if !seen[f] {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
}

func completeVizTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return sortedKeys(pipeline.ValidVizTypes), cobra.ShellCompDirectiveNoFileComp
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
