package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rockyard/rockyard/pkg/rockyard/deploy"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
)

var ownerCmd = &cobra.Command{
	Use:   "owner <file>",
	Short: "Show which package owns a deployed file",
	Long: `Look up the package that owns a file deployed under the configured
module, library or command directories. With --next, also show the
package that would take over if the current owner were removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runOwner,
}

func init() {
	ownerCmd.Flags().Bool("next", false, "also show the next provider in line")
	rootCmd.AddCommand(ownerCmd)
}

func runOwner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	roots := deploy.Roots{
		LuaDir: cfg.Deploy.LuaDir,
		LibDir: cfg.Deploy.LibDir,
		BinDir: cfg.Deploy.BinDir,
	}
	if !underAnyRoot(roots, path) {
		return fmt.Errorf("%s is not under any deployment directory", path)
	}

	tc, err := cfg.DefaultTree()
	if err != nil {
		return err
	}
	tree := repo.Tree{Root: tc.Root, Priority: tc.Priority}
	locator := deploy.NewLocator(roots, tree.ManifestPath())

	current, err := locator.FindCurrentProvider(path)
	if err != nil {
		if errors.Is(err, deploy.ErrUntracked) {
			printError("%s is not tracked by any installed package", path)
			return err
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", current)

	if showNext, _ := cmd.Flags().GetBool("next"); showNext {
		next, ok, err := locator.FindNextProvider(path)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "next: %s\n", next)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "next: none")
		}
	}
	return nil
}

// underAnyRoot reports whether path lies beneath one of the deployment
// roots. Lookups on unrelated paths are user errors, not data errors.
func underAnyRoot(roots deploy.Roots, path string) bool {
	for _, root := range []string{roots.LuaDir, roots.LibDir, roots.BinDir} {
		if root == "" {
			continue
		}
		prefix := filepath.Clean(root) + string(filepath.Separator)
		if strings.HasPrefix(filepath.Clean(path), prefix) {
			return true
		}
	}
	return false
}
