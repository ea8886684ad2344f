package cmd

import (
	"DebtGraph/backend/go/internal/debtgraph"
	"context"

	"github.com/spf13/cobra"
)

var (
	jump       int
	via        string
	ringParent bool
)

var ringCmd = &cobra.Command{
	Use:   "ring [name]",
	Short: "Find debt rings of exactly --jump edges",
	Long: `Find simple debt cycles of exactly --jump edges that start and end at the
named child. With --parent the name is a parent and rings through any of its
children are returned. --via restricts the rings to those that also pass
through another child (or, with --parent, a child of another parent).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return ringQuery(s.rings, ringParent, via)(ctx, args[0], jump, page)
		})
	},
}

func init() {
	ringCmd.Flags().IntVar(&jump, "jump", debtgraph.MinJump, "ring length in debt edges")
	ringCmd.Flags().StringVar(&via, "via", "", "second child (or parent with --parent) the ring must pass through")
	ringCmd.Flags().BoolVar(&ringParent, "parent", false, "treat names as parents (Level1) instead of children")
	rootCmd.AddCommand(ringCmd)
}

type ringFunc func(ctx context.Context, name string, jump int, page debtgraph.Page) (*debtgraph.Result, error)

func ringQuery(f *debtgraph.RingFinder, parent bool, via string) ringFunc {
	switch {
	case parent && via != "":
		return func(ctx context.Context, name string, jump int, page debtgraph.Page) (*debtgraph.Result, error) {
			return f.ParentWithParentRing(ctx, name, via, jump, page)
		}
	case parent:
		return f.ParentRing
	case via != "":
		return func(ctx context.Context, name string, jump int, page debtgraph.Page) (*debtgraph.Result, error) {
			return f.ChildWithChildRing(ctx, name, via, jump, page)
		}
	default:
		return f.ChildRing
	}
}
