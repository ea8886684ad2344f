package cmd

import (
	"DebtGraph/backend/go/internal/debtgraph"
	"context"

	"github.com/spf13/cobra"
)

var (
	asParent bool
	details  []string
)

var parentsCmd = &cobra.Command{
	Use:   "parents [child...]",
	Short: "List the parents of the given children",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return s.catalog.ParentsOf(ctx, args, page)
		})
	},
}

var childrenCmd = &cobra.Command{
	Use:   "children [parent...]",
	Short: "List the children of the given parents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return s.catalog.ChildrenOf(ctx, args, page)
		})
	},
}

var debtCmd = &cobra.Command{
	Use:   "debt [name]",
	Short: "List what a child (or every child of a parent) owes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return debtQuery(s.catalog, asParent, details)(ctx, args[0], page)
		})
	},
}

var receivablesCmd = &cobra.Command{
	Use:   "receivables [name]",
	Short: "List what is owed to a child (or to every child of a parent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return receivablesQuery(s.catalog, asParent, details)(ctx, args[0], page)
		})
	},
}

var pairDebtCmd = &cobra.Command{
	Use:   "pair-debt [debtor] [creditor]",
	Short: "List the debt edges from debtor to creditor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error) {
			return pairQuery(s.catalog, asParent, details)(ctx, args[0], args[1], page)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{debtCmd, receivablesCmd, pairDebtCmd} {
		c.Flags().BoolVar(&asParent, "parent", false, "treat names as parents (Level1) instead of children")
		c.Flags().StringSliceVar(&details, "detail", nil, "only debt edges with these categories")
	}
	rootCmd.AddCommand(parentsCmd, childrenCmd, debtCmd, receivablesCmd, pairDebtCmd)
}

type anchoredQuery func(ctx context.Context, name string, page debtgraph.Page) (*debtgraph.Result, error)

type pairedQuery func(ctx context.Context, debtor, creditor string, page debtgraph.Page) (*debtgraph.Result, error)

// debtQuery picks the catalog method for the anchor kind and filter.
func debtQuery(c *debtgraph.Catalog, parent bool, details []string) anchoredQuery {
	switch {
	case parent && len(details) > 0:
		return withDetails(c.ParentDebtByDetails, details)
	case parent:
		return c.ParentDebt
	case len(details) > 0:
		return withDetails(c.ChildDebtByDetails, details)
	default:
		return c.ChildDebt
	}
}

func receivablesQuery(c *debtgraph.Catalog, parent bool, details []string) anchoredQuery {
	switch {
	case parent && len(details) > 0:
		return withDetails(c.ParentReceivablesByDetails, details)
	case parent:
		return c.ParentReceivables
	case len(details) > 0:
		return withDetails(c.ChildReceivablesByDetails, details)
	default:
		return c.ChildReceivables
	}
}

func pairQuery(c *debtgraph.Catalog, parent bool, details []string) pairedQuery {
	byDetails := c.ChildToChildDebtByDetails
	plain := c.ChildToChildDebt
	if parent {
		byDetails = c.ParentToParentDebtByDetails
		plain = c.ParentToParentDebt
	}
	if len(details) == 0 {
		return plain
	}
	return func(ctx context.Context, debtor, creditor string, page debtgraph.Page) (*debtgraph.Result, error) {
		return byDetails(ctx, debtor, creditor, details, page)
	}
}

func withDetails(
	q func(ctx context.Context, name string, details []string, page debtgraph.Page) (*debtgraph.Result, error),
	details []string,
) anchoredQuery {
	return func(ctx context.Context, name string, page debtgraph.Page) (*debtgraph.Result, error) {
		return q(ctx, name, details, page)
	}
}
