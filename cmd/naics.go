package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/safety-index/internal/client"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
)

var (
	naicsParent string
	naicsQuery  string
)

var naicsCmd = &cobra.Command{
	Use:   "naics",
	Short: "Browse or search the NAICS industry taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		lookup, closeFn, err := openLookup(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		var nodes []model.NaicsNode
		if len([]rune(strings.TrimSpace(naicsQuery))) >= naics.MinSearchTerm {
			nodes, err = lookup.Search(ctx, naicsQuery)
		} else {
			nodes, err = lookup.Children(ctx, naicsParent)
		}
		if err != nil {
			return err
		}
		printNodes(os.Stdout, nodes)
		return nil
	},
}

// openLookup returns the taxonomy served by --api when set, otherwise the
// configured store.
func openLookup(ctx context.Context) (naics.Lookup, func(), error) {
	c, ok, err := apiClient()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return c.Taxonomy(), func() {}, nil
	}
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return newService(guard(st)).Taxonomy(), func() { _ = st.Close() }, nil
}

// apiClient builds a client when an API base URL is configured.
func apiClient() (*client.Client, bool, error) {
	if cfg.Client.BaseURL == "" {
		return nil, false, nil
	}
	if err := cfg.Validate("client"); err != nil {
		return nil, false, err
	}
	c, err := client.New(cfg.Client.BaseURL,
		client.WithRateLimit(cfg.Client.RatePerSec),
		client.WithRetry(cfg.Resilience.Policy()),
		client.WithTimeout(secs(cfg.Client.TimeoutSecs)),
	)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func printNodes(w io.Writer, nodes []model.NaicsNode) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "no industries found")
		return
	}
	for _, n := range nodes {
		fmt.Fprintf(w, "%-8s %s\n", n.Code, n.Description)
	}
}

func init() {
	naicsCmd.Flags().StringVar(&naicsParent, "parent", "", "list the children of this code (default: sectors)")
	naicsCmd.Flags().StringVarP(&naicsQuery, "query", "q", "", "search codes and descriptions (2+ characters)")
}
