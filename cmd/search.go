package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/present"
	"github.com/sells-group/safety-index/internal/session"
)

var searchFlags struct {
	term         string
	industries   []string
	state        string
	zip          string
	employeesMin string
	employeesMax string
	safetyMin    string
	safetyMax    string
	allYears     bool
	sortBy       string
	page         int
	pageSize     int
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search companies by name, industry, location, size and safety score",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		searcher, lookup, closeFn, err := openSearcher(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		pageSize := searchFlags.pageSize
		if pageSize <= 0 {
			pageSize = cfg.Search.PageSize
		}
		ctrl := session.New(ctx, searcher, lookup, session.Options{
			TextDebounce:  cfg.Search.TextDebounce(),
			NAICSDebounce: cfg.Search.NAICSDebounce(),
			PageSize:      pageSize,
		})
		defer ctrl.Close()

		printResult(os.Stdout, ctrl.Apply(ctx, applySearchFlags))
		return nil
	},
}

// openSearcher returns the API client when --api is configured, otherwise
// the in-process service over the store.
func openSearcher(ctx context.Context) (session.Searcher, naics.Lookup, func(), error) {
	c, ok, err := apiClient()
	if err != nil {
		return nil, nil, nil, err
	}
	if ok {
		return c, c.Taxonomy(), func() {}, nil
	}
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	svc := newService(guard(st))
	return svc, svc.Taxonomy(), func() { _ = st.Close() }, nil
}

func applySearchFlags(ctrl *session.Controller) {
	f := searchFlags
	ctrl.SetTerm(f.term)
	for _, code := range f.industries {
		ctrl.AddIndustry(code)
	}
	ctrl.SetStateCode(f.state)
	ctrl.SetZip(f.zip)
	ctrl.SetEmployeesMin(f.employeesMin)
	ctrl.SetEmployeesMax(f.employeesMax)
	ctrl.SetSafetyMin(f.safetyMin)
	ctrl.SetSafetyMax(f.safetyMax)
	ctrl.SetMostRecentYear(!f.allYears)
	if f.sortBy != "" {
		ctrl.SetSortBy(f.sortBy)
	}
	if f.page > 1 {
		ctrl.GoToPage(f.page - 1)
	}
}

func printResult(w io.Writer, res session.Result) {
	switch {
	case res.Empty:
		fmt.Fprintln(w, "Enter a company name or choose a filter to search.")
		return
	case res.Err != nil:
		fmt.Fprintln(w, res.Message)
		return
	case res.Page == nil || len(res.Page.Items) == 0:
		fmt.Fprintln(w, "No companies match these filters.")
		return
	}

	fmt.Fprintf(w, "%s companies\n\n", present.Int(&res.Page.TotalCount))
	for _, r := range res.Page.Items {
		card := present.CompanyCard(r)
		fmt.Fprintf(w, "%s  (EIN %s)\n", card.Name, card.EIN)
		fmt.Fprintf(w, "  %s | %s\n", card.Industry, card.Location)
		fmt.Fprintf(w, "  employees %s  establishments %s  TRIR %s  DART %s  score %s [%s]\n\n",
			card.Employees, card.Establishments, card.TRIR, card.DARTRate, card.SafetyScore, card.Badge)
	}
	if pager := present.Pager(res.Buttons); pager != "" {
		fmt.Fprintln(w, "pages: "+pager)
	}
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func init() {
	fl := searchCmd.Flags()
	fl.StringVarP(&searchFlags.term, "term", "t", "", "company name words (all must match)")
	fl.StringSliceVar(&searchFlags.industries, "industry", nil, "NAICS code prefix; repeatable")
	fl.StringVar(&searchFlags.state, "state", "", "two-letter state code")
	fl.StringVar(&searchFlags.zip, "zip", "", "zip code")
	fl.StringVar(&searchFlags.employeesMin, "employees-min", "", "minimum total employees")
	fl.StringVar(&searchFlags.employeesMax, "employees-max", "", "maximum total employees")
	fl.StringVar(&searchFlags.safetyMin, "safety-min", "", "minimum safety score")
	fl.StringVar(&searchFlags.safetyMax, "safety-max", "", "maximum safety score")
	fl.BoolVar(&searchFlags.allYears, "all-years", false, "include filings outside the recent-year window")
	fl.StringVar(&searchFlags.sortBy, "sort", "", "relevance or <column>.<asc|desc>")
	fl.IntVar(&searchFlags.page, "page", 1, "one-based page number")
	fl.IntVar(&searchFlags.pageSize, "page-size", 0, "results per page (default from config)")
}
