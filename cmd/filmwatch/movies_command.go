package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List tracked movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			movies, err := st.ListMovies(cmd.Context())
			if err != nil {
				return fmt.Errorf("list movies: %w", err)
			}

			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				if pendingOnly && movie.Released {
					continue
				}
				status := "pending"
				if movie.Released {
					status = "released"
				}
				rows = append(rows, []string{
					movie.ID,
					movie.Title,
					strconv.Itoa(movie.Year),
					status,
					strings.Join(movie.UnreleasedLanguages, ", "),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No movies tracked")
				return nil
			}

			headers := []string{"ID", "Title", "Year", "Status", "Pending Languages"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only movies awaiting release")
	return cmd
}
