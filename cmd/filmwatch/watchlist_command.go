package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"filmwatch/internal/language"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist <user-id>",
		Short: "Show a user's watch list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			st, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			user, err := st.GetUser(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("load user: %w", err)
			}

			movies, err := st.ListObserved(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("list watched movies: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User %d (%s)\n", user.ID, language.DisplayName(user.Language))
			if len(movies) == 0 {
				fmt.Fprintln(out, "Watch list is empty")
				return nil
			}

			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				status := "pending"
				if movie.Released {
					status = "released"
				}
				rows = append(rows, []string{
					movie.ID,
					movie.Title,
					strconv.Itoa(movie.Year),
					status,
				})
			}

			headers := []string{"ID", "Title", "Year", "Status"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
}
