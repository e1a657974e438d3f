package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ravebox/discover/internal/category"
	"ravebox/discover/internal/client"
	"ravebox/discover/internal/discover"
	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/format"
	"ravebox/discover/internal/rating"
	"ravebox/discover/internal/retrieval"
	"ravebox/discover/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:       "rate <review-id> <up|down|none>",
	Short:     "Rate a review and print the updated counts",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"up", "down", "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		vote, err := parseRating(args[1])
		if err != nil {
			return err
		}

		api, err := client.NewRaveboxClient(cfg.API)
		if err != nil {
			return err
		}

		rater := rating.New(api, args[0])
		defer rater.Close()

		if !rater.Load(cmd.Context()) {
			return fmt.Errorf("could not load rating for review %s: %s", args[0], rater.Status())
		}
		printResults(cmd, "before", rater.Results())

		token, err := rater.Token(cmd.Context())
		if err != nil {
			return err
		}
		if err := rater.Rate(cmd.Context(), vote, token); err != nil {
			return err
		}
		printResults(cmd, "after", rater.Results())
		return nil
	},
}

var listsCmd = &cobra.Command{
	Use:   "lists <category>",
	Short: "Print the product review lists of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := category.Default()
		if err != nil {
			return err
		}

		// A top-level category expands to its sub-categories, any other
		// known key is queried on its own
		found, ok := category.GetCategory(args[0], categories)
		queries := category.SubCategoryQueries(found)
		if !ok {
			found, ok = category.Find(args[0], categories)
			if !ok {
				return fmt.Errorf("unknown category %q, expected one of: %s",
					args[0], strings.Join(category.TopLevelCategories(categories), ", "))
			}
			queries = []string{found.Key}
		}

		api, err := client.NewRaveboxClient(cfg.API)
		if err != nil {
			return err
		}

		lists := retrieval.NewListsByQuery(api, nil)
		defer lists.Close()

		lists.Retrieve(cmd.Context(), queries)
		result := lists.Wait(cmd.Context())
		switch result.Status {
		case retrieval.Success:
		case retrieval.NotFound:
			fmt.Fprintf(cmd.OutOrStdout(), "No reviews found for %s\n", found.Label)
			return nil
		default:
			return fmt.Errorf("failed to load lists for %s: %w", found.Key, result.Err)
		}

		for _, list := range result.Value {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %10s reviews  %s\n",
				list.Title, format.CommaSeparatedNumber(float64(len(list.Reviews))), list.URL)
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <review-id>",
	Short: "Print a review and the other raves of its product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := client.NewRaveboxClient(cfg.API)
		if err != nil {
			return err
		}
		return runReview(cmd.Context(), api, store.New(), cmd.OutOrStdout(), args[0])
	},
}

var followingCmd = &cobra.Command{
	Use:   "following <user-id>",
	Short: "Print who the signed-in user follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := client.NewRaveboxClient(cfg.API)
		if err != nil {
			return err
		}
		return runFollowing(cmd.Context(), api, store.New(), cmd.OutOrStdout(), args[0])
	},
}

// reviewAPI is what the review command needs from the client
type reviewAPI interface {
	retrieval.ReviewAPI
	retrieval.ListAPI
}

// runReview loads a review as the playing video, then lists the other raves
// of the same product found in the product's categories
func runReview(ctx context.Context, api reviewAPI, st *store.Store, out io.Writer, id string) error {
	r := retrieval.NewReviewByID(api, st)
	defer r.Close()

	r.Retrieve(ctx, id)
	result := r.Wait(ctx)
	if result.Status != retrieval.Success {
		return fmt.Errorf("review %s: %s: %v", id, result.Status, result.Err)
	}

	review := result.Value
	st.Dispatch(store.SetActiveVideo{Review: review})
	fmt.Fprintf(out, "%s\n  by @%s on %s %s\n  %s\n",
		review.Title, review.User.Handle, review.Product.Brand, review.Product.Name, review.URL)

	if len(review.Product.Categories) == 0 {
		return nil
	}
	queries := make([]string, 0, len(review.Product.Categories))
	for _, c := range review.Product.Categories {
		queries = append(queries, c.Key)
	}

	lists := retrieval.NewListsByQuery(api, st)
	defer lists.Close()

	lists.Retrieve(ctx, queries)
	more := lists.Wait(ctx)
	switch more.Status {
	case retrieval.Success:
	case retrieval.NotFound:
		return nil
	default:
		log.Warnf("⚠️ Failed to load more raves for review %s: %v", id, more.Err)
		return nil
	}

	seen := map[string]bool{}
	var others []domain.Review
	for _, list := range more.Value {
		for _, other := range discover.ExcludeReview(list.Reviews, review.ID) {
			if other.Product.ID != review.Product.ID || seen[other.ID] {
				continue
			}
			seen[other.ID] = true
			others = append(others, other)
		}
	}
	if len(others) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nmore raves of %s %s\n", review.Product.Brand, review.Product.Name)
	for _, other := range others {
		fmt.Fprintf(out, "  %s by @%s  %s\n", other.Title, other.User.Handle, other.URL)
	}
	return nil
}

// runFollowing prints the followed users; userID only keys the retrieval,
// the request is scoped by the session cookie
func runFollowing(ctx context.Context, api retrieval.FollowingAPI, st *store.Store, out io.Writer, userID string) error {
	r := retrieval.NewFollowing(api, st)
	defer r.Close()

	r.Retrieve(ctx, userID)
	result := r.Wait(ctx)
	switch result.Status {
	case retrieval.Success:
	case retrieval.NotFound:
		fmt.Fprintln(out, "Not following anyone")
		return nil
	default:
		return fmt.Errorf("following: %s: %v", result.Status, result.Err)
	}

	for _, user := range result.Value {
		fmt.Fprintf(out, "@%s\n", user.Handle)
	}
	return nil
}

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Print public statistics of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := client.NewRaveboxClient(cfg.API)
		if err != nil {
			return err
		}

		r := retrieval.NewPublicProfileStatistics(api, nil)
		defer r.Close()

		r.Retrieve(cmd.Context(), args[0])
		result := r.Wait(cmd.Context())
		if result.Status != retrieval.Success {
			return fmt.Errorf("profile %s: %s: %v", args[0], result.Status, result.Err)
		}

		s := result.Value
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "followers %s\n", format.NumericSuffix(float64(s.Followers), 1))
		fmt.Fprintf(out, "following %s\n", format.NumericSuffix(float64(s.Following), 1))
		fmt.Fprintf(out, "reviews   %s\n", format.NumericSuffix(float64(s.Reviews), 1))
		fmt.Fprintf(out, "ratings   %s\n", format.NumericSuffix(float64(s.Ratings), 1))
		return nil
	},
}

func parseRating(s string) (domain.Rating, error) {
	switch strings.ToLower(s) {
	case "up":
		return domain.RatingUp, nil
	case "down":
		return domain.RatingDown, nil
	case "none":
		return domain.RatingNone, nil
	}
	return domain.RatingNone, fmt.Errorf("invalid rating %q", s)
}

func printResults(cmd *cobra.Command, label string, r rating.Results) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-6s up %s  down %s  yours %s\n", label, r.Up, r.Down, r.UserRating)
}
