package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/database"
	"github.com/sociograph/sociograph/internal/evaluate"
	"github.com/sociograph/sociograph/internal/logging"
	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/sociograph/sociograph/internal/profiler"
	"github.com/sociograph/sociograph/internal/twitter"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "sociograph",
		Short:        "Sociograph - social account posting-history profiler",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		profileCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile <handle>",
		Short: "Analyze an account's posting history",
		Long: `Resolve the account's activities (cached when fresh enough,
fetched otherwise) and print the four analyses: dominant topics,
time-clustered topics, the weekly activity histogram, and the
most-retweeted sources.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, _ := cmd.Flags().GetString("report")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			return runProfile(cmd.Context(), args[0], report, metricsAddr)
		},
	}

	cmd.Flags().String("report", "all", "report to print (all, topics, clusters, activity, retweets)")
	cmd.Flags().String("metrics-addr", "", "expose Prometheus metrics on this address during the run")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sociograph %s\n", version)
		},
	}
}

func runProfile(ctx context.Context, handle, report, metricsAddr string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logs go to stderr; stdout carries the reports.
	logger, err := logging.NewWithWriter(os.Stderr, cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store := database.NewPostgresActivityRepository(db)
	connector := twitter.NewConnector(cfg.Twitter, logger)
	prof := profiler.New(store, connector, cfg.Cache, logger, collector)

	activities, err := prof.QueryCached(ctx, handle)
	if err != nil {
		return err
	}
	if len(activities) == 0 {
		fmt.Println("no activities available for", handle)
		return nil
	}

	clusterer := evaluate.NewTemporalClusterer(cfg.Cluster, logger, collector)
	topics := evaluate.NewTopicExtractor(cfg.Topics, logger, collector)
	timeTopics := evaluate.NewTimeClusteredTopics(clusterer, topics, logger, collector)
	histogram := evaluate.NewActivityHistogram(logger, collector)
	retweets := evaluate.NewRetweetRanking(logger, collector)

	if report == "all" || report == "topics" {
		printTopics(topics.Evaluate(activities))
	}
	if report == "all" || report == "clusters" {
		printClusteredTopics(timeTopics.Evaluate(activities))
	}
	if report == "all" || report == "activity" {
		// Retweets reflect the sources' schedules, not the account's.
		if err := printHistogram(histogram, withoutRetweets(activities)); err != nil {
			return err
		}
	}
	if report == "all" || report == "retweets" {
		printRetweets(retweets.Evaluate(activities))
	}

	return nil
}

func withoutRetweets(activities []models.Activity) []models.Activity {
	kept := make([]models.Activity, 0, len(activities))
	for _, activity := range activities {
		if retweet, _, ok := activity.RetweetInfo(); ok && retweet {
			continue
		}
		kept = append(kept, activity)
	}
	return kept
}

func printTopics(labels []string) {
	fmt.Println("### TOPIC ANALYSIS ###")
	for i, label := range labels {
		if i == 3 {
			break
		}
		fmt.Println(label)
	}
	fmt.Println()
}

func printClusteredTopics(clusters map[string]evaluate.TopicCluster) {
	fmt.Println("### CLUSTERED TOPIC ANALYSIS ###")

	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, key := range keys {
		cluster := clusters[key]
		fmt.Printf("== %s | %d ==\n", key, cluster.Count)
		if len(cluster.Topics) > 0 {
			fmt.Println(cluster.Topics[0])
		}
	}
	fmt.Println()
}

func printHistogram(histogram *evaluate.ActivityHistogram, activities []models.Activity) error {
	summary, err := histogram.Evaluate(activities)
	if err != nil {
		return fmt.Errorf("activity analysis failed: %w", err)
	}

	fmt.Println("### ACTIVITY TIME ANALYSIS ###")
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		row := summary[day]
		fmt.Printf("=== %s | %f ===\n", day, row.ActivityPercent)
		for hour, pct := range row.HourPercent {
			fmt.Printf("%02d\t%f\n", hour, pct)
		}
	}
	fmt.Println()
	return nil
}

func printRetweets(ranking []evaluate.RetweetRank) {
	fmt.Println("### RETWEET ANALYSIS ###")
	for i, rank := range ranking {
		if i == 5 {
			break
		}
		fmt.Printf("%d\t%s\n", rank.Count, rank.Username)
	}
	fmt.Println()
}
