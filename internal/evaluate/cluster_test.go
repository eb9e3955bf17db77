package evaluate

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func datedActivity(id string, ts time.Time) models.Activity {
	return models.Activity{
		ID:       id,
		Type:     "twitter",
		Metadata: models.Metadata{Date: ts.Format("2006-01-02T15:04:05")},
	}
}

// burst returns n activities spaced one hour apart starting at from.
func burst(prefix string, from time.Time, n int) []models.Activity {
	activities := make([]models.Activity, 0, n)
	for i := 0; i < n; i++ {
		activities = append(activities, datedActivity(
			fmt.Sprintf("%s-%d", prefix, i),
			from.Add(time.Duration(i)*time.Hour),
		))
	}
	return activities
}

func testClusterer() *TemporalClusterer {
	cfg := config.ClusterConfig{MinClusterSize: 10, Radius: 24 * time.Hour}
	return NewTemporalClusterer(cfg, discardLogger(), nil)
}

func groupIDs(groups [][]models.Activity) [][]string {
	ids := make([][]string, len(groups))
	for i, group := range groups {
		for _, activity := range group {
			ids[i] = append(ids[i], activity.ID)
		}
	}
	return ids
}

func TestTemporalClusterer_SeparatesBursts(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	april := time.Date(2021, 4, 15, 0, 0, 0, 0, time.Local)

	input := append(burst("march", march, 12), burst("april", april, 15)...)

	groups := testClusterer().Evaluate(input)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	sizes := map[int]bool{len(groups[0]): true, len(groups[1]): true}
	if !sizes[12] || !sizes[15] {
		t.Errorf("expected group sizes 12 and 15, got %d and %d", len(groups[0]), len(groups[1]))
	}
}

func TestTemporalClusterer_HighestClusterNotDropped(t *testing.T) {
	// Three well-separated bursts must yield three groups, including
	// the last-labeled one.
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Local)
	var input []models.Activity
	for i := 0; i < 3; i++ {
		input = append(input, burst(fmt.Sprintf("b%d", i), base.AddDate(0, i, 0), 10)...)
	}

	groups := testClusterer().Evaluate(input)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
}

func TestTemporalClusterer_NoisePointsExcluded(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	input := burst("dense", march, 12)
	input = append(input, datedActivity("lone", march.AddDate(0, 6, 0)))

	groups := testClusterer().Evaluate(input)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, activity := range groups[0] {
		if activity.ID == "lone" {
			t.Error("noise point must not appear in any group")
		}
	}
	if len(groups[0]) != 12 {
		t.Errorf("expected group of 12, got %d", len(groups[0]))
	}
}

func TestTemporalClusterer_DegenerateInput(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		input []models.Activity
	}{
		{"empty", nil},
		{"below minimum size", burst("few", march, 5)},
		{"undated only", []models.Activity{{ID: "x"}, {ID: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if groups := testClusterer().Evaluate(tt.input); len(groups) != 0 {
				t.Errorf("expected no groups, got %d", len(groups))
			}
		})
	}
}

func TestTemporalClusterer_SkipsUndatedActivities(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	input := burst("dated", march, 11)
	input = append(input, models.Activity{ID: "undated"})

	groups := testClusterer().Evaluate(input)
	if len(groups) != 1 || len(groups[0]) != 11 {
		t.Fatalf("expected one group of 11 dated activities, got %v", groupIDs(groups))
	}
}

func TestTemporalClusterer_InputOrderIrrelevant(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	april := time.Date(2021, 4, 15, 0, 0, 0, 0, time.Local)
	input := append(burst("march", march, 12), burst("april", april, 15)...)

	expected := groupIDs(testClusterer().Evaluate(input))

	shuffled := append([]models.Activity(nil), input...)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got := groupIDs(testClusterer().Evaluate(shuffled))
	if !reflect.DeepEqual(expected, got) {
		t.Errorf("grouping depends on input order:\n  want %v\n  got  %v", expected, got)
	}
}

func TestTemporalClusterer_Idempotent(t *testing.T) {
	march := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	input := burst("march", march, 12)

	first := testClusterer().Evaluate(input)
	second := testClusterer().Evaluate(input)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated evaluation of the same input differs")
	}
}
