package slots

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	internalApp "github.com/felixgeelhaar/slotwise/internal/app"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	registerOnce sync.Once
	fixedNow     = time.Date(2026, time.October, 15, 8, 20, 0, 0, time.UTC)
)

// setupTestApp wires an in-memory container into the CLI.
func setupTestApp(t *testing.T) *internalApp.Container {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		UserID:         config.DefaultUserID,
		Store:          "memory",
		CalendarSource: config.CalendarSourceNone,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := cli.NewApp(
		container.RecommendSlotsHandler,
		container.RecordCompletionHandler,
		container.BookSlotHandler,
		container.FocusStore,
		container,
		container.Health,
	)
	app.SetCurrentUserID(uuid.MustParse(config.DefaultUserID))
	cli.SetApp(app)
	cli.SetLogger(logger)
	t.Cleanup(func() { cli.SetApp(nil) })

	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = time.Now })

	registerOnce.Do(func() { cli.AddCommand(Cmd) })
	return container
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(Cmd)

	root := cli.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"slots"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "recommend", "--priority", "high")
	require.NoError(t, err)

	assert.Contains(t, out, "Best slots on Thu Oct 15:")
	assert.Contains(t, out, "1. 10 AM")
	assert.Contains(t, out, "2. 11 AM")
	assert.Contains(t, out, "peak-focus")
}

func TestRecommendCommand_JSONAndLanguage(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "recommend", "--priority", "medium", "--date", "2026-10-16", "--minute", "30", "--lang", "ko", "--json")
	require.NoError(t, err)

	var views []recommendationView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "오전 10시 30분", views[0].Time)
	assert.Equal(t, "2026-10-16T10:30:00Z", views[0].Start)
	assert.NotEmpty(t, views[0].Icon)
}

func TestRecommendCommand_Errors(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "recommend", "--priority", "urgent")
	assert.ErrorContains(t, err, "invalid priority")

	_, err = run(t, "recommend", "--date", "15/10/2026")
	assert.ErrorContains(t, err, "invalid date")

	_, err = run(t, "recommend", "--book", "--title", "Write report")
	assert.ErrorContains(t, err, "CALENDAR_SOURCE=caldav")
}

func TestCompleteCommand(t *testing.T) {
	container := setupTestApp(t)

	out, err := run(t, "complete", "--hour", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus score for 10:00: 50 -> 55")

	out, err = run(t, "complete")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus score for 08:00: 50 -> 55")

	out, err = run(t, "complete", uuid.NewString(), "--hour", "10", "--async")
	require.NoError(t, err)
	assert.Contains(t, out, "Completion published")

	pattern, err := container.FocusStore.Snapshot(context.Background())
	require.NoError(t, err)
	score, _ := pattern.Learned(10)
	assert.Equal(t, 60, score)
}

func TestCompleteCommand_Errors(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "complete", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid task ID")

	_, err = run(t, "complete", "--hour", "24")
	assert.ErrorContains(t, err, "hour must be between 0 and 23")
}

func TestPatternsCommand(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "No completions recorded yet.")

	_, err = run(t, "complete", "--hour", "14")
	require.NoError(t, err)

	out, err = run(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "14:00       85       55  #####")
	assert.NotContains(t, out, "09:00")

	out, err = run(t, "patterns", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "09:00       85        -")
}
