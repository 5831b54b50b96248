package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/studyfocus/internal/clock"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/alexanderramin/studyfocus/internal/repository"
	"github.com/alexanderramin/studyfocus/internal/service"
	"github.com/alexanderramin/studyfocus/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

// testApp wires a full App over an in-memory store preloaded with snap.
func testApp(t *testing.T, snap persistence.Snapshot, opts ...service.Option) *App {
	t.Helper()
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	if !snap.Empty() {
		require.NoError(t, persistence.NewAdapter(kv, "").Save(ctx, snap))
	}

	base := []service.Option{
		service.WithClock(clock.Fixed(testNow)),
		service.WithLocation(time.UTC),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithTickInterval(time.Hour),
	}
	w := service.NewWorkspace(kv, "", append(base, opts...)...)
	require.NoError(t, w.Load(ctx))
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	return &App{
		Study: w,
		Timer: w,
		Stats: w,
		Flush: w.Flush,
	}
}

// mathSnapshot is Math / Algebra / Groups with 600s timed and 1800s manual.
func mathSnapshot() persistence.Snapshot {
	return persistence.Snapshot{State: testutil.NewMathState(testNow.Add(-2 * time.Hour))}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app := testApp(t, persistence.Snapshot{})

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "studyfocus")
	assert.Contains(t, output, "timer")
}

// --- hierarchy commands ---

func TestHierarchyCmds_AddByNameAndShowTree(t *testing.T) {
	app := testApp(t, persistence.Snapshot{})

	out, err := executeCmd(t, app, "subject", "add", "Organic", "Chemistry")
	require.NoError(t, err)
	assert.Contains(t, out, "Added subject Organic Chemistry")

	_, err = executeCmd(t, app, "chapter", "add", "organic chemistry", "Alkanes")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "topic", "add", "Organic Chemistry", "alkanes", "Naming")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Organic Chemistry")
	assert.Contains(t, out, "└─ Alkanes")
	assert.Contains(t, out, "Naming")

	out, err = executeCmd(t, app, "subject", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Organic Chemistry")
	assert.Contains(t, out, "CHAPTERS")
}

func TestHierarchyCmds_AcceptIDs(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "topic", "add", "s1", "c1", "Rings")
	require.NoError(t, err)
	assert.Contains(t, out, "Added topic Rings")
}

func TestHierarchyCmds_UnknownParent(t *testing.T) {
	app := testApp(t, persistence.Snapshot{})

	_, err := executeCmd(t, app, "chapter", "add", "Physics", "Optics")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHierarchyCmds_BlankName(t *testing.T) {
	app := testApp(t, persistence.Snapshot{})

	_, err := executeCmd(t, app, "subject", "add", "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRemoveCmd_ReportsRemovedTime(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "topic", "rm", "Math", "Algebra", "Groups")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted topic Groups")
	assert.Contains(t, out, "10m 00s of study time removed")

	tree := app.Study.Tree(context.Background())
	assert.Equal(t, int64(1800), tree.Subjects[0].TotalTime)
	assert.Empty(t, app.Study.Check(context.Background()))

	out, err = executeCmd(t, app, "subject", "rm", "Math")
	require.NoError(t, err)
	assert.Contains(t, out, "30m 00s of study time removed")
	assert.Empty(t, app.Study.Tree(context.Background()).Subjects)
}

func TestRemoveCmd_WrongArgCount(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := executeCmd(t, app, "chapter", "rm", "Math")
	assert.Error(t, err)
}

// --- log command ---

func TestLogCmd_WithFlags(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "log", "Math", "Algebra", "--hours=1", "--minutes=30")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 1h 30m on Math")

	tree := app.Study.Tree(context.Background())
	assert.Equal(t, int64(2400+5400), tree.Subjects[0].TotalTime)
	assert.Equal(t, int64(600), tree.Subjects[0].Chapters[0].Topics[0].TotalTime)
}

func TestLogCmd_NegativeClampsToZero(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "log", "Math", "Algebra", "--hours=1", "--minutes=-30")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 1h 00m")
}

func TestLogCmd_ZeroIsNoop(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "log", "Math", "Algebra", "--minutes=0")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to log")
	assert.Equal(t, int64(2400), app.Study.Tree(context.Background()).Subjects[0].TotalTime)
}

func TestLogCmd_RejectsOversizedEntry(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := executeCmd(t, app, "log", "Math", "Algebra", "--hours=9223372036854775807")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	tree := app.Study.Tree(context.Background())
	assert.Equal(t, int64(2400), tree.Subjects[0].TotalTime)
	assert.Equal(t, int64(2400), tree.Subjects[0].Chapters[0].TotalTime)
}

func TestLogCmd_RequiresFlagsWithoutTerminal(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := executeCmd(t, app, "log", "Math", "Algebra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--hours")
}

func TestApplyManualLog_UnknownChapter(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := applyManualLog(context.Background(), app, "s1", "nope", 1, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestManualLogForm_Validation(t *testing.T) {
	assert.NoError(t, validateNonNegativeInt(""))
	assert.NoError(t, validateNonNegativeInt(" 15 "))
	assert.Error(t, validateNonNegativeInt("-1"))
	assert.Error(t, validateNonNegativeInt("abc"))
	assert.Equal(t, 0, parseFormInt(""))
	assert.Equal(t, 45, parseFormInt("45"))

	var h, m string
	assert.NotNil(t, manualLogForm("Algebra", &h, &m))
}

// --- timer commands ---

func runningSnapshot(elapsed int64) persistence.Snapshot {
	snap := mathSnapshot()
	snap.Active = &domain.ActiveTimer{
		Target:         domain.TimerTarget{SubjectID: "s1", ChapterID: "c1", TopicID: "t1"},
		ElapsedSeconds: elapsed,
	}
	return snap
}

func TestTimerStatus_Idle(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "timer", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No timer running")

	out, err = executeCmd(t, app, "timer", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "No timer running")
}

func TestTimerCmds_StoredTimerCanBeStopped(t *testing.T) {
	app := testApp(t, runningSnapshot(125))

	out, err := executeCmd(t, app, "timer", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Groups")
	assert.Contains(t, out, "00:02:05")

	out, err = executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "▶ Groups")

	out, err = executeCmd(t, app, "timer", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 2m 05s on Groups")

	topic := app.Study.Tree(context.Background()).Subjects[0].Chapters[0].Topics[0]
	assert.Equal(t, int64(725), topic.TotalTime)
	require.Len(t, topic.Sessions, 2)
	assert.Equal(t, testNow, topic.Sessions[1].Timestamp)
	assert.False(t, app.Timer.Status(context.Background()).Running)
}

func TestTimerStart_HeadlessRunsForDuration(t *testing.T) {
	app := testApp(t, mathSnapshot(), service.WithTickInterval(5*time.Millisecond))

	out, err := executeCmd(t, app, "timer", "start", "Math", "Algebra", "Groups", "--for", "200ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Timing")
	assert.Contains(t, out, "Logged")
	assert.Contains(t, out, "on Groups")

	ctx := context.Background()
	assert.False(t, app.Timer.Status(ctx).Running)
	topic := app.Study.Tree(ctx).Subjects[0].Chapters[0].Topics[0]
	assert.Greater(t, topic.TotalTime, int64(600))
	assert.Empty(t, app.Study.Check(ctx))
}

func TestTimerStart_FinalizesPreviousTimer(t *testing.T) {
	app := testApp(t, runningSnapshot(90))
	_, err := executeCmd(t, app, "topic", "add", "Math", "Algebra", "Rings")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "timer", "start", "Math", "Algebra", "Rings", "--for", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 1m 30s on the previous timer")

	groups := app.Study.Tree(context.Background()).Subjects[0].Chapters[0].Topics[0]
	assert.Equal(t, int64(690), groups.TotalTime)
}

func TestTimerStart_UnknownTopic(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := executeCmd(t, app, "timer", "start", "Math", "Algebra", "Rings")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, app.Timer.Status(context.Background()).Running)
}

func TestTimerStop_DeletedTopicDropsSession(t *testing.T) {
	app := testApp(t, runningSnapshot(40))

	_, err := executeCmd(t, app, "topic", "rm", "Math", "Algebra", "Groups")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "timer", "stop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, app.Timer.Status(context.Background()).Running)
	assert.Equal(t, int64(1800), app.Study.Tree(context.Background()).Subjects[0].TotalTime)
}

// --- stats, tree, check ---

func TestStatsCmd_DefaultDaily(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "STUDY HOURS (DAILY)")
	assert.Contains(t, out, "Wed")
	assert.Contains(t, out, "0.2h")
	assert.Contains(t, out, "40m 00s")
	assert.Contains(t, out, "79 days")
	assert.Contains(t, out, "Math")
}

func TestStatsCmd_Views(t *testing.T) {
	app := testApp(t, mathSnapshot())

	out, err := executeCmd(t, app, "stats", "--view", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "This Week")
	assert.Contains(t, out, "3 weeks ago")

	out, err = executeCmd(t, app, "stats", "--view=monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "Oct")
	assert.Contains(t, out, "May")

	_, err = executeCmd(t, app, "stats", "--view", "yearly")
	assert.Error(t, err)
}

func TestTreeCmd_Empty(t *testing.T) {
	app := testApp(t, persistence.Snapshot{})

	out, err := executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "No subjects yet")
}

func TestCheckCmd(t *testing.T) {
	app := testApp(t, mathSnapshot())
	out, err := executeCmd(t, app, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "All totals roll up")

	broken := mathSnapshot()
	broken.State.Subjects[0].TotalTime = 5
	app = testApp(t, broken)
	out, err = executeCmd(t, app, "check")
	require.Error(t, err)
	assert.Contains(t, out, "problem(s) found")
	assert.Contains(t, out, "s1")
}

func TestFocusCmd_RequiresTerminal(t *testing.T) {
	app := testApp(t, mathSnapshot())

	_, err := executeCmd(t, app, "focus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestRootCmd_FlushFailureWarns(t *testing.T) {
	app := testApp(t, mathSnapshot())
	app.Flush = func(context.Context) error { return testutil.ErrInjected }

	out, err := executeCmd(t, app, "subject", "add", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, "could not save")
}

func TestRootCmd_FlushPersists(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	w := service.NewWorkspace(kv, "", service.WithClock(clock.Fixed(testNow)),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, w.Load(ctx))
	t.Cleanup(func() { _ = w.Close(ctx) })
	app := &App{Study: w, Timer: w, Stats: w, Flush: w.Flush}

	_, err := executeCmd(t, app, "subject", "add", "Biology")
	require.NoError(t, err)

	stored, ok, err := kv.Get(ctx, persistence.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok, "flushed on command exit")
	assert.Contains(t, stored, `"name":"Biology"`)
}
