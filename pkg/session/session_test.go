package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

func TestAnalysisRunnerSingleOutcomePerRun(t *testing.T) {
	var mu sync.Mutex
	outcomes := make(map[string][]AnalysisStatus)
	r := NewAnalysisRunner(func(out AnalysisOutcome) {
		mu.Lock()
		outcomes[out.RunID] = append(outcomes[out.RunID], out.Status)
		mu.Unlock()
	})

	var big []string
	for i := 0; i < 20000; i++ {
		big = append(big, fmt.Sprintf("cam_%05d_front.jpg", i))
	}

	first := r.Start(context.Background(), tokens.New(), big)
	second := r.Start(context.Background(), tokens.New(), sampleNames)
	require.NotEqual(t, first, second)

	out, ok := r.Wait(context.Background())
	require.True(t, ok)
	assert.Equal(t, second, out.RunID)
	assert.Equal(t, AnalysisCompleted, out.Status)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, sampleNames, out.Analysis.Filenames())
	assert.False(t, r.Running())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 2)
	for id, statuses := range outcomes {
		require.Len(t, statuses, 1, id)
		_, err := ulid.ParseStrict(id)
		assert.NoError(t, err)
	}
	assert.Contains(t, []AnalysisStatus{AnalysisCompleted, AnalysisCanceled}, outcomes[first][0])
}

// Пока Start ждёт завершения предыдущего запуска, Running и Cancel
// отвечают сразу.
func TestAnalysisRunnerStartDoesNotBlockQueries(t *testing.T) {
	release := make(chan struct{})
	r := NewAnalysisRunner(func(AnalysisOutcome) { <-release })

	r.Start(context.Background(), tokens.New(), sampleNames)
	started := make(chan string, 1)
	go func() { started <- r.Start(context.Background(), tokens.New(), sampleNames) }()
	time.Sleep(20 * time.Millisecond)

	answered := make(chan bool, 1)
	go func() {
		r.Cancel()
		answered <- r.Running()
	}()
	select {
	case running := <-answered:
		assert.True(t, running)
	case <-time.After(time.Second):
		close(release)
		t.Fatal("Running blocked while Start was waiting")
	}

	close(release)
	second := <-started
	out, ok := r.Wait(context.Background())
	require.True(t, ok)
	assert.Equal(t, second, out.RunID)
}

func TestAnalysisRunnerCanceledContext(t *testing.T) {
	r := NewAnalysisRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.Start(ctx, tokens.New(), sampleNames)
	out, ok := r.Wait(context.Background())
	require.True(t, ok)
	assert.Equal(t, AnalysisCanceled, out.Status)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Nil(t, out.Analysis)
}

func TestAnalysisRunnerWaitWithoutRuns(t *testing.T) {
	r := NewAnalysisRunner(nil)
	_, ok := r.Wait(context.Background())
	assert.False(t, ok)
	assert.False(t, r.Running())
	r.Cancel()
}

func TestSessionEndToEnd(t *testing.T) {
	emitter := events.NewLossyChanEmitter(128)
	s := New(Options{Debounce: testDebounce, Rules: sideRules, Emitter: emitter})
	defer s.Close()

	_, err := s.LoadSamples(context.Background(), sampleNames)
	require.NoError(t, err)

	out, ok := s.WaitAnalysis(context.Background())
	require.True(t, ok)
	require.Equal(t, AnalysisCompleted, out.Status)

	st := s.Store().Snapshot()
	require.NotNil(t, st.Analysis)
	require.NotNil(t, st.GroupID)
	assert.Equal(t, "001", st.GroupID.Value)

	require.Eventually(t, func() bool { return s.Validator().ShouldShowSuccessBanner() }, time.Second, 5*time.Millisecond)

	cfg, err := s.GenerateConfiguration()
	require.NoError(t, err)
	assert.True(t, cfg.IsValid())
	assert.Equal(t, 2, s.Validator().Grouping().GroupCount())

	seen := make(map[events.EventType]bool)
	sub := emitter.Subscribe()
drain:
	for {
		select {
		case ev := <-sub.Events():
			seen[ev.Type] = true
		default:
			break drain
		}
	}
	assert.True(t, seen[events.EventAnalysisStarted])
	assert.True(t, seen[events.EventAnalysisCompleted])
	assert.True(t, seen[events.EventStateChanged])
	assert.True(t, seen[events.EventValidated])
}

func TestSessionSampleLimit(t *testing.T) {
	s := New(Options{SampleLimit: 2, Debounce: time.Hour})
	defer s.Close()

	_, err := s.LoadSamples(context.Background(), sampleNames)
	require.NoError(t, err)
	out, _ := s.WaitAnalysis(context.Background())
	assert.Equal(t, 2, out.Files)
	assert.Equal(t, sampleNames[:2], s.Store().Snapshot().Samples)
}

func TestSessionCustomTokens(t *testing.T) {
	names := []string{"gate_01_lanea_x.jpg", "gate_02_laneb_y.jpg", "gate_03_lanec_z.jpg"}
	s := New(Options{Debounce: time.Hour})
	defer s.Close()

	_, err := s.LoadSamples(context.Background(), names)
	require.NoError(t, err)
	s.WaitAnalysis(context.Background())

	assert.True(t, s.ShouldOfferCustomTokens())
	s.MarkCustomTokenDialogShown()
	assert.False(t, s.ShouldOfferCustomTokens())
	assert.True(t, s.CustomTokenDialogShown())

	s.SetCustomTokens(context.Background(), []tokens.CustomToken{
		{Name: "lane", MappedType: tokens.TypeSuffix, Examples: []string{"lanea", "laneb", "lanec"}},
	}, "test")
	out, ok := s.WaitAnalysis(context.Background())
	require.True(t, ok)
	require.Equal(t, AnalysisCompleted, out.Status)

	toks := s.Store().Snapshot().Tokens
	require.Len(t, toks, 5)
	assert.Equal(t, tokens.TypeSuffix, toks[2].SuggestedType)
	assert.Len(t, s.CustomTokens(), 1)

	other := New(Options{})
	defer other.Close()
	assert.False(t, other.CustomTokenDialogShown())
}

func TestSessionClosed(t *testing.T) {
	s := New(Options{})
	s.Close()
	s.Close()

	_, err := s.LoadSamples(context.Background(), sampleNames)
	assert.ErrorIs(t, err, ErrClosed)
}
