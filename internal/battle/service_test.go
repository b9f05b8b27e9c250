package battle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
	"github.com/nbkbattle/nbk-battle/pkg/http/ws"
)

type stubCatalog struct {
	cats []catalog.Category
	qs   []catalog.Question
}

func (s *stubCatalog) Categories(_ context.Context, ids []string) ([]catalog.Category, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []catalog.Category
	for _, c := range s.cats {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCatalog) Questions(_ context.Context, _ []string) ([]catalog.Question, error) {
	return s.qs, nil
}

type memUsage struct {
	mu        sync.Mutex
	used      map[UsageKey][]string
	appendErr error
	appended  []string
}

func (u *memUsage) Used(_ context.Context, categoryID string, points int) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.used[UsageKey{CategoryID: categoryID, Tier: points}], nil
}

func (u *memUsage) Append(_ context.Context, _ string, _ int, questionID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.appendErr != nil {
		return u.appendErr
	}
	for _, id := range u.appended {
		if id == questionID {
			return nil
		}
	}
	u.appended = append(u.appended, questionID)
	return nil
}

type memSnapshots struct {
	mu      sync.Mutex
	saves   int
	saveErr error
	deleted []uuid.UUID
}

func (m *memSnapshots) Save(_ context.Context, _ SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return m.saveErr
}

func (m *memSnapshots) Delete(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, sessionID)
	return nil
}

type stubResults struct {
	mu       sync.Mutex
	recorded []FinalScore
	err      error
}

func (r *stubResults) Record(_ context.Context, _ uuid.UUID, _ Mode, score FinalScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, score)
	return nil
}

type recordingHub struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (h *recordingHub) BroadcastToSession(_ uuid.UUID, msg ws.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, 0, len(h.msgs))
	for _, m := range h.msgs {
		types = append(types, m.Type)
	}
	return types
}

// idleClock hands out tickers that never fire, keeping timer behavior out of
// orchestration tests. The countdown itself is covered by the session tests.
type idleClock struct{}

func (idleClock) NewTicker(time.Duration) Ticker { return idleTicker{ch: make(chan time.Time)} }

type idleTicker struct{ ch chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.ch }
func (idleTicker) Stop()                 {}

type serviceFixture struct {
	svc     *Service
	usage   *memUsage
	snaps   *memSnapshots
	results *stubResults
	hub     *recordingHub
}

func newServiceFixture() *serviceFixture {
	catIDs := []string{"c1", "c2", "c3", "c4", "c5", "c6"}
	provider := &stubCatalog{
		cats: testCategories(catIDs...),
		qs:   fullPool(catIDs, ModePoints.Tiers(), 2),
	}
	f := &serviceFixture{
		usage:   &memUsage{used: map[UsageKey][]string{}},
		snaps:   &memSnapshots{},
		results: &stubResults{},
		hub:     &recordingHub{},
	}

	opts := DefaultServiceOptions()
	opts.Session.QuestionSeconds = 3
	opts.Session.Rand = testRand()

	f.svc = NewService(provider, f.usage, f.snaps, f.results, f.hub, idleClock{}, nil, opts, zerolog.Nop())
	return f
}

func (f *serviceFixture) completedDraft(t *testing.T) *Draft {
	t.Helper()
	ctx := context.Background()
	d := f.svc.CreateDraft(ctx, "Falcons", "Eagles")
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		_, outcome, err := f.svc.Pick(ctx, d.ID, id)
		assert.NoError(t, err)
		assert.Equal(t, PickAdded, outcome)
	}
	return d
}

func (f *serviceFixture) startedSession(t *testing.T) SessionSnapshot {
	t.Helper()
	d := f.completedDraft(t)
	snap, err := f.svc.CreateSession(context.Background(), d.ID, ModePoints)
	assert.NoError(t, err)
	return snap
}

func TestCreateSessionRequiresCompleteDraft(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	d := f.svc.CreateDraft(ctx, "Falcons", "Eagles")
	_, err := f.svc.CreateSession(ctx, d.ID, ModePoints)
	assert.ErrorIs(t, err, ErrDraftIncomplete)

	_, err = f.svc.CreateSession(ctx, uuid.New(), ModePoints)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestCreateSessionConsumesDraft(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	d := f.completedDraft(t)
	snap, err := f.svc.CreateSession(ctx, d.ID, ModePoints)
	assert.NoError(t, err)
	assert.Len(t, snap.Cells, 6*3*2)
	assert.Equal(t, "Falcons", snap.Team1.Name)

	_, err = f.svc.Draft(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound, "a consumed draft is gone")
}

func TestDraftReadsAreDetachedCopies(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created := f.svc.CreateDraft(ctx, "Falcons", "Eagles")

	_, outcome, err := f.svc.Pick(ctx, created.ID, "c1")
	assert.NoError(t, err)
	assert.Equal(t, PickAdded, outcome)
	assert.Empty(t, created.Team1Picks, "the create-time view must not track later picks")

	afterFirst, err := f.svc.Draft(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"c1"}, afterFirst.Team1Picks)

	_, _, err = f.svc.Pick(ctx, created.ID, "c2")
	assert.NoError(t, err)
	_, _, err = f.svc.Pick(ctx, created.ID, "c3")
	assert.NoError(t, err)

	assert.Equal(t, []string{"c1"}, afterFirst.Team1Picks, "earlier reads keep their own pick slices")
	assert.Empty(t, afterFirst.Team2Picks)
}

func TestResolvePersistsUsageAndBroadcasts(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	snap := f.startedSession(t)

	cell := CellKey{CategoryID: "c1", Tier: 200, Slot: 0}
	opened, err := f.svc.OpenCell(ctx, snap.ID, cell)
	assert.NoError(t, err)
	assert.Equal(t, PhaseQuestionOpen, opened.Phase)

	resolved, err := f.svc.Resolve(ctx, snap.ID, Team1)
	assert.NoError(t, err)
	assert.Equal(t, 200, resolved.Team1.Score)
	assert.Equal(t, PhaseIdle, resolved.Phase)

	assert.Len(t, f.usage.appended, 1, "the shown question is recorded as used")
	assert.Contains(t, f.hub.types(), ws.TypeQuestionOpened)
	assert.Contains(t, f.hub.types(), ws.TypeQuestionResolved)
	assert.Greater(t, f.snaps.saves, 0)
}

func TestResolveSurvivesUsageStoreFailure(t *testing.T) {
	f := newServiceFixture()
	f.usage.appendErr = errors.New("pg down")
	ctx := context.Background()
	snap := f.startedSession(t)

	_, err := f.svc.OpenCell(ctx, snap.ID, CellKey{CategoryID: "c1", Tier: 200, Slot: 0})
	assert.NoError(t, err)

	resolved, err := f.svc.Resolve(ctx, snap.ID, Team2)
	assert.NoError(t, err, "usage persistence is best-effort")
	assert.Equal(t, 200, resolved.Team2.Score)
}

func TestTransitionsSurviveSnapshotFailure(t *testing.T) {
	f := newServiceFixture()
	f.snaps.saveErr = errors.New("redis down")
	ctx := context.Background()
	snap := f.startedSession(t)

	_, err := f.svc.OpenCell(ctx, snap.ID, CellKey{CategoryID: "c2", Tier: 400, Slot: 1})
	assert.NoError(t, err, "snapshot persistence is best-effort")
}

func TestTimerPauseAndReveal(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	snap := f.startedSession(t)

	_, err := f.svc.OpenCell(ctx, snap.ID, CellKey{CategoryID: "c3", Tier: 600, Slot: 0})
	assert.NoError(t, err)

	paused, err := f.svc.SetTimer(ctx, snap.ID, false)
	assert.NoError(t, err)
	assert.False(t, paused.Open.TimerRunning)

	revealed, err := f.svc.Reveal(ctx, snap.ID)
	assert.NoError(t, err)
	assert.Equal(t, PhaseAnswerRevealed, revealed.Phase)
	assert.Contains(t, f.hub.types(), ws.TypeAnswerRevealed)
}

func TestUsePowerUpBroadcasts(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	snap := f.startedSession(t)

	f.svc.mu.Lock()
	f.svc.sessions[snap.ID].engine.Team1.PowerUps = []PowerUp{{Kind: PowerUpDoublePoints}}
	f.svc.mu.Unlock()

	updated, err := f.svc.UsePowerUp(ctx, snap.ID, Team1, PowerUpDoublePoints)
	assert.NoError(t, err)
	assert.True(t, updated.Team1.PowerUps[0].Used)
	assert.Contains(t, f.hub.types(), ws.TypePowerUpUsed)
}

func TestFinishArchivesResultAndTearsDown(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	snap := f.startedSession(t)

	_, err := f.svc.OpenCell(ctx, snap.ID, CellKey{CategoryID: "c4", Tier: 200, Slot: 0})
	assert.NoError(t, err)
	_, err = f.svc.Resolve(ctx, snap.ID, Team1)
	assert.NoError(t, err)

	score, err := f.svc.Finish(ctx, snap.ID)
	assert.NoError(t, err)
	assert.Equal(t, 200, score.Team1Score)

	if assert.Len(t, f.results.recorded, 1) {
		assert.Equal(t, 200, f.results.recorded[0].Team1Score)
	}
	assert.Contains(t, f.snaps.deleted, snap.ID)
	assert.Contains(t, f.hub.types(), ws.TypeSessionFinished)

	_, err = f.svc.Snapshot(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinishSurvivesResultRecorderFailure(t *testing.T) {
	f := newServiceFixture()
	f.results.err = errors.New("pg down")
	ctx := context.Background()
	snap := f.startedSession(t)

	_, err := f.svc.Finish(ctx, snap.ID)
	assert.NoError(t, err, "archiving is best-effort")
}

func TestDeleteAbandonsSession(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	snap := f.startedSession(t)

	assert.NoError(t, f.svc.Delete(ctx, snap.ID))
	assert.Empty(t, f.results.recorded, "an abandoned session is not archived")
	assert.Contains(t, f.snaps.deleted, snap.ID)

	assert.ErrorIs(t, f.svc.Delete(ctx, snap.ID), ErrSessionNotFound)
}

func TestCreateSessionHonorsUsageRecords(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	// Both authored questions for (c1, 200) were shown before, q index 0 first.
	key := UsageKey{CategoryID: "c1", Tier: 200}
	f.usage.used[key] = []string{"c1-200-0", "c1-200-1"}

	d := f.completedDraft(t)
	snap, err := f.svc.CreateSession(ctx, d.ID, ModePoints)
	assert.NoError(t, err)

	var pair []string
	for _, cellView := range snap.Cells {
		if cellView.Cell.CategoryID == "c1" && cellView.Cell.Tier == 200 {
			pair = append(pair, cellView.QuestionID)
		}
	}
	assert.Equal(t, []string{"c1-200-0", "c1-200-1"}, pair, "fully used keys rotate back oldest first")
}
