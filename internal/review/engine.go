package review

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/quizforge/dupereview/internal/backend"
	"github.com/quizforge/dupereview/internal/cache"
	"github.com/quizforge/dupereview/internal/model"
	"github.com/quizforge/dupereview/internal/store"
)

// EventType classifies engine notifications
type EventType string

const (
	EventPageChanged      EventType = "page_changed"
	EventStatusesLoaded   EventType = "statuses_loaded"
	EventSelectionChanged EventType = "selection_changed"
	EventPageSubmitted    EventType = "page_submitted"
)

// Event is a notification pushed to subscribers. Status and selection
// changes propagate by notification, never by callers polling shared
// state.
type Event struct {
	Type    EventType
	Subject string
	Range   model.ReviewRange
}

// PageView is a read-only snapshot of the current page for rendering
type PageView struct {
	Range         model.ReviewRange
	Groups        []model.DuplicateGroup
	Selections    Selections
	Conflicts     []model.RecordID
	Loaded        bool
	HasNext       bool
	HasPrevious   bool
	ExcludedByCap int
}

// Engine owns the review state for one subject: the group index, the
// paginator, the selection state, the snapshot cache, and the session.
// All mutation goes through its methods; readers get snapshots.
type Engine struct {
	mu       sync.Mutex
	cfg      *model.Config
	backend  backend.Backend
	snaps    cache.Snapshots
	sessions *store.SessionStore

	subject string
	sess    *model.Session
	idx     *GroupIndex
	pag     *Paginator
	coord   *Coordinator

	headsUp bool
	sel     Selections
	page    []model.DuplicateGroup
	loaded  bool

	inflight map[string]bool // outstanding loads, keyed by subject and range
	subs     []chan Event
}

// NewEngine wires an engine from its collaborators
func NewEngine(cfg *model.Config, b backend.Backend, snaps cache.Snapshots, sessions *store.SessionStore) *Engine {
	return &Engine{
		cfg:      cfg,
		backend:  b,
		snaps:    snaps,
		sessions: sessions,
		coord:    NewCoordinator(b, cfg.Review.SubmitConcurrency),
		headsUp:  cfg.Review.HeadsUp,
		inflight: make(map[string]bool),
	}
}

// Start loads (or creates) the subject's session, fetches the group
// list, and anchors the first page.
func (e *Engine) Start(ctx context.Context, subject string) error {
	groups, err := e.backend.GetGroups(ctx, subject)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	sess, err := e.sessions.Load(subject)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = model.NewSession(subject, e.cfg.Review.TargetGroupsPerPage)
	}
	if sess.TargetGroupsPerPage <= 0 {
		sess.TargetGroupsPerPage = e.cfg.Review.TargetGroupsPerPage
	}

	distinct := make(map[model.RecordID]bool)
	for _, g := range groups.Groups {
		for _, id := range g.Files {
			distinct[id] = true
		}
	}
	sess.TotalFiles = groups.TotalFiles
	sess.NonDuplicateCount = groups.NonDuplicateCount
	sess.FilesInGroups = len(distinct)

	e.mu.Lock()
	e.subject = subject
	e.sess = sess
	e.idx = NewGroupIndex(groups.Groups)
	e.pag = NewPaginator(e.idx, sess)
	e.page = e.pag.PageGroups()
	e.sel = nil
	e.loaded = false
	// Loads started before this point belong to the previous state
	e.inflight = make(map[string]bool)
	e.mu.Unlock()

	if err := e.sessions.Save(sess); err != nil {
		return err
	}
	e.notify(EventPageChanged)
	return nil
}

// Subscribe returns a channel receiving engine events. Notifications
// are dropped, not blocked on, when a subscriber lags.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) notify(t EventType) {
	e.mu.Lock()
	ev := Event{Type: t, Subject: e.subject, Range: e.sess.Range}
	subs := e.subs
	e.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func loadKey(subject string, r model.ReviewRange) string {
	return fmt.Sprintf("%s/%d:%d", subject, levelKey(r.Start), levelKey(r.End))
}

// LoadPage fetches status and content for every record on the current
// page and recomputes the selection state. Loads are deduplicated per
// subject and range, and a load that finishes after the engine moved
// to another subject or range is discarded rather than applied.
func (e *Engine) LoadPage(ctx context.Context) error {
	e.mu.Lock()
	key := loadKey(e.subject, e.sess.Range)
	if e.inflight[key] {
		e.mu.Unlock()
		return nil
	}
	e.inflight[key] = true

	ids := make([]model.RecordID, 0)
	seen := make(map[model.RecordID]bool)
	for _, g := range e.page {
		for _, id := range g.Files {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	subject := e.subject
	e.mu.Unlock()

	snaps, err := e.backend.BatchFileContent(ctx, subject, ids)

	e.mu.Lock()
	delete(e.inflight, key)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("load statuses: %w", err)
	}
	if loadKey(e.subject, e.sess.Range) != key {
		// Superseded: the engine moved on while this load was in flight
		e.mu.Unlock()
		return nil
	}
	e.snaps.SetAll(subject, snaps)
	e.sel = ComputeInitialSelections(e.page, snaps, e.sess.Overrides, e.headsUp)
	e.loaded = true
	e.mu.Unlock()

	e.notify(EventStatusesLoaded)
	return nil
}

// pageSnapshots collects cached snapshots for the current page
func (e *Engine) pageSnapshots() map[model.RecordID]*model.RecordSnapshot {
	snaps := make(map[model.RecordID]*model.RecordSnapshot)
	for _, g := range e.page {
		for _, id := range g.Files {
			if _, ok := snaps[id]; ok {
				continue
			}
			if snap, ok := e.snaps.Get(e.subject, id); ok {
				snaps[id] = snap
			}
		}
	}
	return snaps
}

// Page returns a rendering snapshot of the current page
func (e *Engine) Page() PageView {
	e.mu.Lock()
	defer e.mu.Unlock()

	selCopy := make(Selections, len(e.sel))
	for gid, m := range e.sel {
		mc := make(map[model.RecordID]bool, len(m))
		for id, v := range m {
			mc[id] = v
		}
		selCopy[gid] = mc
	}

	return PageView{
		Range:         e.sess.Range,
		Groups:        e.page,
		Selections:    selCopy,
		Conflicts:     DetectConflicts(e.page, e.sel),
		Loaded:        e.loaded,
		HasNext:       e.pag.HasNext(),
		HasPrevious:   e.pag.HasPrevious(),
		ExcludedByCap: e.pag.ExcludedByCap(),
	}
}

// Toggle applies a user decision for a record, propagating it to every
// group on the page that contains the record, and persists the session.
func (e *Engine) Toggle(id model.RecordID, value bool) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return fmt.Errorf("page not loaded")
	}
	ApplyUserToggle(e.sel, e.page, e.sess.Overrides, id, value)
	sess := e.sess
	e.mu.Unlock()

	if err := e.sessions.Save(sess); err != nil {
		return err
	}
	e.notify(EventSelectionChanged)
	return nil
}

// SetHeadsUp switches the heuristic mode and recomputes selections.
// User-modified records keep their values.
func (e *Engine) SetHeadsUp(v bool) {
	e.mu.Lock()
	e.headsUp = v
	if e.loaded {
		e.sel = ComputeInitialSelections(e.page, e.pageSnapshots(), e.sess.Overrides, e.headsUp)
	}
	e.mu.Unlock()
	e.notify(EventSelectionChanged)
}

// changePage applies a navigation mutation and resets page state
func (e *Engine) changePage(mutate func() bool) error {
	e.mu.Lock()
	if !mutate() {
		e.mu.Unlock()
		return nil
	}
	// Overrides are scoped to the page: leaving it discards them
	e.sess.Overrides = make(map[model.RecordID]bool)
	e.page = e.pag.PageGroups()
	e.sel = nil
	e.loaded = false
	sess := e.sess
	e.mu.Unlock()

	if err := e.sessions.Save(sess); err != nil {
		return err
	}
	e.notify(EventPageChanged)
	return nil
}

// NextPage advances to the next contiguous range
func (e *Engine) NextPage() error {
	return e.changePage(func() bool { return e.pag.Next() })
}

// PreviousPage restores the previous range from history
func (e *Engine) PreviousPage() error {
	return e.changePage(func() bool { return e.pag.Previous() })
}

// JumpToMax anchors a fresh page at the highest similarity level
func (e *Engine) JumpToMax() error {
	return e.changePage(func() bool { e.pag.JumpToMax(); return true })
}

// JumpToMin anchors a fresh page at the lowest similarity level
func (e *Engine) JumpToMin() error {
	return e.changePage(func() bool { e.pag.JumpToMin(); return true })
}

// SetTarget changes the page-size target; auto ranges recompute.
// Manual ranges stay put, but the target itself is still a session
// mutation and is persisted either way.
func (e *Engine) SetTarget(n int) error {
	e.mu.Lock()
	before := e.sess.Range
	prevTarget := e.sess.TargetGroupsPerPage
	e.pag.SetTarget(n)
	moved := e.sess.Range != before
	changed := moved || e.sess.TargetGroupsPerPage != prevTarget
	if moved {
		// Overrides are scoped to the page: leaving it discards them
		e.sess.Overrides = make(map[model.RecordID]bool)
		e.page = e.pag.PageGroups()
		e.sel = nil
		e.loaded = false
	}
	sess := e.sess
	e.mu.Unlock()

	if !changed {
		return nil
	}
	if err := e.sessions.Save(sess); err != nil {
		return err
	}
	if moved {
		e.notify(EventPageChanged)
	}
	return nil
}

// SetManualRange applies a user-chosen range
func (e *Engine) SetManualRange(r model.ReviewRange) error {
	return e.changePage(func() bool { e.pag.SetManualRange(r); return true })
}

// SubmitPage commits the current page. On full success the page is
// marked completed and the paginator advances to the next contiguous
// range; on failure already-committed groups stay committed and the
// page stays current for a retry.
func (e *Engine) SubmitPage(ctx context.Context) (*PageResult, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return nil, fmt.Errorf("page statuses not loaded")
	}
	if !IsPageReadyForSubmit(e.page, e.sel) {
		e.mu.Unlock()
		return nil, fmt.Errorf("page has undecided records")
	}
	subject := e.subject
	page := e.page
	sel := e.sel
	e.mu.Unlock()

	result, submitErr := e.coord.SubmitPage(ctx, subject, page, sel)

	e.mu.Lock()
	// The backend writes removal history and completion into the
	// session document during submission; pick those up before saving
	// the navigation state over them.
	if fresh, err := e.sessions.Load(subject); err == nil && fresh != nil {
		e.sess.RemovalHistory = fresh.RemovalHistory
		for _, gid := range fresh.CompletedGroups {
			e.sess.MarkCompleted(gid)
		}
	}
	for _, gid := range result.Submitted {
		e.sess.MarkCompleted(gid)
	}

	// Committed final states are authoritative now
	committed := make(map[model.RecordID]bool)
	for _, gid := range result.Submitted {
		if g, ok := e.idx.Group(gid); ok {
			for _, id := range g.Files {
				committed[id] = true
			}
		}
	}
	for id := range committed {
		snap, ok := e.snaps.Get(subject, id)
		if !ok {
			snap = &model.RecordSnapshot{ID: id, Ordinal: model.Ordinal(id)}
		}
		if result.Final[id] {
			snap.Status = model.StatusSaved
		} else {
			snap.Status = model.StatusRemoved
		}
		e.snaps.Set(subject, snap)
	}
	sess := e.sess
	e.mu.Unlock()

	if submitErr != nil {
		if err := e.sessions.Save(sess); err != nil {
			log.Printf("save session after failed submit: %v", err)
		}
		e.notify(EventStatusesLoaded)
		return result, submitErr
	}

	// Best-effort bookkeeping; a failure here never fails the submit
	if _, err := e.backend.TrackRemoved(ctx, subject); err != nil {
		log.Printf("track removed for %s: %v", subject, err)
	}

	e.mu.Lock()
	e.sess.Overrides = make(map[model.RecordID]bool)
	if e.pag.HasNext() {
		e.pag.Next()
	}
	e.page = e.pag.PageGroups()
	e.sel = nil
	e.loaded = false
	sess = e.sess
	e.mu.Unlock()

	if err := e.sessions.Save(sess); err != nil {
		return result, err
	}
	e.notify(EventPageSubmitted)
	e.notify(EventPageChanged)
	return result, nil
}

// Summary returns the subject's final statistics
func (e *Engine) Summary(ctx context.Context) (*model.Summary, error) {
	e.mu.Lock()
	subject := e.subject
	e.mu.Unlock()
	return e.backend.GetSummary(ctx, subject)
}

// Restart destroys the session and all review progress for the subject
// and re-anchors at the highest level.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	subject := e.subject
	e.mu.Unlock()

	if _, err := e.backend.ClearSession(ctx, subject); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	e.snaps.Clear(subject)
	return e.Start(ctx, subject)
}
