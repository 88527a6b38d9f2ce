// Package playback drives a learner through a presentation: navigation,
// autoplay, resource interruptions and progress persistence.
package playback

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/internal/service/presentation/authoring"
	"LiqLearns/pkg/logger"

	"github.com/google/uuid"
)

const (
	DefaultFlushTimeout = 5 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

type State string

const (
	StateLoading        State = "loading"
	StateReady          State = "ready"
	StateIdle           State = "idle"
	StateAutoPlaying    State = "autoplaying"
	StateResourceActive State = "resource_active"
	StateClosed         State = "closed"
)

type ProgressStore interface {
	Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error)
	UpdateProgress(ctx context.Context, userID, presentationID uuid.UUID, u models.ProgressUpdate) error
}

// Callbacks run after the engine lock is released, so they may call back
// into the engine.
type Callbacks struct {
	// OnComplete fires when Next is called on the last slide.
	OnComplete func(Snapshot)
	// OnReward fires the first time a resource is completed.
	OnReward func(resourceID string)
	// OnTick fires after every autoplay step.
	OnTick func(Snapshot)
}

type Config struct {
	AutoplayInterval time.Duration
	FlushTimeout     time.Duration
	WriteTimeout     time.Duration
	Callbacks        Callbacks

	Now       func() time.Time
	NewTicker func(time.Duration) Ticker
}

// Snapshot is a read-only view of an engine.
type Snapshot struct {
	PresentationID     uuid.UUID              `json:"presentation_id"`
	State              State                  `json:"state"`
	CurrentSlide       int                    `json:"current_slide"`
	TotalSlides        int                    `json:"total_slides"`
	Lesson             int                    `json:"lesson"`
	SlidesViewed       []int                  `json:"slides_viewed"`
	ResourcesCompleted []string               `json:"resources_completed"`
	Completed          bool                   `json:"completed"`
	ActiveResource     *models.SlideResource  `json:"active_resource,omitempty"`
	Resources          []models.SlideResource `json:"resources"`
	LastQuiz           *QuizResult            `json:"last_quiz,omitempty"`
}

type Engine struct {
	log          logger.Log
	presentation *models.Presentation
	userID       uuid.UUID
	store        ProgressStore
	scheduler    *authoring.ResourceScheduler
	segmenter    *authoring.LessonSegmenter
	cfg          Config

	mu         sync.Mutex
	events     []func()
	state      State
	current    int
	viewed     map[int]struct{}
	completed  map[string]struct{}
	active     *models.SlideResource
	lastQuiz   *QuizResult
	slideStart time.Time
	carry      time.Duration
	autoplay   *autoplayToken
	flusher    *flusher
}

func NewEngine(log logger.Log, p *models.Presentation, userID uuid.UUID, store ProgressStore, cfg Config) (*Engine, error) {
	if p.TotalSlides < 1 {
		return nil, fmt.Errorf("%w: presentation has no slides", app_errors.ErrSlideNotFound)
	}
	scheduler, err := authoring.NewResourceScheduler(p.TotalSlides, p.Resources)
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	segmenter, err := authoring.NewLessonSegmenter(p.TotalSlides, p.LessonBreaks)
	if err != nil {
		return nil, fmt.Errorf("lesson breaks: %w", err)
	}

	if cfg.AutoplayInterval <= 0 {
		cfg.AutoplayInterval = DefaultAutoplayInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = newRealTicker
	}

	return &Engine{
		log:          log.With("presentation_id", p.ID, "user_id", userID),
		presentation: p,
		userID:       userID,
		store:        store,
		scheduler:    scheduler,
		segmenter:    segmenter,
		cfg:          cfg,
		state:        StateLoading,
		viewed:       make(map[int]struct{}),
		completed:    make(map[string]struct{}),
	}, nil
}

// unlock releases the engine and then runs the callbacks queued while it was
// held.
func (e *Engine) unlock() {
	events := e.events
	e.events = nil
	e.mu.Unlock()
	for _, fn := range events {
		fn()
	}
}

func (e *Engine) emit(fn func()) {
	if fn != nil {
		e.events = append(e.events, fn)
	}
}

// Load restores persisted progress and makes the engine Ready. A store
// failure is logged and playback starts from the first slide.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.unlock()
	if e.state != StateLoading {
		return nil
	}

	progress, err := e.store.Progress(ctx, e.userID, e.presentation.ID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.log.ErrorErr("failed to load progress, starting fresh", err)
		progress = models.PresentationProgress{}
	}

	e.flusher = newFlusher(e.log, e.cfg.WriteTimeout, func(ctx context.Context, u models.ProgressUpdate) error {
		return e.store.UpdateProgress(ctx, e.userID, e.presentation.ID, u)
	})

	e.current = e.clamp(progress.CurrentSlide)
	fresh := true
	for _, s := range progress.SlidesViewed {
		if s >= 1 && s <= e.presentation.TotalSlides {
			e.viewed[s] = struct{}{}
			fresh = false
		}
	}
	for _, id := range progress.ResourcesCompleted {
		e.completed[id] = struct{}{}
	}
	e.state = StateReady
	e.slideStart = e.cfg.Now()

	e.viewed[e.current] = struct{}{}
	cur := e.current
	e.flusher.enqueue(models.ProgressUpdate{CurrentSlide: &cur, SlidesViewed: []int{cur}})

	// resources placed before the first slide greet a learner starting out
	if fresh && e.current == 1 {
		if before := e.scheduler.Query(0); len(before) > 0 {
			e.activate(before[0])
		}
	}
	return nil
}

func (e *Engine) clamp(slide int) int {
	if slide < 1 {
		return 1
	}
	if slide > e.presentation.TotalSlides {
		return e.presentation.TotalSlides
	}
	return slide
}

func (e *Engine) navigable() error {
	switch e.state {
	case StateLoading:
		return app_errors.ErrEngineNotReady
	case StateClosed:
		return app_errors.ErrEngineClosed
	case StateResourceActive:
		return app_errors.ErrResourceActive
	}
	return nil
}

func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.unlock()
	if err := e.navigable(); err != nil {
		return err
	}
	e.next()
	return nil
}

// next advances one slide, or signals completion on the last one, then
// surfaces the first resource anchored at the departed slide.
func (e *Engine) next() {
	departed := e.current
	if departed == e.presentation.TotalSlides {
		if _, seen := e.viewed[departed]; !seen {
			e.viewed[departed] = struct{}{}
			e.flusher.enqueue(models.ProgressUpdate{SlidesViewed: []int{departed}})
		}
		if e.state == StateReady {
			e.state = StateIdle
		}
		if cb := e.cfg.Callbacks.OnComplete; cb != nil {
			snap := e.snapshot()
			e.emit(func() { cb(snap) })
		}
	} else {
		e.moveTo(departed + 1)
	}

	if e.active == nil {
		if found := e.scheduler.Query(departed); len(found) > 0 {
			e.activate(found[0])
		}
	}
}

func (e *Engine) Previous() error {
	e.mu.Lock()
	defer e.unlock()
	if err := e.navigable(); err != nil {
		return err
	}
	if e.current > 1 {
		e.moveTo(e.current - 1)
	}
	return nil
}

// GoTo jumps to slide without triggering resources.
func (e *Engine) GoTo(slide int) error {
	e.mu.Lock()
	defer e.unlock()
	if err := e.navigable(); err != nil {
		return err
	}
	if target := e.clamp(slide); target != e.current {
		e.moveTo(target)
	}
	return nil
}

func (e *Engine) moveTo(slide int) {
	spent := e.takeElapsed()
	e.current = slide
	e.viewed[slide] = struct{}{}
	cur := slide
	e.flusher.enqueue(models.ProgressUpdate{CurrentSlide: &cur, SlidesViewed: []int{slide}, TimeSpent: spent})
	if e.state == StateReady {
		e.state = StateIdle
	}
	// Autoplay ends on the last slide however it was reached.
	if slide == e.presentation.TotalSlides {
		e.stopAutoplay()
	}
}

// takeElapsed returns whole seconds spent since the last call and keeps the
// remainder for the next one.
func (e *Engine) takeElapsed() int {
	now := e.cfg.Now()
	if d := now.Sub(e.slideStart); d > 0 {
		e.carry += d
	}
	e.slideStart = now
	secs := int(e.carry / time.Second)
	e.carry -= time.Duration(secs) * time.Second
	return secs
}

// ToggleAutoplay starts or stops autoplay and reports whether it is now
// running. Starting on the last slide does nothing.
func (e *Engine) ToggleAutoplay() (bool, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.state == StateAutoPlaying {
		e.stopAutoplay()
		return false, nil
	}
	if err := e.navigable(); err != nil {
		return false, err
	}
	if e.current == e.presentation.TotalSlides {
		return false, nil
	}
	e.autoplay = startAutoplay(e.cfg.NewTicker, e.cfg.AutoplayInterval, e.tick)
	e.state = StateAutoPlaying
	return true, nil
}

func (e *Engine) tick(token *autoplayToken) {
	e.mu.Lock()
	defer e.unlock()
	if e.autoplay != token || e.state != StateAutoPlaying {
		return
	}
	e.next()
	if cb := e.cfg.Callbacks.OnTick; cb != nil {
		snap := e.snapshot()
		e.emit(func() { cb(snap) })
	}
}

// stopAutoplay cancels the running token. The state only drops back to Idle
// when autoplay was what the engine was doing.
func (e *Engine) stopAutoplay() {
	if e.autoplay == nil {
		return
	}
	e.autoplay.cancel()
	e.autoplay = nil
	if e.state == StateAutoPlaying {
		e.state = StateIdle
	}
}

func (e *Engine) activate(r models.SlideResource) {
	e.stopAutoplay()
	e.active = &r
	e.state = StateResourceActive
}

// OpenResource activates a resource listed for the current slide.
func (e *Engine) OpenResource(id string) error {
	e.mu.Lock()
	defer e.unlock()
	if err := e.navigable(); err != nil {
		return err
	}
	r, ok := e.scheduler.Get(id)
	if !ok || !r.Active(e.current) {
		return app_errors.ErrResourceNotFound
	}
	e.activate(r)
	return nil
}

func (e *Engine) DismissResource() error {
	e.mu.Lock()
	defer e.unlock()
	if e.state != StateResourceActive {
		return app_errors.ErrNoActiveResource
	}
	e.active = nil
	e.state = StateIdle
	return nil
}

func (e *Engine) CompleteResource(id string) error {
	e.mu.Lock()
	defer e.unlock()
	if e.state != StateResourceActive || e.active.ID != id {
		return app_errors.ErrNoActiveResource
	}
	e.complete(e.active.ID)
	return nil
}

// SubmitQuiz grades the active quiz and completes it.
func (e *Engine) SubmitQuiz(answers []models.QuizAnswer) (QuizResult, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.state != StateResourceActive {
		return QuizResult{}, app_errors.ErrNoActiveResource
	}
	if e.active.Type != models.ResourceTypeQuiz || e.active.Content.Quiz == nil {
		return QuizResult{}, app_errors.ErrNotQuiz
	}
	res, err := GradeQuiz(e.active.Content.Quiz, answers)
	if err != nil {
		return QuizResult{}, err
	}
	res.ResourceID = e.active.ID
	e.lastQuiz = &res
	e.log.Info("quiz submitted", "resource_id", res.ResourceID, "score", res.Score)
	e.complete(e.active.ID)
	return res, nil
}

// complete records the resource every time; the reward only fires for the
// first completion.
func (e *Engine) complete(id string) {
	_, done := e.completed[id]
	e.completed[id] = struct{}{}
	e.flusher.enqueue(models.ProgressUpdate{ResourcesCompleted: []string{id}})
	if !done {
		if cb := e.cfg.Callbacks.OnReward; cb != nil {
			e.emit(func() { cb(id) })
		}
	}
	e.active = nil
	e.state = StateIdle
}

// Close stops autoplay, writes the final progress and waits for pending
// writes up to the flush timeout.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.state == StateClosed {
		e.unlock()
		return nil
	}
	e.stopAutoplay()
	loaded := e.state != StateLoading
	e.state = StateClosed
	var f *flusher
	if loaded {
		cur := e.current
		completed := len(e.viewed) == e.presentation.TotalSlides
		e.flusher.enqueue(models.ProgressUpdate{CurrentSlide: &cur, TimeSpent: e.takeElapsed(), Completed: &completed})
		f = e.flusher
	}
	e.unlock()

	if f == nil {
		return nil
	}
	if err := f.close(e.cfg.FlushTimeout); err != nil {
		e.log.ErrorErr("playback closed before progress was saved", err)
		return err
	}
	return nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	viewed := make([]int, 0, len(e.viewed))
	for s := range e.viewed {
		viewed = append(viewed, s)
	}
	sort.Ints(viewed)
	completed := make([]string, 0, len(e.completed))
	for id := range e.completed {
		completed = append(completed, id)
	}
	sort.Strings(completed)

	snap := Snapshot{
		PresentationID:     e.presentation.ID,
		State:              e.state,
		CurrentSlide:       e.current,
		TotalSlides:        e.presentation.TotalSlides,
		SlidesViewed:       viewed,
		ResourcesCompleted: completed,
		Completed:          len(viewed) == e.presentation.TotalSlides,
		LastQuiz:           e.lastQuiz,
	}
	if e.current > 0 {
		snap.Lesson = e.segmenter.LessonAt(e.current)
		snap.Resources = e.scheduler.Query(e.current)
	}
	if e.active != nil {
		r := *e.active
		snap.ActiveResource = &r
	}
	return snap
}
