package pipeline

import (
	"errors"
	"fmt"

	"github.com/greenmatthew/velecs/engine/core"
)

// The fixed stage sequence. Registration order defines execution order,
// so these are registered exactly as listed.
const (
	StageInputSample      = "InputSample"
	StageSimulate         = "Simulate"
	StageCollisionResolve = "CollisionResolve"
	StagePreFrame         = "PreFrame"
	StageFrameRecord      = "FrameRecord"
	StagePostFrame        = "PostFrame"
	StageHousekeeping     = "Housekeeping"
	StageFinalTeardown    = "FinalTeardown"
)

// StageHandle identifies a registered stage. Its value is the stage's
// ordinal in the execution order.
type StageHandle int

// TickContext carries per-tick values into stage behaviors.
type TickContext struct {
	DeltaTime float64
}

// Behavior is a unit of per-tick work bound to a stage. A returned error
// is fatal for the remainder of that stage's behaviors on that tick.
type Behavior func(ctx *TickContext) error

type stage struct {
	name      string
	behaviors []Behavior
}

// Registry holds the ordered stage sequence and the behaviors attached
// to each stage. Stages are registered once during startup; after
// Finalize only AppendTerminal may add one more.
type Registry struct {
	stages    []*stage
	byName    map[string]StageHandle
	finalized bool
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]StageHandle),
	}
}

// NewDefaultRegistry returns a finalized registry carrying the engine's
// fixed stage sequence, InputSample through Housekeeping.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, name := range []string{
		StageInputSample,
		StageSimulate,
		StageCollisionResolve,
		StagePreFrame,
		StageFrameRecord,
		StagePostFrame,
		StageHousekeeping,
	} {
		if _, err := r.RegisterStage(name); err != nil {
			// Only reachable with a duplicate in the list above.
			core.LogFatal("default stage registration failed: %s", err)
		}
	}
	r.Finalize()
	return r
}

// RegisterStage appends a stage after the previously registered one.
func (r *Registry) RegisterStage(name string) (StageHandle, error) {
	if r.finalized {
		return 0, fmt.Errorf("register stage %q: %w", name, core.ErrRegistryFinalized)
	}
	if _, exists := r.byName[name]; exists {
		return 0, fmt.Errorf("register stage %q: %w", name, core.ErrDuplicateStage)
	}
	h := StageHandle(len(r.stages))
	r.stages = append(r.stages, &stage{name: name})
	r.byName[name] = h
	return h, nil
}

// Finalize closes the registry for ordinary registration.
func (r *Registry) Finalize() {
	r.finalized = true
}

// AppendTerminal adds one stage after every existing stage. It is the
// only registration permitted after Finalize, intended for a teardown
// stage appended once a shutdown request is observed.
func (r *Registry) AppendTerminal(name string) (StageHandle, error) {
	if _, exists := r.byName[name]; exists {
		return 0, fmt.Errorf("append terminal stage %q: %w", name, core.ErrDuplicateStage)
	}
	h := StageHandle(len(r.stages))
	r.stages = append(r.stages, &stage{name: name})
	r.byName[name] = h
	return h, nil
}

// Lookup returns the handle for a stage name.
func (r *Registry) Lookup(name string) (StageHandle, error) {
	h, exists := r.byName[name]
	if !exists {
		return 0, fmt.Errorf("stage %q: %w", name, core.ErrNotFound)
	}
	return h, nil
}

// Attach binds a behavior to a stage. Behaviors on the same stage run
// in attach order.
func (r *Registry) Attach(h StageHandle, b Behavior) error {
	if int(h) < 0 || int(h) >= len(r.stages) {
		return fmt.Errorf("attach to stage handle %d: %w", h, core.ErrNotFound)
	}
	r.stages[h].behaviors = append(r.stages[h].behaviors, b)
	return nil
}

// AttachByName is Attach with a stage name lookup.
func (r *Registry) AttachByName(name string, b Behavior) error {
	h, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return r.Attach(h, b)
}

// RunTick executes every stage once in ascending order. A behavior error
// aborts the remaining behaviors of its own stage only; later stages
// still run so teardown stages always get their turn. All stage errors
// are joined into the returned error.
func (r *Registry) RunTick(ctx *TickContext) error {
	var errs []error
	for _, s := range r.stages {
		for _, b := range s.behaviors {
			if err := b(ctx); err != nil {
				core.LogError("stage %s aborted: %s", s.name, err)
				errs = append(errs, fmt.Errorf("stage %s: %w", s.name, err))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// StageCount reports the number of registered stages.
func (r *Registry) StageCount() int {
	return len(r.stages)
}
