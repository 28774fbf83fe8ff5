package engine

import (
	"github.com/greenmatthew/velecs/engine/scene"
)

// Game carries the application supplied hooks. The engine calls them from
// fixed points in the tick; all hooks are optional except FnInitialize.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(world *scene.World) error
type Update func(world *scene.World, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
