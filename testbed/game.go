package testbed

import (
	"github.com/google/uuid"

	"github.com/greenmatthew/velecs/engine"
	"github.com/greenmatthew/velecs/engine/assets"
	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
	"github.com/greenmatthew/velecs/engine/renderer"
	"github.com/greenmatthew/velecs/engine/scene"
)

const playerSpeed = 4.0

type TestGame struct {
	*engine.Game
	assets *assets.Manager
}

type gameState struct {
	playerID uuid.UUID
	width    uint32
	height   uint32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

// BindAssets hands the game the engine's asset manager for model loading.
func (g *TestGame) BindAssets(m *assets.Manager) {
	g.assets = m
}

func (g *TestGame) Initialize(world *scene.World) error {
	core.LogInfo("Initializing testbed scene...")
	state := g.State.(*gameState)

	defaultMaterial, err := world.Material(renderer.DefaultMaterialName)
	if err != nil {
		return err
	}

	// A second material sharing the default pipeline but tinted. Entities
	// alternate between the two to exercise material switching.
	tinted := &scene.Material{
		Name:           "tinted",
		Pipeline:       defaultMaterial.Pipeline,
		PipelineLayout: defaultMaterial.PipelineLayout,
		Colour:         math.Vec4{X: 0.9, Y: 0.4, Z: 0.2, W: 1.0},
	}
	world.RegisterMaterial(tinted)

	// Player triangle.
	player := world.CreateEntity("player")
	player.Transform = math.TransformFromPosition(math.Vec3{X: -2.0, Y: 0.0, Z: -6.0})
	player.Mesh = &scene.Mesh{
		Vertices: []math.Vertex{
			{Position: math.Vec3{X: 0.0, Y: 0.5, Z: 0.0}, Colour: math.Vec3{X: 1.0, Y: 0.0, Z: 0.0}},
			{Position: math.Vec3{X: -0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 0.0, Y: 1.0, Z: 0.0}},
			{Position: math.Vec3{X: 0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 0.0, Y: 0.0, Z: 1.0}},
		},
	}
	player.Material = defaultMaterial
	state.playerID = player.ID

	// Spinning square.
	square := world.CreateEntity("square")
	square.Transform = math.TransformFromPosition(math.Vec3{X: 2.0, Y: 0.0, Z: -6.0})
	square.Mesh = &scene.Mesh{
		Vertices: []math.Vertex{
			{Position: math.Vec3{X: -0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 1.0, Y: 1.0, Z: 0.0}},
			{Position: math.Vec3{X: 0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 0.0, Y: 1.0, Z: 1.0}},
			{Position: math.Vec3{X: 0.5, Y: 0.5, Z: 0.0}, Colour: math.Vec3{X: 1.0, Y: 0.0, Z: 1.0}},
			{Position: math.Vec3{X: -0.5, Y: 0.5, Z: 0.0}, Colour: math.Vec3{X: 1.0, Y: 1.0, Z: 1.0}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
	square.Material = tinted
	square.Angular = &scene.AngularKinematics{
		Axis:          math.NewVec3Up(),
		RadiansPerSec: 1.2,
	}

	// Optional glTF model, loaded when the asset exists.
	if g.assets != nil {
		vertices, indices, err := g.assets.LoadModel("monkey.gltf")
		if err != nil {
			core.LogWarn("no model loaded: %s", err)
		} else {
			model := world.CreateEntity("monkey")
			model.Transform = math.TransformFromPosition(math.Vec3{X: 0.0, Y: 1.5, Z: -8.0})
			model.Mesh = &scene.Mesh{Vertices: vertices, Indices: indices}
			model.Material = defaultMaterial
			model.Angular = &scene.AngularKinematics{
				Axis:          math.NewVec3Up(),
				RadiansPerSec: 0.5,
			}
		}
	}

	return nil
}

func (g *TestGame) Update(world *scene.World, deltaTime float64) error {
	state := g.State.(*gameState)

	player, err := world.Entity(state.playerID)
	if err != nil {
		return err
	}

	// WASD drives the player through its kinematics rather than teleporting
	// the transform, so motion integrates with delta time.
	velocity := math.Vec3{}
	if core.InputIsHeld(core.KEY_W) {
		velocity.Y += playerSpeed
	}
	if core.InputIsHeld(core.KEY_S) {
		velocity.Y -= playerSpeed
	}
	if core.InputIsHeld(core.KEY_A) {
		velocity.X -= playerSpeed
	}
	if core.InputIsHeld(core.KEY_D) {
		velocity.X += playerSpeed
	}
	if player.Linear == nil {
		player.Linear = &scene.LinearKinematics{}
	}
	player.Linear.Velocity = velocity

	// Mouse wheel dollies the camera along its forward axis.
	if wheel := core.InputGetMouseWheel(); wheel != 0 {
		camera, err := scene.MainCamera()
		if err == nil {
			forward := camera.Transform.Rotation.RotateVector(math.NewVec3Forward())
			camera.Transform.SetPosition(
				camera.Transform.Position.Add(forward.MulScalar(wheel * 0.5)))
		}
	}

	if core.InputIsPressed(core.KEY_F1) {
		fps, frameMS := core.MetricsFrame()
		core.LogInfo("%.1f fps, %.2f ms/frame", fps, frameMS)
	}

	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("Testbed shutting down.")
	return nil
}
