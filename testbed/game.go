package testbed

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/vista/engine"
	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/scene"
)

type TestGame struct {
	*engine.Game

	// Screenshot is bound by the host to the engine.
	Screenshot func(path string) error
}

type gameState struct {
	worldCamera *scene.Camera
	cubes       []*spinner
	sun         *scene.Light
	lamp        *scene.Light
	sphere      *scene.Geometry

	width       uint32
	height      uint32
	elapsed     float64
	lastMessage float64
}

// spinner turns a group around Y at a fixed rate through its OnUpdate hook.
type spinner struct {
	group     *scene.NodeGroup
	transform math.Transform
	rate      float32
}

func (s *spinner) update(_ scene.Node, dt float64) {
	s.transform.Rotate(math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), s.rate*float32(dt), false))
	s.group.SetTransform(s.transform.Local())
}

var tempMoveSpeed float32 = 10.0

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil || g.Scene == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)

	state.worldCamera = scene.NewPerspectiveCamera("world_camera", 45, 0.1, 1000)
	state.worldCamera.SetPosition(math.NewVec3(0, 6, 30))
	state.worldCamera.Pitch(-0.15)
	g.Scene.AddChild(state.worldCamera)

	state.sun = scene.NewDirectionalLight("sun", math.NewVec3(1, 0.95, 0.9), 0.8)
	state.sun.SetTransform(math.NewMat4EulerX(-0.8))
	g.Scene.AddChild(state.sun)

	state.lamp = scene.NewPointLight("lamp", math.NewVec3(1, 0.5, 0.2), 2, 25)
	state.lamp.SetTransform(math.NewMat4Translation(math.NewVec3(-6, 4, 4)))
	g.Scene.AddChild(state.lamp)

	spot := scene.NewSpotLight("spot", math.NewVec3(0.3, 0.6, 1), 3, 40, 30)
	spot.SetTransform(math.NewMat4EulerX(-math.K_HALF_PI).Mul(math.NewMat4Translation(math.NewVec3(0, 15, 0))))
	g.Scene.AddChild(spot)

	floor := scene.NewShape("floor", g.Library, assets.ShapeDescriptor{
		Kind:     assets.ShapePlane,
		Size:     math.NewVec3(60, 60, 0),
		Segments: 4,
		Tile:     math.NewVec2(8, 8),
	}, nil)
	floor.SetTransform(math.NewMat4EulerX(-math.K_HALF_PI).Mul(math.NewMat4Translation(math.NewVec3(0, -6, 0))))
	g.Scene.AddChild(floor)

	// Three nested cubes, each one orbiting its parent.
	var parent *scene.NodeGroup
	for i, cfg := range []struct {
		size     float32
		position math.Vec3
		rate     float32
	}{
		{size: 10, position: math.NewVec3Zero(), rate: 0.5},
		{size: 5, position: math.NewVec3(10, 0, 1), rate: 0.5},
		{size: 2, position: math.NewVec3(5, 0, 1), rate: 0.5},
	} {
		group := scene.NewNodeGroup(fmt.Sprintf("cube_%d", i+1))
		s := &spinner{group: group, transform: math.TransformFromPosition(cfg.position), rate: cfg.rate}
		group.SetTransform(s.transform.Local())
		group.OnUpdate = s.update
		group.AddChild(scene.NewShape(fmt.Sprintf("cube_%d_mesh", i+1), g.Library, assets.ShapeDescriptor{
			Kind: assets.ShapeBox,
			Size: math.NewVec3(cfg.size, cfg.size, cfg.size),
			Tile: math.NewVec2One(),
		}, nil))
		if parent == nil {
			g.Scene.AddChild(group)
		} else {
			parent.AddChild(group)
		}
		parent = group
		state.cubes = append(state.cubes, s)
	}

	state.sphere = scene.NewShape("sphere", g.Library, assets.ShapeDescriptor{
		Kind:     assets.ShapeSphere,
		Size:     math.NewVec3(3, 3, 3),
		Segments: 24,
		Tile:     math.NewVec2One(),
	}, nil)
	state.sphere.SetTransform(math.NewMat4Translation(math.NewVec3(-12, 0, 0)))
	state.sphere.OnUpdate = func(n scene.Node, dt float64) {
		state.elapsed += dt
		y := math32.Sin(float32(state.elapsed)) * 2
		n.Spatial().SetTransform(math.NewMat4Translation(math.NewVec3(-12, y, 0)))
	}
	g.Scene.AddChild(state.sphere)

	// The material lands on the render thread through the task queue.
	if err := g.SystemManager.Jobs().LoadMaterial(g.SystemManager.Assets(), "materials/stone.toml",
		func(m *assets.Material) {
			state.sphere.SetMaterial(m)
			core.LogInfo("material '%s' applied to the sphere", m.Name())
		},
		func(err error) {
			core.LogWarn("keeping the default material: %s", err)
		},
	); err != nil {
		return err
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	in := g.Input
	if in == nil {
		return nil
	}
	cam := state.worldCamera
	step := tempMoveSpeed * float32(deltaTime)

	// HACK: temp hack to move camera around.
	if in.IsKeyDown(core.KeyA) || in.IsKeyDown(core.KeyLeft) {
		cam.Yaw(float32(1.0 * deltaTime))
	}
	if in.IsKeyDown(core.KeyD) || in.IsKeyDown(core.KeyRight) {
		cam.Yaw(float32(-1.0 * deltaTime))
	}
	if in.IsKeyDown(core.KeyUp) {
		cam.Pitch(float32(1.0 * deltaTime))
	}
	if in.IsKeyDown(core.KeyDown) {
		cam.Pitch(float32(-1.0 * deltaTime))
	}
	if in.IsKeyDown(core.KeyW) {
		cam.MoveForward(step)
	}
	if in.IsKeyDown(core.KeyS) {
		cam.MoveBackward(step)
	}
	if in.IsKeyDown(core.KeyQ) {
		cam.MoveLeft(step)
	}
	if in.IsKeyDown(core.KeyE) {
		cam.MoveRight(step)
	}

	if in.KeyPressed(core.KeyF12) && g.Screenshot != nil {
		path := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
		if err := g.Screenshot(path); err != nil {
			core.LogError(err.Error())
		}
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)
	if state.elapsed-state.lastMessage < 5 {
		return nil
	}
	state.lastMessage = state.elapsed
	pos := state.worldCamera.Position()
	rot := state.worldCamera.EulerRotation()
	core.LogDebug("Pos=[%7.3f %7.3f %7.3f] Rot=[%7.3f, %7.3f, %7.3f]",
		pos.X, pos.Y, pos.Z,
		math.RadToDeg(rot.X), math.RadToDeg(rot.Y), math.RadToDeg(rot.Z),
	)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	core.LogInfo("testbed leaving %d cubes and %d cached shapes behind", len(state.cubes), g.Library.Len())
	return nil
}
