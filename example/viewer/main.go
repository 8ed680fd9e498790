package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/akmonengine/uc3d"
	"github.com/akmonengine/uc3d/actor"
	"github.com/akmonengine/uc3d/audio"
	"github.com/akmonengine/uc3d/config"
	"github.com/akmonengine/uc3d/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	configPath := flag.String("config", "", "engine config file (YAML)")
	scenePath := flag.String("scene", "", "scene config file (YAML); a spinning cube when empty")
	frames := flag.Int("frames", 120, "number of frames to run")
	dump := flag.Bool("dump", false, "dump the scene tree after the last frame")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		c, err := config.LoadEngine(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = c
	}

	device := render.NewRecordingDevice()
	backend := audio.NewSoftBackend()
	engine := uc3d.New(cfg, device, backend)
	defer engine.Close()

	var spin *actor.GameObject
	if *scenePath != "" {
		sc, err := config.LoadScene(*scenePath)
		if err != nil {
			log.Fatal(err)
		}
		if err := engine.Build(sc); err != nil {
			log.Fatal(err)
		}
	} else {
		spin = buildCube(engine)
	}

	if cfg.Assets.Watch {
		if err := engine.Watch(); err != nil {
			log.Fatal(err)
		}
	}

	shader := render.NewRecordingShader()
	pipeline := &render.RecordingPipeline{}
	step := 2 * math.Pi / float64(max(*frames, 1))

	for range *frames {
		if spin != nil {
			spin.Transform().RotateEuler(mgl64.Vec3{0, step, 0})
		}

		engine.Step()
		if err := engine.Render(shader, pipeline); err != nil {
			log.Printf("frame %d: %v", engine.Frame(), err)
		}
		backend.Advance(735)
	}

	draws := 0
	for _, m := range device.Meshes {
		draws += len(m.Draws)
	}
	fmt.Printf("%d frames, %d draw calls, %d entities\n", engine.Frame(), draws, len(engine.Entities()))

	if *dump {
		engine.Dump(os.Stdout)
	}
}

// buildCube adds a unit cube orbited by the camera and returns the pivot to spin.
func buildCube(engine *uc3d.Engine) *actor.GameObject {
	cube := render.NewEntity(engine.Scene, actor.NewTransform())
	cube.SetName("cube")

	mesh := render.NewMesh(nil, nil, nil)
	corners := []mgl32.Vec3{
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	}
	for i, c := range corners {
		mesh.AddVertexWithUV(c, mgl32.Vec2{float32(i & 1), float32(i >> 1 & 1)})
	}
	for _, face := range [][4]uint32{
		{0, 1, 2, 3}, {5, 4, 7, 6}, {4, 0, 3, 7},
		{1, 5, 6, 2}, {3, 2, 6, 7}, {4, 5, 1, 0},
	} {
		mesh.AddQuad(face[0], face[1], face[2], face[3])
	}
	if err := mesh.GenerateBuffers(engine.Device); err != nil {
		log.Fatal(err)
	}
	cube.AddSurface(render.NewSurface(mesh, nil))

	pivot := engine.Scene.NewObject(actor.NewTransform(), nil)
	pivot.SetName("pivot")

	camera := engine.NewCamera(actor.NewTransformAt(mgl64.Vec3{0, 1, 4}))
	camera.SetName("camera")
	camera.SetParent(pivot, false)
	engine.Camera = camera

	return pivot
}
