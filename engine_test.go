package uc3d

import (
	"bytes"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/uc3d/actor"
	"github.com/akmonengine/uc3d/asset"
	"github.com/akmonengine/uc3d/audio"
	"github.com/akmonengine/uc3d/config"
	"github.com/akmonengine/uc3d/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const demoScene = `
name: demo
nodes:
  - name: rig
    transform:
      position: [0, 1, 0]
  - name: camera
    kind: camera
    parent: rig
    transform:
      position: [0, 0, 5]
  - name: crate
    kind: entity
    transform:
      position: [3, 0, 0]
      scale: [2]
    surfaces:
      - mesh: crate.ucmesh
        texture: crate.uctex
        culling: none
  - name: radio
    kind: audio_source
    parent: crate
    preserve_global: true
    clip: music.ucsound
    looping: true
    play: true
  - name: ears
    kind: audio_listener
    parent: camera
`

func quadMesh() asset.MeshData {
	m := asset.MeshData{
		Vertices: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		UVs:      []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	m.AddQuad(0, 1, 2, 3)

	return m
}

func triangleMesh() asset.MeshData {
	return asset.MeshData{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		UVs:      []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:  []uint32{0, 1, 2},
	}
}

// writeAssets creates crate.ucmesh, crate.uctex and music.ucsound in a new directory.
func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := asset.SaveMesh(filepath.Join(dir, "crate.ucmesh"), quadMesh()); err != nil {
		t.Fatal(err)
	}
	tex := asset.TextureData{
		Format: asset.TextureRGBA8888,
		Width:  2,
		Height: 1,
		Pix:    []byte{255, 0, 0, 255, 0, 255, 0, 255},
	}
	if err := asset.SaveTexture(filepath.Join(dir, "crate.uctex"), tex); err != nil {
		t.Fatal(err)
	}
	sound := asset.SoundData{Format: asset.SoundMono8, Frequency: 100, PCM: make([]byte, 100)}
	if err := asset.SaveSound(filepath.Join(dir, "music.ucsound"), sound); err != nil {
		t.Fatal(err)
	}

	return dir
}

func newTestEngine(t *testing.T, dir string) (*Engine, *render.RecordingDevice, *audio.SoftBackend) {
	t.Helper()

	cfg := config.Defaults()
	cfg.Assets.Dir = dir
	device := render.NewRecordingDevice()
	backend := audio.NewSoftBackend()

	e := New(cfg, device, backend)
	e.Logger = log.New(io.Discard, "", 0)
	t.Cleanup(func() { _ = e.Close() })

	return e, device, backend
}

func buildDemo(t *testing.T, e *Engine) {
	t.Helper()

	sc, err := config.ParseScene([]byte(demoScene))
	if err != nil {
		t.Fatalf("ParseScene() error = %v", err)
	}
	if err := e.Build(sc); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}

func vec3Near(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() <= 1e-9
}

// =============================================================================
// Build Tests
// =============================================================================

func TestEngineBuild_FromYAML(t *testing.T) {
	e, _, backend := newTestEngine(t, writeAssets(t))
	buildDemo(t, e)

	if e.Scene.Len() != 5 {
		t.Fatalf("Scene.Len() = %d, want 5", e.Scene.Len())
	}
	if e.Camera == nil || e.Camera.Name() != "camera" {
		t.Fatalf("Camera = %v, want the declared camera", e.Camera)
	}

	camera := e.Camera.GetGlobalTransform()
	if got := camera.GetPosition(); !vec3Near(got, mgl64.Vec3{0, 1, 5}) {
		t.Errorf("camera global position = %v, want (0,1,5)", got)
	}

	radio := e.Scene.FindByName("radio")
	if radio == nil || radio.Parent().Name() != "crate" {
		t.Fatalf("radio = %v, want a child of crate", radio)
	}
	radioGlobal := radio.GetGlobalTransform()
	if got := radioGlobal.GetPosition(); !vec3Near(got, mgl64.Vec3{0, 0, 0}) {
		t.Errorf("radio global position = %v, want the origin it was declared at", got)
	}

	source := radio.Behavior().(*audio.Source)
	state, ok := backend.Source(source.ID())
	if !ok {
		t.Fatal("radio source not in the backend")
	}
	if state.State != audio.StatePlaying || !state.Looping {
		t.Errorf("radio state = %v looping %v, want playing and looping", state.State, state.Looping)
	}
	if !vec3Near(state.Position, mgl64.Vec3{0, 0, 0}) {
		t.Errorf("radio backend position = %v", state.Position)
	}

	position, _, _ := backend.Listener()
	if !vec3Near(position, mgl64.Vec3{0, 1, 5}) {
		t.Errorf("listener position = %v, want the camera position", position)
	}
}

func TestEngineBuild_ReportsCreatedObjects(t *testing.T) {
	e, _, _ := newTestEngine(t, writeAssets(t))

	created := 0
	e.Scene.Events.Subscribe(actor.OBJECT_CREATED, func(actor.Event) { created++ })
	buildDemo(t, e)

	if created != 0 {
		t.Errorf("created = %d before Step, want events buffered", created)
	}
	e.Step()
	if created != 5 {
		t.Errorf("created = %d after Step, want 5", created)
	}
	if e.Frame() != 1 {
		t.Errorf("Frame() = %d, want 1", e.Frame())
	}
}

func TestEngineBuild_DefaultCamera(t *testing.T) {
	e, _, _ := newTestEngine(t, t.TempDir())

	if err := e.Build(config.SceneConfig{Name: "empty", Nodes: []config.NodeConfig{{Name: "root"}}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if e.Camera == nil || e.Camera.Name() != DefaultCameraName {
		t.Fatalf("Camera = %v, want the default camera", e.Camera)
	}
	if math.Abs(e.Camera.FOV-math.Pi/3) > 1e-12 {
		t.Errorf("Camera.FOV = %v, want the configured 60 degrees", e.Camera.FOV)
	}
	if e.Scene.FindByName("root").Kind() != actor.KindUnknown {
		t.Errorf("empty node kind = %v", e.Scene.FindByName("root").Kind())
	}
}

func TestEngineBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		scene   string
		noAudio bool
		want    string
	}{
		{"missing mesh", "nodes: [{name: a, kind: entity, surfaces: [{mesh: none.ucmesh}]}]", false, `node "a"`},
		{"bad culling", "nodes: [{name: a, kind: entity, surfaces: [{culling: sideways}]}]", false, "surface 0"},
		{"no audio", "nodes: [{name: a, kind: audio_source}]", true, "no audio context"},
		{"no audio listener", "nodes: [{name: a, kind: audio_listener}]", true, "no audio context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeAssets(t)
			cfg := config.Defaults()
			cfg.Assets.Dir = dir

			var backend audio.Backend = audio.NewSoftBackend()
			if tt.noAudio {
				backend = nil
			}
			e := New(cfg, render.NewRecordingDevice(), backend)
			e.Logger = log.New(io.Discard, "", 0)
			defer e.Close()

			err := e.Build(mustParse(t, tt.scene))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func mustParse(t *testing.T, data string) config.SceneConfig {
	t.Helper()

	sc, err := config.ParseScene([]byte(data))
	if err != nil {
		t.Fatalf("ParseScene() error = %v", err)
	}

	return sc
}

func TestEngineBuild_SecondListenerFails(t *testing.T) {
	e, _, _ := newTestEngine(t, t.TempDir())

	if err := e.Build(mustParse(t, "nodes: [{name: a, kind: audio_listener}]")); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	err := e.Build(mustParse(t, "nodes: [{name: b, kind: audio_listener}]"))
	if !errors.Is(err, audio.ErrListenerExists) {
		t.Errorf("second Build() error = %v, want ErrListenerExists", err)
	}
}

// =============================================================================
// Render Tests
// =============================================================================

func TestEngineRender(t *testing.T) {
	e, device, _ := newTestEngine(t, writeAssets(t))
	buildDemo(t, e)

	shader := render.NewRecordingShader()
	pipeline := &render.RecordingPipeline{}
	if err := e.Render(shader, pipeline); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(device.Meshes) != 1 || len(device.Meshes[0].Draws) != 1 || device.Meshes[0].Draws[0] != 6 {
		t.Fatalf("mesh draws = %+v, want one draw of 6 indices", device.Meshes)
	}
	if len(device.Textures) != 1 || device.Textures[0].Binds != 1 {
		t.Errorf("texture binds = %+v, want one", device.Textures)
	}
	if len(pipeline.Culling) != 1 || pipeline.Culling[0] != render.NoCulling {
		t.Errorf("culling = %v, want [none]", pipeline.Culling)
	}

	model, _ := shader.Last("model")
	want := mgl64.Translate3D(3, 0, 0).Mul4(mgl64.Scale3D(2, 2, 2))
	for i, v := range model.(mgl32.Mat4) {
		if d := float64(v) - want[i]; d > 1e-6 || d < -1e-6 {
			t.Fatalf("model = %v, want %v", model, want)
		}
	}

	position, _ := shader.Last("cameraPosition")
	if position != (mgl32.Vec3{0, 1, 5}) {
		t.Errorf("cameraPosition = %v, want (0,1,5)", position)
	}
}

func TestEngineRender_CameraDestroyed(t *testing.T) {
	e, _, _ := newTestEngine(t, writeAssets(t))
	buildDemo(t, e)

	e.Camera.Destroy()
	if e.Camera == nil {
		t.Fatal("camera cleared before the destroy event was flushed")
	}
	e.Step()

	if e.Camera != nil {
		t.Errorf("Camera = %v after Step, want nil", e.Camera)
	}
	if err := e.Render(render.NewRecordingShader(), &render.RecordingPipeline{}); err != ErrNoCamera {
		t.Errorf("Render() error = %v, want ErrNoCamera", err)
	}
}

// =============================================================================
// Asset Tests
// =============================================================================

func TestEnginePreload(t *testing.T) {
	dir := writeAssets(t)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, device, backend := newTestEngine(t, dir)
	e.Config.Assets.Workers = 4

	err := e.Preload("crate.ucmesh", "crate.uctex", "music.ucsound", "crate.ucmesh", "notes.txt")
	if !errors.Is(err, asset.ErrUnsupportedType) {
		t.Errorf("Preload() error = %v, want ErrUnsupportedType for notes.txt", err)
	}

	if len(device.Meshes) != 1 || len(device.Textures) != 1 {
		t.Errorf("uploads = %d meshes %d textures, want 1 each", len(device.Meshes), len(device.Textures))
	}
	if _, buffers, _ := backend.Counts(); buffers != 1 {
		t.Errorf("audio buffers = %d, want 1", buffers)
	}

	first, err := e.Mesh("crate.ucmesh")
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	again, _ := e.Mesh(filepath.Join(dir, "crate.ucmesh"))
	if first != again || len(device.Meshes) != 1 {
		t.Error("cached mesh was loaded again")
	}
	if first.GetIndicesCount() != 6 {
		t.Errorf("GetIndicesCount() = %d, want 6", first.GetIndicesCount())
	}
}

func TestEngineReload(t *testing.T) {
	dir := writeAssets(t)
	e, device, _ := newTestEngine(t, dir)

	mesh, err := e.Mesh("crate.ucmesh")
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if err := asset.SaveMesh(filepath.Join(dir, "crate.ucmesh"), triangleMesh()); err != nil {
		t.Fatal(err)
	}

	reloaded, err := e.Reload("crate.ucmesh")
	if !reloaded || err != nil {
		t.Fatalf("Reload() = %v, %v", reloaded, err)
	}
	if mesh.GetIndicesCount() != 3 {
		t.Errorf("GetIndicesCount() = %d after reload, want 3", mesh.GetIndicesCount())
	}
	if len(device.Meshes) != 2 || !device.Meshes[0].Deleted {
		t.Errorf("reload did not replace the buffers")
	}

	if err := os.WriteFile(filepath.Join(dir, "crate.ucmesh"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Reload("crate.ucmesh"); !errors.Is(err, asset.ErrBadSignature) {
		t.Errorf("Reload(garbage) error = %v, want ErrBadSignature", err)
	}
	if mesh.GetIndicesCount() != 3 {
		t.Error("failed reload changed the mesh")
	}

	if reloaded, err := e.Reload("other.ucmesh"); reloaded || err != nil {
		t.Errorf("Reload(uncached) = %v, %v, want false, nil", reloaded, err)
	}
}

func TestEngineReload_ClipRewindsSources(t *testing.T) {
	dir := writeAssets(t)
	e, _, backend := newTestEngine(t, dir)
	buildDemo(t, e)

	source := e.Scene.FindByName("radio").Behavior().(*audio.Source)
	backend.Advance(10)

	louder := asset.SoundData{Format: asset.SoundMono16, Frequency: 200, PCM: make([]byte, 400)}
	if err := asset.SaveSound(filepath.Join(dir, "music.ucsound"), louder); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Reload("music.ucsound"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := source.GetClip().Sound().Format; got != asset.SoundMono16 {
		t.Errorf("clip format = %v, want mono16", got)
	}
	if state, _ := backend.Source(source.ID()); state.Offset != 0 {
		t.Errorf("source offset = %d after reload, want rewound", state.Offset)
	}
}

func TestEngineWatch_ReloadsOnStep(t *testing.T) {
	dir := writeAssets(t)
	e, _, _ := newTestEngine(t, dir)

	mesh, err := e.Mesh("crate.ucmesh")
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if err := e.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Written aside then renamed so the watcher never sees a partial file.
	tmp := filepath.Join(t.TempDir(), "crate.ucmesh")
	if err := asset.SaveMesh(tmp, triangleMesh()); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "crate.ucmesh")); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for mesh.GetIndicesCount() != 3 {
		if time.Now().After(deadline) {
			t.Fatal("mesh not reloaded within 5s")
		}
		time.Sleep(10 * time.Millisecond)
		e.Step()
	}
}

// =============================================================================
// Dump and Close Tests
// =============================================================================

func TestEngineDump(t *testing.T) {
	e, _, _ := newTestEngine(t, writeAssets(t))
	buildDemo(t, e)

	snapshot := e.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("Snapshot() has %d roots, want rig and crate", len(snapshot))
	}
	rig := snapshot[0]
	if rig.Name != "rig" || len(rig.Children) != 1 || rig.Children[0].Kind != "camera" {
		t.Errorf("rig = %+v", rig)
	}

	var buf bytes.Buffer
	e.Dump(&buf)
	for _, name := range []string{"rig", "camera", "crate", "radio", "ears"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("Dump() output misses %q", name)
		}
	}
}

func TestEngineClose(t *testing.T) {
	e, _, backend := newTestEngine(t, writeAssets(t))
	buildDemo(t, e)

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if sources, buffers, slots := backend.Counts(); sources != 0 || buffers != 0 || slots != 0 {
		t.Errorf("Counts() = %d %d %d after Close, want none", sources, buffers, slots)
	}
	if !e.Audio.Closed() {
		t.Error("audio context still open")
	}
}
