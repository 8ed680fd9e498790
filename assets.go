package uc3d

import (
	"path/filepath"

	"github.com/akmonengine/uc3d/asset"
	"github.com/akmonengine/uc3d/audio"
	"github.com/akmonengine/uc3d/render"
	"github.com/pkg/errors"
)

var ErrNoAudio = errors.New("engine has no audio context")

// assets caches every loaded asset by its resolved path, so that a reload updates the
// object each surface or source already points to.
type assets struct {
	meshes   map[string]*render.Mesh
	textures map[string]*render.Texture
	clips    map[string]*audio.Clip
}

func newAssets() *assets {
	return &assets{
		meshes:   make(map[string]*render.Mesh),
		textures: make(map[string]*render.Texture),
		clips:    make(map[string]*audio.Clip),
	}
}

// preloadJob is the unit of work of Preload. Workers only write their own job.
type preloadJob struct {
	path    string
	kind    asset.Kind
	mesh    asset.MeshData
	texture asset.TextureData
	sound   asset.SoundData
	err     error
}

func (j *preloadJob) decode() {
	switch j.kind {
	case asset.KindMesh:
		j.mesh, j.err = asset.LoadMesh(j.path)
	case asset.KindTexture:
		j.texture, j.err = asset.LoadTexture(j.path)
	case asset.KindSound:
		j.sound, j.err = asset.LoadSound(j.path)
	default:
		j.err = errors.Wrapf(asset.ErrUnsupportedType, "asset %s", j.path)
	}
}

// resolve returns the cache key of an asset path: relative paths are taken from the
// assets directory.
func (e *Engine) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Clean(filepath.Join(e.Config.Assets.Dir, path))
}

func (e *Engine) Mesh(path string) (*render.Mesh, error) {
	key := e.resolve(path)
	if m, ok := e.assets.meshes[key]; ok {
		return m, nil
	}

	data, err := asset.LoadMesh(key)
	if err != nil {
		return nil, err
	}

	return e.installMesh(key, data)
}

func (e *Engine) Texture(path string) (*render.Texture, error) {
	key := e.resolve(path)
	if t, ok := e.assets.textures[key]; ok {
		return t, nil
	}

	data, err := asset.LoadTexture(key)
	if err != nil {
		return nil, err
	}

	return e.installTexture(key, data)
}

func (e *Engine) Clip(path string) (*audio.Clip, error) {
	if e.Audio == nil {
		return nil, ErrNoAudio
	}
	key := e.resolve(path)
	if c, ok := e.assets.clips[key]; ok {
		return c, nil
	}

	data, err := asset.LoadSound(key)
	if err != nil {
		return nil, err
	}

	return e.installClip(key, data)
}

// installMesh caches a decoded mesh and uploads it when the engine has a device.
func (e *Engine) installMesh(key string, data asset.MeshData) (*render.Mesh, error) {
	m := render.NewMesh(data.Vertices, data.Indices, data.UVs)
	if e.Device != nil {
		if err := m.GenerateBuffers(e.Device); err != nil {
			return nil, errors.Wrapf(err, "mesh %s", key)
		}
	}
	e.assets.meshes[key] = m

	return m, nil
}

func (e *Engine) installTexture(key string, data asset.TextureData) (*render.Texture, error) {
	t := render.NewTexture(data)
	if e.Device != nil {
		if err := t.Upload(e.Device); err != nil {
			return nil, errors.Wrapf(err, "texture %s", key)
		}
	}
	e.assets.textures[key] = t

	return t, nil
}

func (e *Engine) installClip(key string, data asset.SoundData) (*audio.Clip, error) {
	if e.Audio == nil {
		return nil, ErrNoAudio
	}

	c, err := audio.NewClip(e.Audio)
	if err != nil {
		return nil, err
	}
	if err := c.SetData(data); err != nil {
		_ = c.Release()
		return nil, errors.Wrapf(err, "clip %s", key)
	}
	e.assets.clips[key] = c

	return c, nil
}

// Preload decodes the given asset files in parallel, then uploads them in order on the
// calling goroutine. Already cached paths are skipped. Every file is attempted; the
// first error is returned.
func (e *Engine) Preload(paths ...string) error {
	jobs := make([]*preloadJob, 0, len(paths))
	queued := make(map[string]bool, len(paths))
	for _, p := range paths {
		key := e.resolve(p)
		if queued[key] || e.cached(key) {
			continue
		}
		queued[key] = true
		jobs = append(jobs, &preloadJob{path: key, kind: asset.KindOfPath(key)})
	}

	task(e.Config.Assets.Workers, jobs, func(j *preloadJob) {
		j.decode()
	})

	var first error
	for _, j := range jobs {
		err := j.err
		if err == nil {
			switch j.kind {
			case asset.KindMesh:
				_, err = e.installMesh(j.path, j.mesh)
			case asset.KindTexture:
				_, err = e.installTexture(j.path, j.texture)
			case asset.KindSound:
				_, err = e.installClip(j.path, j.sound)
			}
		}
		if err != nil {
			e.Logger.Printf("preload: %v", err)
			if first == nil {
				first = err
			}
		}
	}

	return first
}

func (e *Engine) cached(key string) bool {
	_, mesh := e.assets.meshes[key]
	_, texture := e.assets.textures[key]
	_, clip := e.assets.clips[key]

	return mesh || texture || clip
}

// Reload reads a cached asset file again and updates it in place. It reports whether
// path was cached; an uncached path is not loaded.
func (e *Engine) Reload(path string) (bool, error) {
	return e.reload(e.resolve(path))
}

func (e *Engine) reload(key string) (bool, error) {
	if m, ok := e.assets.meshes[key]; ok {
		return true, m.LoadFromUCMESHFile(key)
	}
	if t, ok := e.assets.textures[key]; ok {
		return true, t.LoadFromUCTEXFile(key)
	}
	if c, ok := e.assets.clips[key]; ok {
		return true, c.LoadFromUCSOUNDFile(key)
	}

	return false, nil
}

// Watch starts reloading assets changed under the assets directory. Changes are
// applied by Step.
func (e *Engine) Watch() error {
	if e.watcher != nil {
		return nil
	}

	w, err := asset.NewWatcher(e.Config.Assets.Dir)
	if err != nil {
		return errors.Wrapf(err, "watch %s", e.Config.Assets.Dir)
	}
	e.watcher = w

	return nil
}

// reloadChanged applies the pending watcher events without blocking. Watcher paths are
// already rooted at the assets directory.
func (e *Engine) reloadChanged() {
	if e.watcher == nil {
		return
	}

	for {
		select {
		case path, ok := <-e.watcher.Events:
			if !ok {
				e.watcher = nil
				return
			}
			reloaded, err := e.reload(path)
			if err != nil {
				e.Logger.Printf("reload: %v", err)
			} else if reloaded {
				e.Logger.Printf("reloaded %s", path)
			}
		case err, ok := <-e.watcher.Errors:
			if !ok {
				e.watcher = nil
				return
			}
			e.Logger.Printf("watch: %v", err)
		default:
			return
		}
	}
}
