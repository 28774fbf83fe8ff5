package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/greenmatthew/velecs/engine/assets/loaders"
	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeShader
	AssetTypeModel
)

type AssetInfo struct {
	Path     string
	Type     AssetType
	LastSeen time.Time
}

// Manager tracks the on-disk asset tree rooted at <root>, with shaders
// under <root>/shaders and models under <root>/models. A filesystem
// watcher records modified assets so callers can poll for reloads.
type Manager struct {
	root   string
	assets map[string]AssetInfo
	dirty  map[string]struct{}

	mutex sync.RWMutex

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewManager() (*Manager, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Manager{
		assets:  make(map[string]AssetInfo),
		dirty:   make(map[string]struct{}),
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Initialize indexes the asset tree and starts watching it.
func (m *Manager) Initialize(root string) error {
	m.root = root
	go m.watch()

	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return m.watcher.Add(path)
		}
		m.index(path)
		return nil
	})
}

func (m *Manager) Shutdown() error {
	close(m.done)
	return nil
}

// ShaderPath resolves a compiled shader name under the fixed layout.
func (m *Manager) ShaderPath(name string) string {
	return filepath.Join(m.root, "shaders", name)
}

// LoadShaderCode reads a compiled SPIR-V module by shader name,
// e.g. "vert.spv".
func (m *Manager) LoadShaderCode(name string) ([]uint32, error) {
	return loaders.LoadSPIRV(m.ShaderPath(name))
}

// LoadModel reads a glTF model's first mesh from <root>/models.
func (m *Manager) LoadModel(name string) ([]math.Vertex, []uint32, error) {
	return loaders.LoadGLTFMesh(filepath.Join(m.root, "models", name))
}

// TakeModified returns the assets touched since the last call and
// clears the set.
func (m *Manager) TakeModified() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.dirty) == 0 {
		return nil
	}
	out := make([]string, 0, len(m.dirty))
	for path := range m.dirty {
		out = append(out, path)
	}
	m.dirty = make(map[string]struct{})
	return out
}

func (m *Manager) watch() {
	for {
		select {
		case e, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					m.watcher.Add(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if m.index(e.Name) {
					core.LogDebug("asset modified: %s", e.Name)
					m.mutex.Lock()
					m.dirty[e.Name] = struct{}{}
					m.mutex.Unlock()
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				m.mutex.Lock()
				delete(m.assets, e.Name)
				m.mutex.Unlock()
				m.watcher.Remove(e.Name)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-m.done:
			m.watcher.Close()
			return
		}
	}
}

func (m *Manager) index(path string) bool {
	t := assetTypeOf(path)
	if t == AssetTypeNone {
		return false
	}
	m.mutex.Lock()
	m.assets[path] = AssetInfo{Path: path, Type: t, LastSeen: time.Now()}
	m.mutex.Unlock()
	return true
}

func assetTypeOf(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return AssetTypeShader
	case ".gltf", ".glb":
		return AssetTypeModel
	default:
		return AssetTypeNone
	}
}
