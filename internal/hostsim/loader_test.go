package hostsim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonic/pluginkit/config"
	"github.com/halcyonic/pluginkit/patch"
	"github.com/halcyonic/pluginkit/plugin"
	"github.com/halcyonic/pluginkit/storage"
)

// The declaration surfaces are process-wide, so the full plugin lifecycle
// runs as one sequential test: declare, load, use, edit settings, shut down.
func TestLoaderLifecycle(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.json")

	plugin.MustDeclare(plugin.Info{
		Name:    "Lifecycle",
		Version: "2.0.0",
		Author:  "tests",
	})
	plugin.MustUseStorage("lifecycle")

	var osAdd *patch.Entry[func(int32, int32) int32]
	osAdd = patch.Replace(patch.LibraryCoreinit, "OSAdd", func(a, b int32) int32 {
		// Wrapper doubles the real sum, so calls prove both directions.
		return 2 * osAdd.Original()(a, b)
	})

	var events []string
	plugin.OnInit(func() {
		events = append(events, "init")
		require.NoError(t, config.Register("Lifecycle", func() []config.Node {
			return []config.Node{
				config.Label{Text: "General"},
				config.Toggle{ID: "enabled", Text: "Enabled", Default: true},
				config.Range{ID: "speed", Text: "Speed", Default: 5, Min: 1, Max: 10},
				config.Category{
					Title: "Advanced",
					Children: []config.Node{
						config.Select{ID: "mode", Text: "Mode", Default: 0, Options: []string{"auto", "manual"}},
					},
				},
			}
		}))
	})
	plugin.OnDeinit(func() { events = append(events, "deinit") })
	plugin.OnApplicationStarts(func() { events = append(events, "app-start") })
	plugin.OnApplicationEnds(func() { events = append(events, "app-end") })

	loader := NewLoader(Options{
		StoragePath: storePath,
		Symbols: map[string]any{
			"OSAdd": func(a, b int32) int32 { return a + b },
		},
	})
	require.NoError(t, loader.Load())
	assert.Error(t, loader.Load(), "second load must be rejected")

	assert.Equal(t, "Lifecycle", loader.Meta()["name"])
	assert.Equal(t, "2.0.0", loader.Meta()["version"])
	assert.Equal(t, "lifecycle", loader.Meta()["storage_id"])

	assert.Equal(t, []string{"init"}, events)
	assert.Equal(t, patch.StateActive, osAdd.State())
	assert.Equal(t, int32(6), osAdd.Replacement()(1, 2))
	assert.True(t, storage.Initialized())

	require.NoError(t, loader.StartApplication())

	// First open materializes the declared tree with defaults persisted.
	menu := loader.Menu()
	require.NoError(t, menu.Open())

	root := menu.Root()
	assert.Equal(t, []string{"General"}, root.Labels)
	require.Len(t, root.Subs, 1)
	assert.Equal(t, "Advanced", root.Subs[0].Name)

	toggle, ok := menu.Toggle("enabled")
	require.True(t, ok)
	assert.True(t, toggle.Current)

	// Simulated user edits land in storage through the bare callbacks.
	require.NoError(t, menu.SetToggle("enabled", false))
	require.NoError(t, menu.SetRange("speed", 9))
	require.NoError(t, menu.SetSelect("mode", 1))
	assert.Error(t, menu.SetRange("speed", 99), "out-of-domain edit must be rejected")
	menu.Close()

	assert.False(t, storage.LoadOrDefault[bool]("enabled"))
	assert.Equal(t, int32(9), storage.LoadOrDefault[int32]("speed"))
	assert.Equal(t, uint32(1), storage.LoadOrDefault[uint32]("mode"))

	// A second open rebuilds from the stored state.
	require.NoError(t, menu.Open())
	toggle, ok = menu.Toggle("enabled")
	require.True(t, ok)
	assert.False(t, toggle.Current)
	rng, ok := menu.Range("speed")
	require.True(t, ok)
	assert.Equal(t, int32(9), rng.Current)
	menu.Close()

	require.NoError(t, loader.EndApplication())
	require.NoError(t, loader.Shutdown())
	assert.Equal(t, []string{"init", "app-start", "app-end", "deinit"}, events)

	// The shutdown flush reached the medium.
	b, err := NewFileBackend(storePath, "lifecycle", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"enabled", "speed", "mode"}, b.Keys("*"))
}
