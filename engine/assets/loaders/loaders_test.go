package loaders

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, c)
	img.Set(1, 0, color.RGBA{0, 0, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newManager(t *testing.T, dir string) (*assets.AssetManager, *core.TaskQueue) {
	t.Helper()
	tasks := core.NewTaskQueue(16)
	am, err := assets.NewAssetManager(dir, tasks)
	require.NoError(t, err)
	am.RegisterLoader(".toml", &MaterialLoader{})
	am.RegisterLoader(".png", &ImageLoader{})
	return am, tasks
}

func TestImageLoaderDecodesRGBA(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "red.png"), color.RGBA{255, 0, 0, 255})

	am, _ := newManager(t, dir)
	img, err := am.AcquireImage("red.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width())
	assert.Equal(t, uint32(1), img.Height())
	assert.Equal(t, assets.PixelFormatRGBA8, img.Format())
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 0, 255}, img.Pixels())
}

func TestMaterialLoaderResolvesMaps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))
	writePNG(t, filepath.Join(dir, "textures", "brick.png"), color.RGBA{200, 100, 50, 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brick.toml"), []byte(`
name = "brick"
diffuse_colour = [1.0, 0.5, 0.25, 1.0]
shininess = 32.0
diffuse_map = "textures/brick.png"
`), 0o644))

	am, _ := newManager(t, dir)
	m, err := am.AcquireMaterial("brick.toml")
	require.NoError(t, err)
	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, math.NewVec4(1, 0.5, 0.25, 1), m.DiffuseColour())
	assert.Equal(t, float32(32), m.Shininess())
	require.NotNil(t, m.DiffuseMap())
	assert.Nil(t, m.SpecularMap())

	img, err := am.AcquireImage("textures/brick.png")
	require.NoError(t, err)
	assert.Same(t, img, m.DiffuseMap())
}

func TestMaterialLoaderRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"noname.toml":  `shininess = 1.0`,
		"colour.toml":  "name = \"x\"\ndiffuse_colour = [2.0, 0.0, 0.0, 1.0]",
		"unknown.toml": "name = \"x\"\nglossiness = 3",
		"shiny.toml":   "name = \"x\"\nshininess = -1.0",
	}
	for name, body := range cases {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	am, _ := newManager(t, dir)
	for name := range cases {
		_, err := am.Acquire(name)
		assert.Error(t, err, name)
	}
}

func TestMaterialReloadBumpsVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"m\"\nshininess = 4.0"), 0o644))

	am, tasks := newManager(t, dir)
	m, err := am.AcquireMaterial("m.toml")
	require.NoError(t, err)
	v := m.Version()

	require.NoError(t, os.WriteFile(path, []byte("name = \"m\"\nshininess = 16.0"), 0o644))
	require.NoError(t, am.Reload(path))
	tasks.Drain()

	assert.Equal(t, float32(16), m.Shininess())
	assert.Greater(t, m.Version(), v)
}

func TestFlipRows(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6}
	assert.Equal(t, []byte{5, 6, 3, 4, 1, 2}, flipRows(in, 2, 3))
}
