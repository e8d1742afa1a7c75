package resources

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu/software"
	"github.com/spaghettifunk/vista/engine/math"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func triangle() *assets.Mesh {
	return assets.NewMesh("triangle", []math.Vertex3D{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(0, 1, 0)},
	}, []uint32{0, 1, 2})
}

func newCache(t *testing.T, maxAge uint32) (*Cache, *software.Device) {
	t.Helper()
	d := software.New()
	c, err := NewCache(d, Config{MaxAge: maxAge})
	require.NoError(t, err)
	return c, d
}

func TestNewCacheRejectsZeroAge(t *testing.T) {
	_, err := NewCache(software.New(), Config{})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestUploadIsIdempotentPerVersion(t *testing.T) {
	c, d := newCache(t, DefaultMaxAge)
	m := triangle()

	first, err := c.Upload(m)
	require.NoError(t, err)
	second, err := c.Upload(m)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.Uploads())
	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestEntryIsEvictedOnKthCollect(t *testing.T) {
	const k = 3
	c, d := newCache(t, k)
	m := triangle()
	first, err := c.Upload(m)
	require.NoError(t, err)

	for i := 0; i < k-1; i++ {
		assert.Zero(t, c.Collect())
		assert.Equal(t, 1, c.Len())
	}
	assert.Equal(t, 1, c.Collect())
	assert.Zero(t, c.Len())
	assert.Equal(t, 1, d.Releases())

	again, err := c.Upload(m)
	require.NoError(t, err)
	assert.NotEqual(t, first, again)
	assert.Equal(t, 2, d.Uploads())
}

func TestUploadRefreshesAge(t *testing.T) {
	c, _ := newCache(t, 2)
	m := triangle()
	_, err := c.Upload(m)
	require.NoError(t, err)

	c.Collect()
	_, err = c.Upload(m)
	require.NoError(t, err)
	c.Collect()
	assert.Equal(t, 1, c.Len())
	c.Collect()
	assert.Zero(t, c.Len())
}

func TestVersionBumpUploadsAgainAndOldEntryAgesOut(t *testing.T) {
	c, d := newCache(t, 1)
	m := triangle()
	before, err := c.Upload(m)
	require.NoError(t, err)

	m.SetGeometry(m.Vertices(), []uint32{2, 1, 0})
	after, err := c.Upload(m)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 2, c.Collect())
	assert.Equal(t, 2, d.Releases())
}

func TestImagesUploadAsTextures(t *testing.T) {
	c, d := newCache(t, DefaultMaxAge)
	img := assets.NewImage("pixel", 1, 1, assets.PixelFormatR8, []byte{200})
	id, err := c.Upload(img)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, d.Live())
}

func TestFallbacksAreSharedAndNeverAged(t *testing.T) {
	c, d := newCache(t, 1)

	white, err := c.UploadTexture(nil, FallbackWhite)
	require.NoError(t, err)
	again, err := c.UploadTexture(nil, FallbackWhite)
	require.NoError(t, err)
	black, err := c.UploadTexture(nil, FallbackBlack)
	require.NoError(t, err)
	normal, err := c.Fallback(FallbackNormal)
	require.NoError(t, err)
	checker, err := c.Fallback(FallbackChecker)
	require.NoError(t, err)

	assert.Equal(t, white, again)
	assert.NotEqual(t, white, black)
	assert.NotEqual(t, black, normal)
	assert.NotEqual(t, normal, checker)
	assert.Zero(t, c.Len())

	for i := 0; i < 5; i++ {
		c.Collect()
	}
	assert.Equal(t, 4, d.Live())
	assert.Zero(t, d.Releases())
}

func TestMaterialsHaveNoGPUResource(t *testing.T) {
	c, _ := newCache(t, DefaultMaxAge)
	assert.Panics(t, func() {
		_, _ = c.Upload(assets.NewDefaultMaterial())
	})
	assert.Panics(t, func() {
		_, _ = c.UploadMesh(nil)
	})
}

func TestUploadFailureIsReturned(t *testing.T) {
	c, d := newCache(t, DefaultMaxAge)
	d.FailUploads(1)
	_, err := c.Upload(triangle())
	assert.ErrorIs(t, err, core.ErrResourceCreate)
	assert.Zero(t, c.Len())
}

func TestDestroyReleasesEverything(t *testing.T) {
	c, d := newCache(t, DefaultMaxAge)
	_, err := c.Upload(triangle())
	require.NoError(t, err)
	_, err = c.Fallback(FallbackWhite)
	require.NoError(t, err)

	c.Destroy()
	assert.Zero(t, d.Live())
	assert.Zero(t, c.Len())
}
