package vulkan

import (
	"io"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/vista/engine/core"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func TestProbeWithoutLoader(t *testing.T) {
	adapters, err := Probe(nil, "test", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, adapters)
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "abc\x00", safeString("abc"))
	assert.Equal(t, "abc\x00", safeString("abc\x00"))
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b"}))

	name := make([]byte, 16)
	copy(name, "llvmpipe")
	assert.Equal(t, "llvmpipe", cString(name))
	assert.Equal(t, "full", cString([]byte("full")))
}

func TestAdapterDescriptions(t *testing.T) {
	assert.Equal(t, "discrete", adapterType(vk.PhysicalDeviceTypeDiscreteGpu))
	assert.Equal(t, "cpu", adapterType(vk.PhysicalDeviceTypeCpu))
	assert.Equal(t, "unknown", adapterType(vk.PhysicalDeviceTypeOther))
	assert.Equal(t, "1.3.250", versionString(uint32(vk.MakeVersion(1, 3, 250))))

	a := Adapter{Name: "gpu", Type: "discrete", APIVersion: "1.3.0", DriverVersion: "2.0.1", LocalMemory: 8 << 30}
	assert.Equal(t, "gpu (discrete, Vulkan 1.3.0, driver 2.0.1, 8192 MiB local)", a.String())
}
