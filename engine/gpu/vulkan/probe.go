// Package vulkan reports the Vulkan adapters present on the machine.
package vulkan

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vista/engine/core"
)

var ErrUnavailable = errors.New("vulkan is not available")

type Adapter struct {
	Name          string
	Type          string
	APIVersion    string
	DriverVersion string
	// Device local heap size in bytes.
	LocalMemory uint64
}

func (a Adapter) String() string {
	return fmt.Sprintf("%s (%s, Vulkan %s, driver %s, %d MiB local)",
		a.Name, a.Type, a.APIVersion, a.DriverVersion, a.LocalMemory/1024/1024)
}

// Probe creates a short lived instance through the loader at procAddr and
// lists the physical devices it sees. extensions are the instance extensions
// the windowing system requires.
func Probe(procAddr unsafe.Pointer, appName string, extensions []string) ([]Adapter, error) {
	if procAddr == nil {
		return nil, fmt.Errorf("no instance proc address: %w", ErrUnavailable)
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(appName),
		PEngineName:        safeString("Vista"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	required := append([]string{}, extensions...)
	if runtime.GOOS == "darwin" {
		required = append(required, "VK_KHR_portability_enumeration")
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	createInfo.EnabledExtensionCount = uint32(len(required))
	createInfo.PpEnabledExtensionNames = safeStrings(required)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return nil, fmt.Errorf("create instance failed with result %d: %w", res, ErrUnavailable)
	}
	defer vk.DestroyInstance(instance, nil)
	if err := vk.InitInstance(instance); err != nil {
		return nil, err
	}

	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success {
		return nil, fmt.Errorf("enumerate physical devices failed with result %d", res)
	}
	if count == 0 {
		core.LogWarn("no devices which support Vulkan were found")
		return nil, nil
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, devices); res != vk.Success {
		return nil, fmt.Errorf("enumerate physical devices failed with result %d", res)
	}

	adapters := make([]Adapter, 0, count)
	for _, device := range devices[:count] {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(device, &memory)
		memory.Deref()

		a := Adapter{
			Name:          cString(properties.DeviceName[:]),
			Type:          adapterType(properties.DeviceType),
			APIVersion:    versionString(properties.ApiVersion),
			DriverVersion: versionString(properties.DriverVersion),
		}
		for j := uint32(0); j < memory.MemoryHeapCount; j++ {
			heap := memory.MemoryHeaps[j]
			heap.Deref()
			if vk.MemoryHeapFlagBits(heap.Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
				a.LocalMemory += uint64(heap.Size)
			}
		}
		core.LogInfo("found Vulkan adapter %s", a)
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func adapterType(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "unknown"
}

func versionString(v uint32) string {
	version := vk.Version(v)
	return fmt.Sprintf("%d.%d.%d", version.Major(), version.Minor(), version.Patch())
}

// safeString terminates s for the C side.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// cString reads a zero terminated name out of a fixed size array.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
