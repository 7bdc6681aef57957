//go:build windows

package win32

import (
	"github.com/1broseidon/hatch/internal/platform"
)

// Native handles are the module instance and the HWND.
func (b *Backend) nativeSurface(w *platform.Window) platform.NativeSurface {
	return platform.NativeSurface{
		Platform: platform.Win32,
		Display:  b.instance,
		Window:   b.handle(w),
	}
}

// EGL on Windows takes the default display and a plain HWND.
func (b *Backend) EGLPlatform() (int, []int32) {
	return platform.EGLPlatformNone, nil
}

func (b *Backend) EGLNativeDisplay() uintptr { return 0 }

func (b *Backend) EGLNativeWindow(w *platform.Window) uintptr {
	return b.handle(w)
}

func (b *Backend) RequiredInstanceExtensions() []string {
	loader := b.host.VulkanLoader()
	if loader == nil || !loader.InstanceExtensionSupported("VK_KHR_win32_surface") {
		return nil
	}
	return []string{"VK_KHR_surface", "VK_KHR_win32_surface"}
}

func (b *Backend) PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return false, b.host.ReportError(platform.APIUnavailable, "Win32: Vulkan loader not found")
	}
	native := platform.NativeSurface{Platform: platform.Win32, Display: b.instance, Instance: instance}
	return loader.PresentationSupport(instance, device, queueFamily, native)
}

func (b *Backend) CreateWindowSurface(instance uintptr, w *platform.Window, allocator uintptr) (uintptr, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return 0, b.host.ReportError(platform.APIUnavailable, "Win32: Vulkan loader not found")
	}
	native := b.nativeSurface(w)
	native.Instance = instance
	surface, err := loader.CreateSurface(instance, native, allocator)
	if err != nil {
		return 0, b.host.ReportError(platform.PlatformError, "Win32: failed to create Vulkan surface: %v", err)
	}
	return surface, nil
}
