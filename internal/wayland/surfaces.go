//go:build linux

package wayland

import (
	"github.com/1broseidon/hatch/internal/platform"
)

// Native handles are the display socket and the wl_surface object ID.
// A loader that needs libwayland pointers has to adopt the socket itself.
func (b *Backend) nativeSurface(w *platform.Window) platform.NativeSurface {
	return platform.NativeSurface{
		Platform: platform.Wayland,
		Display:  b.EGLNativeDisplay(),
		Window:   b.EGLNativeWindow(w),
	}
}

func (b *Backend) EGLPlatform() (int, []int32) {
	return platform.EGLPlatformWayland, nil
}

func (b *Backend) EGLNativeDisplay() uintptr {
	if b.conn == nil {
		return 0
	}
	return uintptr(b.conn.Fd())
}

func (b *Backend) EGLNativeWindow(w *platform.Window) uintptr {
	s := windowOf(w)
	if s == nil || s.surface == nil {
		return 0
	}
	return uintptr(s.surface.ID())
}

func (b *Backend) RequiredInstanceExtensions() []string {
	loader := b.host.VulkanLoader()
	if loader == nil || !loader.InstanceExtensionSupported("VK_KHR_wayland_surface") {
		return nil
	}
	return []string{"VK_KHR_surface", "VK_KHR_wayland_surface"}
}

func (b *Backend) PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return false, b.host.ReportError(platform.APIUnavailable, "Wayland: Vulkan loader not found")
	}
	native := platform.NativeSurface{Platform: platform.Wayland, Display: b.EGLNativeDisplay(), Instance: instance}
	return loader.PresentationSupport(instance, device, queueFamily, native)
}

func (b *Backend) CreateWindowSurface(instance uintptr, w *platform.Window, allocator uintptr) (uintptr, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return 0, b.host.ReportError(platform.APIUnavailable, "Wayland: Vulkan loader not found")
	}
	native := b.nativeSurface(w)
	native.Instance = instance
	surface, err := loader.CreateSurface(instance, native, allocator)
	if err != nil {
		return 0, b.host.ReportError(platform.PlatformError, "Wayland: failed to create Vulkan surface: %v", err)
	}
	return surface, nil
}
