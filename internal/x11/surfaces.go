package x11

import (
	"github.com/1broseidon/hatch/internal/platform"
)

// The native display handle is the screen number; the window handle is
// the X window ID, which EGL and xcb surfaces accept as is.
func (b *Backend) nativeSurface(w *platform.Window) platform.NativeSurface {
	return platform.NativeSurface{
		Platform: platform.X11,
		Display:  b.EGLNativeDisplay(),
		Window:   b.EGLNativeWindow(w),
	}
}

func (b *Backend) EGLPlatform() (int, []int32) {
	return platform.EGLPlatformX11, nil
}

func (b *Backend) EGLNativeDisplay() uintptr {
	if b.conn == nil {
		return 0
	}
	return uintptr(b.conn.Conn().DefaultScreen)
}

func (b *Backend) EGLNativeWindow(w *platform.Window) uintptr {
	return uintptr(windowOf(w).id)
}

func (b *Backend) RequiredInstanceExtensions() []string {
	loader := b.host.VulkanLoader()
	if loader == nil || !loader.InstanceExtensionSupported("VK_KHR_xcb_surface") {
		return nil
	}
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (b *Backend) PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return false, b.host.ReportError(platform.APIUnavailable, "X11: Vulkan loader not found")
	}
	native := platform.NativeSurface{Platform: platform.X11, Display: b.EGLNativeDisplay(), Instance: instance}
	return loader.PresentationSupport(instance, device, queueFamily, native)
}

func (b *Backend) CreateWindowSurface(instance uintptr, w *platform.Window, allocator uintptr) (uintptr, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return 0, b.host.ReportError(platform.APIUnavailable, "X11: Vulkan loader not found")
	}
	native := b.nativeSurface(w)
	native.Instance = instance
	surface, err := loader.CreateSurface(instance, native, allocator)
	if err != nil {
		return 0, b.host.ReportError(platform.PlatformError, "X11: failed to create Vulkan surface: %v", err)
	}
	return surface, nil
}
