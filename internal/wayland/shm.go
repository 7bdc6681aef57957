//go:build linux

package wayland

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/runtimepath"
	"github.com/1broseidon/hatch/internal/wayland/xcursor"
	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

// createAnonymousFile returns a sealed memfd of size bytes, or an unlinked
// file in the runtime directory when memfd is unavailable.
func createAnonymousFile(size int) (int, error) {
	fd, err := unix.MemfdCreate("hatch-shared", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_SEAL)
	} else {
		if fd, err = createTempFile(); err != nil {
			return -1, err
		}
	}

	err = unix.Fallocate(fd, 0, 0, int64(size))
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		err = unix.Ftruncate(fd, int64(size))
	}
	if err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func createTempFile() (int, error) {
	dir, err := runtimepath.Dir()
	if err != nil {
		return -1, fmt.Errorf("Wayland: cannot create a shared memory file: %w", err)
	}
	f, err := os.CreateTemp(dir, "hatch-shared-*")
	if err != nil {
		return -1, err
	}
	defer f.Close()
	os.Remove(f.Name())
	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

// createShmBuffer uploads a straight-alpha RGBA image as a premultiplied
// ARGB8888 buffer.
func (b *Backend) createShmBuffer(img platform.Image) (*wl.Buffer, error) {
	return b.uploadARGB(img.Width, img.Height, func(dst []byte) {
		for i := 0; i < img.Width*img.Height; i++ {
			r, g, bl, a := img.Pixels[i*4], img.Pixels[i*4+1], img.Pixels[i*4+2], img.Pixels[i*4+3]
			alpha := uint32(a)
			dst[i*4] = byte(uint32(bl) * alpha / 255)
			dst[i*4+1] = byte(uint32(g) * alpha / 255)
			dst[i*4+2] = byte(uint32(r) * alpha / 255)
			dst[i*4+3] = a
		}
	})
}

// createCursorBuffer uploads an Xcursor frame, whose pixels are already
// premultiplied little-endian ARGB.
func (b *Backend) createCursorBuffer(img xcursor.Image) (*wl.Buffer, error) {
	return b.uploadARGB(img.Width, img.Height, func(dst []byte) {
		copy(dst, img.Pixels)
	})
}

func (b *Backend) uploadARGB(width, height int, fill func(dst []byte)) (*wl.Buffer, error) {
	stride := width * 4
	length := stride * height
	if length <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}

	fd, err := createAnonymousFile(length)
	if err != nil {
		return nil, fmt.Errorf("create shared memory file: %w", err)
	}
	defer unix.Close(fd)

	data, err := unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap shared memory: %w", err)
	}
	fill(data)
	unix.Munmap(data)

	pool, err := b.shm.CreatePool(fd, int32(length))
	if err != nil {
		return nil, err
	}
	defer pool.Destroy()
	return pool.CreateBuffer(0, int32(width), int32(height), int32(stride), wl.ShmFormatARGB8888)
}
