// Package xcursor reads Xcursor theme files, the cursor image format used
// by X11 and Wayland desktops.
package xcursor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fileMagic       = 0x72756358 // "Xcur"
	imageChunkType  = 0xfffd0002
	fileHeaderSize  = 16
	tocEntrySize    = 12
	imageHeaderSize = 36
	maxImageSide    = 0x7fff
	maxInheritDepth = 8
)

// ErrNotFound is returned when no theme in the search path has the cursor.
var ErrNotFound = errors.New("xcursor: cursor not found")

// Image is one cursor frame. Pixels hold premultiplied ARGB as
// little-endian 32-bit words, which is the wl_shm ARGB8888 layout.
type Image struct {
	Width  int
	Height int
	XHot   int
	YHot   int
	Delay  time.Duration
	Pixels []byte
}

// Cursor is a named, possibly animated cursor.
type Cursor struct {
	Name   string
	Images []Image
}

type tocEntry struct {
	typ, subtype, position uint32
}

// Decode parses an Xcursor file, keeping only the frames whose nominal size
// is closest to size.
func Decode(r io.Reader, size int) ([]Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xcursor: read: %w", err)
	}
	if len(data) < fileHeaderSize || binary.LittleEndian.Uint32(data) != fileMagic {
		return nil, errors.New("xcursor: not an Xcursor file")
	}
	headerLen := binary.LittleEndian.Uint32(data[4:])
	ntoc := binary.LittleEndian.Uint32(data[12:])
	if int(headerLen)+int(ntoc)*tocEntrySize > len(data) {
		return nil, errors.New("xcursor: truncated table of contents")
	}

	var entries []tocEntry
	best := -1
	for i := 0; i < int(ntoc); i++ {
		off := int(headerLen) + i*tocEntrySize
		e := tocEntry{
			typ:      binary.LittleEndian.Uint32(data[off:]),
			subtype:  binary.LittleEndian.Uint32(data[off+4:]),
			position: binary.LittleEndian.Uint32(data[off+8:]),
		}
		if e.typ != imageChunkType {
			continue
		}
		entries = append(entries, e)
		if best < 0 || abs(int(e.subtype)-size) < abs(best-size) {
			best = int(e.subtype)
		}
	}
	if best < 0 {
		return nil, errors.New("xcursor: file has no images")
	}

	var images []Image
	for _, e := range entries {
		if int(e.subtype) != best {
			continue
		}
		img, err := decodeImage(data, int(e.position))
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeImage(data []byte, off int) (Image, error) {
	if off < 0 || off+imageHeaderSize > len(data) {
		return Image{}, errors.New("xcursor: image chunk out of range")
	}
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(data[off+4*i:]) }
	if word(1) != imageChunkType {
		return Image{}, errors.New("xcursor: chunk type mismatch")
	}
	img := Image{
		Width:  int(word(4)),
		Height: int(word(5)),
		XHot:   int(word(6)),
		YHot:   int(word(7)),
		Delay:  time.Duration(word(8)) * time.Millisecond,
	}
	if img.Width <= 0 || img.Height <= 0 || img.Width > maxImageSide || img.Height > maxImageSide {
		return Image{}, fmt.Errorf("xcursor: invalid image size %dx%d", img.Width, img.Height)
	}
	if img.XHot > img.Width || img.YHot > img.Height {
		return Image{}, errors.New("xcursor: hotspot outside image")
	}
	start := off + int(word(0))
	n := img.Width * img.Height * 4
	if start+n > len(data) {
		return Image{}, errors.New("xcursor: truncated pixel data")
	}
	img.Pixels = append([]byte(nil), data[start:start+n]...)
	return img, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SearchPath returns the icon directories to look for themes in. XCURSOR_PATH
// replaces the default list.
func SearchPath() []string {
	if p := os.Getenv("XCURSOR_PATH"); p != "" {
		return expandHome(strings.Split(p, ":"))
	}
	var dirs []string
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		dirs = append(dirs, filepath.Join(data, "icons"))
	} else {
		dirs = append(dirs, "~/.local/share/icons")
	}
	dirs = append(dirs, "~/.icons", "/usr/share/icons", "/usr/share/pixmaps")
	return expandHome(dirs)
}

func expandHome(dirs []string) []string {
	home, _ := os.UserHomeDir()
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if strings.HasPrefix(d, "~/") {
			if home == "" {
				continue
			}
			d = filepath.Join(home, d[2:])
		}
		out = append(out, d)
	}
	return out
}

// Theme loads cursors by name from a theme and the themes it inherits.
type Theme struct {
	Name  string
	Size  int
	Paths []string

	cache map[string]*Cursor
}

// LoadTheme returns a theme rooted at name. An empty name selects the
// "default" theme. Cursors are read lazily.
func LoadTheme(name string, size int) *Theme {
	if name == "" {
		name = "default"
	}
	return &Theme{Name: name, Size: size, Paths: SearchPath(), cache: make(map[string]*Cursor)}
}

// Cursor returns the named cursor, reading it on first use.
func (t *Theme) Cursor(name string) (*Cursor, error) {
	if c, ok := t.cache[name]; ok {
		if c == nil {
			return nil, ErrNotFound
		}
		return c, nil
	}
	path := t.find(t.Name, name, 0, make(map[string]bool))
	if path == "" {
		t.cache[name] = nil
		return nil, ErrNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	images, err := Decode(f, t.Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c := &Cursor{Name: name, Images: images}
	t.cache[name] = c
	return c, nil
}

func (t *Theme) find(theme, name string, depth int, seen map[string]bool) string {
	if depth > maxInheritDepth || seen[theme] {
		return ""
	}
	seen[theme] = true
	for _, dir := range t.Paths {
		p := filepath.Join(dir, theme, "cursors", name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	for _, parent := range t.inherits(theme) {
		if p := t.find(parent, name, depth+1, seen); p != "" {
			return p
		}
	}
	return ""
}

// inherits reads the Inherits key of the first index.theme found for theme.
func (t *Theme) inherits(theme string) []string {
	for _, dir := range t.Paths {
		data, err := os.ReadFile(filepath.Join(dir, theme, "index.theme"))
		if err != nil {
			continue
		}
		return parseInherits(data)
	}
	return nil
}

func parseInherits(data []byte) []string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "Inherits" {
			continue
		}
		var out []string
		for _, f := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\t' }) {
			out = append(out, f)
		}
		return out
	}
	return nil
}
