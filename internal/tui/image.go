package tui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
)

// ImageProtocol is the inline image protocol a terminal speaks.
type ImageProtocol int

const (
	ProtocolNone ImageProtocol = iota
	ProtocolKitty
	ProtocolITerm2
)

// kittyChunk is the largest base64 payload kitty accepts per escape.
const kittyChunk = 4096

// kittyClear deletes every image kitty has placed on screen.
const kittyClear = "\x1b_Ga=d,d=A\x1b\\"

// Cover box in terminal cells.
const (
	coverCols = 20
	coverRows = 12
)

// DetectImageProtocol guesses the protocol from the environment. Ghostty
// and WezTerm speak kitty's protocol.
func DetectImageProtocol() ImageProtocol {
	return detectImageProtocol(os.Getenv)
}

func detectImageProtocol(getenv func(string) string) ImageProtocol {
	if getenv("SHELFREAD_NO_IMAGES") != "" {
		return ProtocolNone
	}
	term, program := getenv("TERM"), getenv("TERM_PROGRAM")
	switch {
	case strings.Contains(term, "kitty"), program == "ghostty", program == "WezTerm":
		return ProtocolKitty
	case program == "iTerm.app":
		return ProtocolITerm2
	}
	return ProtocolNone
}

// renderCover returns the escape sequence that draws the image at path in
// a box of cols x rows cells, or "" if it cannot be shown.
func renderCover(path string, protocol ImageProtocol, cols, rows int) string {
	if protocol == ProtocolNone || path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	pngData, err := asPNG(data)
	if err != nil {
		return ""
	}
	switch protocol {
	case ProtocolKitty:
		return kittyImage(pngData, cols, rows)
	case ProtocolITerm2:
		return iterm2Image(pngData, cols, rows)
	}
	return ""
}

// asPNG re-encodes JPEG, GIF and WebP covers; kitty's direct transfer
// only takes PNG.
func asPNG(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// kittyImage transmits and displays data, split into chunks with m=1 on
// all but the last one. C=1 leaves the cursor in place; the caller
// reserves the rows.
func kittyImage(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	first := true
	for len(encoded) > 0 {
		n := min(len(encoded), kittyChunk)
		chunk := encoded[:n]
		encoded = encoded[n:]
		more := 0
		if len(encoded) > 0 {
			more = 1
		}
		if first {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,C=1,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, chunk)
			first = false
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
		}
	}
	return b.String()
}

func iterm2Image(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;width=%d;height=%d;preserveAspectRatio=1:%s\x07",
		len(data), cols, rows, encoded)
}

// coverBlock lays out a rendered cover so the text below it starts under
// the image.
func coverBlock(seq string, protocol ImageProtocol) string {
	if seq == "" {
		return ""
	}
	if protocol == ProtocolKitty {
		return "  " + seq + strings.Repeat("\n", coverRows+1)
	}
	// iTerm2 moves the cursor below the image itself.
	return "  " + seq + "\n\n"
}
