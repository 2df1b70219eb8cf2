package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
)

// rsvgTool is the librsvg command line converter.
const rsvgTool = "rsvg-convert"

// installHint is appended to the error returned when rsvgTool is missing.
const installHint = "install librsvg (macOS: brew install librsvg, Linux: apt install librsvg2-bin)"

// ToPDF converts an SVG diagram to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return Convert(context.Background(), svg, "pdf", 1)
}

// ToPNG converts an SVG diagram to PNG. A scale of 2 doubles the pixel size.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return Convert(context.Background(), svg, "png", scale)
}

// Convert pipes svg through rsvg-convert and returns the converted bytes.
// A missing converter is reported as UNSUPPORTED; a failed conversion as
// CONVERSION with the tool's stderr attached.
func Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case "pdf", "png":
	default:
		return nil, ferrors.New(ferrors.ErrCodeUnsupported, "cannot convert SVG to %q", format)
	}
	if len(svg) == 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "empty SVG")
	}
	if _, err := exec.LookPath(rsvgTool); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeUnsupported, err, "%s export needs %s; %s", format, rsvgTool, installHint)
	}

	args := []string{"-f", format}
	if scale > 0 && scale != 1 {
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	}
	cmd := exec.CommandContext(ctx, rsvgTool, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeConversion, err, "%s %s: %s", rsvgTool, format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
