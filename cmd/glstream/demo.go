package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/spf13/cobra"

	"github.com/gogpu/glstream/archive"
	"github.com/gogpu/glstream/stream"
	"github.com/gogpu/glstream/webgl"
)

var demoCmd = &cobra.Command{
	Use:   "demo OUT",
	Short: "Record a small triangle and texture session into an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemo,
}

const (
	vertexSource = `attribute vec2 a_pos;
varying vec2 v_uv;
void main() {
	v_uv = a_pos * 0.5 + 0.5;
	gl_Position = vec4(a_pos, 0.0, 1.0);
}`
	fragmentSource = `precision mediump float;
uniform sampler2D u_tex;
uniform vec4 u_tint;
varying vec2 v_uv;
void main() {
	gl_FragColor = texture2D(u_tex, v_uv) * u_tint;
}`
)

// obj stands in for a browser-side GL object while recording.
type obj struct{ name string }

func runDemo(cmd *cobra.Command, args []string) error {
	wire, err := recordDemo(settings.text)
	if err != nil {
		return err
	}
	if err := archive.WriteFile(args[0], wire); err != nil {
		return err
	}
	_, _ = headerColor.Fprintf(cmd.OutOrStdout(), "wrote %d commands (%d bytes) to %s\n",
		wire.Len(), wire.Size(), args[0])
	return nil
}

// checker returns a size x size two-color checkerboard.
func checker(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 230, G: 80, B: 40, A: 255}
			if (x+y)%2 == 1 {
				c = color.RGBA{R: 40, G: 80, B: 230, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// recordDemo records a textured triangle frame.
func recordDemo(codec stream.TextCodec) (stream.WireData, error) {
	w := stream.NewWriter(webgl.Registry(), stream.WithSessionPrefix(), stream.WithTextCodec(codec))

	var (
		vbo     = &obj{"vbo"}
		vs      = &obj{"vs"}
		fs      = &obj{"fs"}
		prog    = &obj{"program"}
		tex     = &obj{"texture"}
		texLoc  = &obj{"u_tex"}
		tintLoc = &obj{"u_tint"}
	)
	steps := []struct {
		name string
		args []any
	}{
		{"viewport", []any{0, 0, 256, 256}},
		{"clearColor", []any{0.1, 0.1, 0.1, 1}},
		{"clear", []any{webgl.ColorBufferBit}},

		{"createBuffer", []any{vbo}},
		{"bindBuffer", []any{webgl.ArrayBuffer, vbo}},
		{"bufferData", []any{webgl.ArrayBuffer, []float32{-1, -1, 1, -1, 0, 1}, webgl.StaticDraw}},

		{"createShader", []any{webgl.VertexShader, vs}},
		{"shaderSource", []any{vs, vertexSource}},
		{"compileShader", []any{vs}},
		{"createShader", []any{webgl.FragmentShader, fs}},
		{"shaderSource", []any{fs, fragmentSource}},
		{"compileShader", []any{fs}},
		{"createProgram", []any{prog}},
		{"attachShader", []any{prog, vs}},
		{"attachShader", []any{prog, fs}},
		{"bindAttribLocation", []any{prog, 0, "a_pos"}},
		{"linkProgram", []any{prog}},
		{"getAttachedShaders", []any{prog, []any{vs, fs}}},
		{"useProgram", []any{prog}},

		{"createTexture", []any{tex}},
		{"activeTexture", []any{webgl.Texture0}},
		{"bindTexture", []any{webgl.Texture2D, tex}},
		{"texParameteri", []any{webgl.Texture2D, webgl.TextureMinFilter, webgl.Nearest}},
		{"texParameteri", []any{webgl.Texture2D, webgl.TextureMagFilter, webgl.Nearest}},
		{"texImage2D", []any{webgl.Texture2D, 0, webgl.RGBA, webgl.RGBA, webgl.UnsignedByte, checker(4)}},

		{"getUniformLocation", []any{prog, "u_tex", texLoc}},
		{"uniform1i", []any{texLoc, 0}},
		{"getUniformLocation", []any{prog, "u_tint", tintLoc}},
		{"uniform4f", []any{tintLoc, 1, 1, 1, 1}},

		{"enableVertexAttribArray", []any{0}},
		{"vertexAttribPointer", []any{0, 2, webgl.Float, false, 0, 0}},
		{"drawArrays", []any{webgl.Triangles, 0, 3}},
		{"flush", nil},
	}
	for _, s := range steps {
		if err := w.AddCommand(s.name, s.args...); err != nil {
			return stream.WireData{}, fmt.Errorf("demo: %s: %w", s.name, err)
		}
	}
	return w.Buffer(), nil
}
