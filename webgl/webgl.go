// Package webgl is the built-in command catalog for WebGL 1.0 style
// rendering calls, together with the GL enum values most streams use.
//
// The catalog covers buffer, texture, shader, program, uniform, vertex
// attribute, framebuffer, state and draw calls. Codes are stable: they
// are part of the wire format, so new commands are only ever appended.
//
//	w := stream.NewWriter(webgl.Registry())
//	_ = w.AddCommand("clearColor", 0, 0, 0, 1)
//	_ = w.AddCommand("clear", webgl.ColorBufferBit)
package webgl

import (
	"sync"

	"github.com/gogpu/glstream/command"
)

// GL enum values.
const (
	DepthBufferBit   = 0x0100
	ColorBufferBit   = 0x4000
	Triangles        = 0x0004
	TriangleStrip    = 0x0005
	SrcAlpha         = 0x0302
	OneMinusSrcAlpha = 0x0303
	Less             = 0x0201
	LEqual           = 0x0203
	DepthTest        = 0x0B71
	Blend            = 0x0BE2
	ScissorTest      = 0x0C11
	Texture2D        = 0x0DE1
	UnsignedByte     = 0x1401
	UnsignedShort    = 0x1403
	Float            = 0x1406
	RGBA             = 0x1908
	Nearest          = 0x2600
	Linear           = 0x2601
	TextureMagFilter = 0x2800
	TextureMinFilter = 0x2801
	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	ClampToEdge      = 0x812F
	Texture0         = 0x84C0
	ArrayBuffer      = 0x8892
	ElementArray     = 0x8893
	StaticDraw       = 0x88E4
	DynamicDraw      = 0x88E8
	FragmentShader   = 0x8B30
	VertexShader     = 0x8B31
	ColorAttachment0 = 0x8CE0
	Framebuffer      = 0x8D40
	UnpackFlipY      = 0x9240
)

// Short aliases keep the table below readable.
var (
	tEnum   = command.TypeUint32
	tInt    = command.TypeInt32
	tFloat  = command.TypeFloat32
	tBool   = command.TypeBool
	tRef    = command.TypeRef
	tLoc    = command.TypeLocation
	tString = command.TypeString
	tImage  = command.TypeImage
	tBytes  = command.ArrayBuffer(command.Uint8)
	tFloats = command.ArrayBuffer(command.Float32)
)

func args(ts ...command.Type) []command.Type { return ts }

// catalog is the static command table. Codes are part of the wire
// format and must never be renumbered.
var catalog = []command.Descriptor{
	{Code: 1, Name: "createBuffer", Return: command.Returns(tRef)},
	{Code: 2, Name: "deleteBuffer", Args: args(tRef)},
	{Code: 3, Name: "bindBuffer", Args: args(tEnum, tRef)},
	{Code: 4, Name: "bufferData", Args: args(tEnum, tBytes, tEnum)},
	{Code: 5, Name: "bufferSubData", Args: args(tEnum, tInt, tBytes)},

	{Code: 6, Name: "createTexture", Return: command.Returns(tRef)},
	{Code: 7, Name: "deleteTexture", Args: args(tRef)},
	{Code: 8, Name: "bindTexture", Args: args(tEnum, tRef)},
	{Code: 9, Name: "activeTexture", Args: args(tEnum)},
	{Code: 10, Name: "texParameteri", Args: args(tEnum, tEnum, tInt)},
	{Code: 11, Name: "texImage2D", Args: args(tEnum, tInt, tEnum, tEnum, tEnum, tImage)},
	{Code: 12, Name: "texSubImage2D", Args: args(tEnum, tInt, tInt, tInt, tEnum, tEnum, tImage)},
	{Code: 13, Name: "generateMipmap", Args: args(tEnum)},
	{Code: 14, Name: "pixelStorei", Args: args(tEnum, tInt)},

	{Code: 15, Name: "createShader", Args: args(tEnum), Return: command.Returns(tRef)},
	{Code: 16, Name: "shaderSource", Args: args(tRef, tString)},
	{Code: 17, Name: "compileShader", Args: args(tRef)},
	{Code: 18, Name: "deleteShader", Args: args(tRef)},
	{Code: 19, Name: "createProgram", Return: command.Returns(tRef)},
	{Code: 20, Name: "attachShader", Args: args(tRef, tRef)},
	{Code: 21, Name: "detachShader", Args: args(tRef, tRef)},
	{Code: 22, Name: "linkProgram", Args: args(tRef)},
	{Code: 23, Name: "useProgram", Args: args(tRef)},
	{Code: 24, Name: "deleteProgram", Args: args(tRef)},
	{Code: 25, Name: "getAttachedShaders", Args: args(tRef), Return: command.ReturnsList(tRef)},
	{Code: 26, Name: "bindAttribLocation", Args: args(tRef, tEnum, tString)},

	{Code: 27, Name: "getUniformLocation", Args: args(tRef, tString), Return: command.Returns(tLoc)},
	{Code: 28, Name: "uniform1i", Args: args(tLoc, tInt)},
	{Code: 29, Name: "uniform1f", Args: args(tLoc, tFloat)},
	{Code: 30, Name: "uniform2f", Args: args(tLoc, tFloat, tFloat)},
	{Code: 31, Name: "uniform4f", Args: args(tLoc, tFloat, tFloat, tFloat, tFloat)},
	{Code: 32, Name: "uniform4fv", Args: args(tLoc, tFloats)},
	{Code: 33, Name: "uniformMatrix4fv", Args: args(tLoc, tBool, tFloats)},

	{Code: 34, Name: "enableVertexAttribArray", Args: args(tEnum)},
	{Code: 35, Name: "disableVertexAttribArray", Args: args(tEnum)},
	{Code: 36, Name: "vertexAttribPointer", Args: args(tEnum, tInt, tEnum, tBool, tInt, tInt)},

	{Code: 37, Name: "createFramebuffer", Return: command.Returns(tRef)},
	{Code: 38, Name: "deleteFramebuffer", Args: args(tRef)},
	{Code: 39, Name: "bindFramebuffer", Args: args(tEnum, tRef)},
	{Code: 40, Name: "framebufferTexture2D", Args: args(tEnum, tEnum, tEnum, tRef, tInt)},

	{Code: 41, Name: "viewport", Args: args(tInt, tInt, tInt, tInt)},
	{Code: 42, Name: "scissor", Args: args(tInt, tInt, tInt, tInt)},
	{Code: 43, Name: "clearColor", Args: args(tFloat, tFloat, tFloat, tFloat)},
	{Code: 44, Name: "clearDepth", Args: args(tFloat)},
	{Code: 45, Name: "clearStencil", Args: args(tInt)},
	{Code: 46, Name: "clear", Args: args(tEnum)},
	{Code: 47, Name: "enable", Args: args(tEnum)},
	{Code: 48, Name: "disable", Args: args(tEnum)},
	{Code: 49, Name: "blendFunc", Args: args(tEnum, tEnum)},
	{Code: 50, Name: "depthFunc", Args: args(tEnum)},
	{Code: 51, Name: "depthMask", Args: args(tBool)},
	{Code: 52, Name: "colorMask", Args: args(tBool, tBool, tBool, tBool)},
	{Code: 53, Name: "lineWidth", Args: args(tFloat)},
	{Code: 54, Name: "stencilFunc", Args: args(tEnum, tInt, tEnum)},

	{Code: 55, Name: "drawArrays", Args: args(tEnum, tInt, tInt)},
	{Code: 56, Name: "drawElements", Args: args(tEnum, tInt, tEnum, tInt)},
	{Code: 57, Name: "flush"},
	{Code: 58, Name: "finish"},
}

var (
	registryOnce sync.Once
	registry     *command.Registry
)

// Registry returns the shared WebGL catalog.
func Registry() *command.Registry {
	registryOnce.Do(func() {
		registry = command.MustRegistry(catalog...)
	})
	return registry
}
