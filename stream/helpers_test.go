package stream

import (
	"errors"
	"fmt"

	"github.com/gogpu/glstream/command"
)

// handle stands in for an API object on the recording side.
type handle struct{ name string }

// liveObject is what mockTarget hands out for created objects.
type liveObject struct {
	kind string
	seq  int
}

// call is one invocation seen by mockTarget.
type call struct {
	name string
	args []any
}

// mockTarget records calls and creates live objects for creator commands.
type mockTarget struct {
	calls   []call
	created int
	failOn  string
	unknown map[string]bool
}

var errMockFailure = errors.New("mock target failure")

func (m *mockTarget) Invoke(name string, args []any) (any, error) {
	if m.unknown[name] {
		return nil, fmt.Errorf("no operation %q", name)
	}
	m.calls = append(m.calls, call{name: name, args: append([]any(nil), args...)})
	if name == m.failOn {
		return nil, errMockFailure
	}
	switch name {
	case "create", "createBuffer", "createTexture", "createProgram", "createShader":
		m.created++
		return &liveObject{kind: name, seq: m.created}, nil
	case "locate", "getUniformLocation":
		m.created++
		return &liveObject{kind: "location", seq: m.created}, nil
	case "children", "getAttachedShaders":
		out := make([]*liveObject, 2)
		for i := range out {
			m.created++
			out[i] = &liveObject{kind: "child", seq: m.created}
		}
		return out, nil
	}
	return nil, nil
}

func (m *mockTarget) names() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.name
	}
	return out
}

// testRegistry covers every argument type and return shape.
func testRegistry() *command.Registry {
	return command.MustRegistry(
		command.Descriptor{Code: 1, Name: "noop"},
		command.Descriptor{Code: 2, Name: "scalars", Args: []command.Type{
			command.TypeInt8, command.TypeUint8, command.TypeInt16, command.TypeUint16,
			command.TypeInt32, command.TypeUint32, command.TypeFloat32, command.TypeFloat64,
		}},
		command.Descriptor{Code: 3, Name: "flags", Args: []command.Type{command.TypeBool, command.TypeBool}},
		command.Descriptor{Code: 4, Name: "create", Return: command.Returns(command.TypeRef)},
		command.Descriptor{Code: 5, Name: "use", Args: []command.Type{command.TypeRef, command.TypeLocation}},
		command.Descriptor{Code: 6, Name: "upload", Args: []command.Type{command.ArrayBuffer(command.Uint8)}},
		command.Descriptor{Code: 7, Name: "label", Args: []command.Type{command.TypeRef, command.TypeString}},
		command.Descriptor{Code: 8, Name: "image", Args: []command.Type{command.TypeUint32, command.TypeImage}},
		command.Descriptor{Code: 9, Name: "children", Args: []command.Type{command.TypeRef},
			Return: command.ReturnsList(command.TypeRef)},
		command.Descriptor{Code: 10, Name: "locate", Args: []command.Type{command.TypeRef, command.TypeString},
			Return: command.Returns(command.TypeLocation)},
	)
}
