// Package shaders bundles the precompiled SPIR-V stages used by the
// triangle pipeline and decodes them into the word stream the driver
// expects.
package shaders

import (
	"embed"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

//go:embed vert.spv frag.spv
var fileSystem embed.FS

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

const headerWords = 5

// ErrInvalid marks bytecode that cannot be handed to the driver.
var ErrInvalid = errors.New("invalid SPIR-V bytecode")

// Set holds the decoded vertex and fragment stages.
type Set struct {
	Vertex   []uint32
	Fragment []uint32
}

// Decode converts a SPIR-V blob into 32-bit words, honouring the byte order
// announced by the magic number.
func Decode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Mark(errors.Newf("bytecode length %d is not a multiple of 4", len(b)), ErrInvalid)
	}
	if len(b) < headerWords*4 {
		return nil, errors.Mark(errors.Newf("bytecode length %d is shorter than the module header", len(b)), ErrInvalid)
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(b) == Magic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(b) == Magic:
		order = binary.BigEndian
	default:
		return nil, errors.Mark(errors.Newf("bad magic number 0x%08x", binary.LittleEndian.Uint32(b)), ErrInvalid)
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteCode[i] = order.Uint32(b[i*4:])
	}

	return byteCode, nil
}

func decodeFile(name string) ([]uint32, error) {
	b, err := fileSystem.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}

	code, err := Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return code, nil
}

// Load decodes both embedded stages.
func Load() (Set, error) {
	var set Set
	var group errgroup.Group

	group.Go(func() error {
		var err error
		set.Vertex, err = decodeFile("vert.spv")
		return err
	})
	group.Go(func() error {
		var err error
		set.Fragment, err = decodeFile("frag.spv")
		return err
	})

	if err := group.Wait(); err != nil {
		return Set{}, err
	}
	return set, nil
}
