package loaders

import (
	"encoding/binary"
	"fmt"
	"os"
)

// LoadSPIRV reads a compiled SPIR-V module and decodes its little
// endian words.
func LoadSPIRV(path string) ([]uint32, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, fmt.Errorf("shader %s: byte length %d is not a whole number of SPIR-V words", path, len(buf))
	}

	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return words, nil
}
