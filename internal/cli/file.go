package cli

import (
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/snapshot"
)

// rawArena holds values as undecoded JSON.
type rawArena = genarena.Arena[gojson.RawMessage]

func isJSONCodec(name string) bool {
	return name == "json" || name == "go-json"
}

func readHeaderFile(path string) (snapshot.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return snapshot.Header{}, err
	}
	defer f.Close()

	return snapshot.ReadHeader(f)
}

func readRawFile(path string) (*rawArena, snapshot.Header, error) {
	h, err := readHeaderFile(path)
	if err != nil {
		return nil, h, err
	}
	if !isJSONCodec(h.Codec) {
		return nil, h, fmt.Errorf("%s: codec %q cannot be decoded without its value type", path, h.Codec)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, h, err
	}
	defer f.Close()

	a, h, err := snapshot.Read[gojson.RawMessage](f)
	if err != nil {
		return nil, h, fmt.Errorf("%s: %w", path, err)
	}
	return a, h, nil
}
