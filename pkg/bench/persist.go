package bench

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File extensions selecting a codec.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
)

// ErrUnknownFormat is returned for a results file that is neither .json nor .gob.
var ErrUnknownFormat = errors.New("unknown results format")

// Results is a saved benchmark: the options it ran with and its points.
type Results struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Seed      uint64    `json:"seed"`
	Repeat    int       `json:"repeat"`
	Points    []Point   `json:"points"`
}

// Codec serializes Results.
type Codec interface {
	Encode(w io.Writer, res Results) error
	Decode(r io.Reader) (Results, error)
}

// JSONCodec writes indented JSON.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(w io.Writer, res Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(res)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (JSONCodec) Decode(r io.Reader) (Results, error) {
	var res Results

	err := json.NewDecoder(r).Decode(&res)
	if err != nil {
		return Results{}, fmt.Errorf("json decode: %w", err)
	}

	return res, nil
}

// GobCodec writes gob.
type GobCodec struct{}

// Encode implements Codec.
func (GobCodec) Encode(w io.Writer, res Results) error {
	err := gob.NewEncoder(w).Encode(res)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (GobCodec) Decode(r io.Reader) (Results, error) {
	var res Results

	err := gob.NewDecoder(r).Decode(&res)
	if err != nil {
		return Results{}, fmt.Errorf("gob decode: %w", err)
	}

	return res, nil
}

// CodecFor picks the codec from the file extension.
func CodecFor(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case jsonExtension:
		return JSONCodec{}, nil
	case gobExtension:
		return GobCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Save writes res to path with the codec matching its extension.
func Save(path string, res Results) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}

	err = codec.Encode(f, res)
	closeErr := f.Close()

	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if closeErr != nil {
		return fmt.Errorf("save %s: %w", path, closeErr)
	}

	return nil
}

// Load reads results saved by Save.
func Load(path string) (Results, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return Results{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Results{}, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	res, err := codec.Decode(f)
	if err != nil {
		return Results{}, fmt.Errorf("load %s: %w", path, err)
	}

	return res, nil
}
