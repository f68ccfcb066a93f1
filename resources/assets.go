package resources

import (
	"embed"
	"fmt"
)

const cueDir = "cues/"

//go:embed cues/*.yaml
var cueFS embed.FS

// Cue returns the raw bytes of an embedded cue preset file.
func Cue(fileName string) ([]byte, error) {
	data, err := cueFS.ReadFile(cueDir + fileName)
	if err != nil {
		return nil, fmt.Errorf("load cue preset %s: %w", fileName, err)
	}
	return data, nil
}

// MustCue returns the bytes of an embedded cue preset file or panics.
func MustCue(fileName string) []byte {
	data, err := Cue(fileName)
	if err != nil {
		panic(err)
	}
	return data
}
