// internal/criteria/decode.go
package criteria

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode normalizes map keys to snake_case and decodes into out using the
// json tags shared with the storage format. JSON numbers arrive as float64;
// weak typing coerces them into the integer fields.
func Decode(in interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(MapKeysToSnake(in))
}

// DecodeCriteriaSet decodes a criteria map (either key convention) into a
// typed CriteriaSet.
func DecodeCriteriaSet(in map[string]interface{}) (CriteriaSet, error) {
	var cs CriteriaSet
	if err := Decode(in, &cs); err != nil {
		return CriteriaSet{}, fmt.Errorf("decode criteria: %w", err)
	}
	return cs, nil
}

// DecodeProgram decodes a program map {id, name, tier, criteria} into a
// typed Program.
func DecodeProgram(in map[string]interface{}) (Program, error) {
	var p Program
	if err := Decode(in, &p); err != nil {
		return Program{}, fmt.Errorf("decode program: %w", err)
	}
	return p, nil
}
