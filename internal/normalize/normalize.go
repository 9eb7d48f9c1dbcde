// Package normalize turns the structured payloads found by the extraction
// strategies into the uniform row format.
//
// Inputs come from a closed set of shapes: a sequence of key/value mappings,
// a sequence of lists, or a mix of the two. Mapping rows take their values
// in document key order, so column identity is positional and depends on
// the producer keeping a stable key order.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/pkg/models"
)

// Input is one of Mapping, List, MappingSeq, ListSeq or Mixed.
type Input interface {
	isInput()
}

// Field is one key/value pair of a Mapping, value already coerced to text
type Field struct {
	Key   string
	Value string
}

// Mapping is a key/value record in insertion order
type Mapping []Field

// List is a positional record
type List []string

// MappingSeq is a sequence of mappings
type MappingSeq []Mapping

// ListSeq is a sequence of lists
type ListSeq []List

// Mixed holds records of both kinds; each element is a Mapping or a List
type Mixed []Input

func (Mapping) isInput()    {}
func (List) isInput()       {}
func (MappingSeq) isInput() {}
func (ListSeq) isInput()    {}
func (Mixed) isInput()      {}

// Values returns the mapping's values in insertion order
func (m Mapping) Values() []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.Value
	}
	return out
}

// Normalize converts an input into a Dataset. Nil or empty input yields an
// empty Dataset.
func Normalize(in Input) models.Dataset {
	var rows models.Dataset
	switch v := in.(type) {
	case Mapping:
		rows = append(rows, models.Row(v.Values()))
	case List:
		rows = append(rows, append(models.Row{}, v...))
	case MappingSeq:
		for _, m := range v {
			rows = append(rows, models.Row(m.Values()))
		}
	case ListSeq:
		for _, l := range v {
			rows = append(rows, append(models.Row{}, l...))
		}
	case Mixed:
		for _, rec := range v {
			rows = append(rows, Normalize(rec)...)
		}
	}
	return rows
}

// FromRows wraps already row-shaped text. Normalizing the result returns
// an equal Dataset.
func FromRows(rows models.Dataset) Input {
	seq := make(ListSeq, len(rows))
	for i, row := range rows {
		seq[i] = List(row)
	}
	return seq
}

// FromJSON classifies a JSON document. Only a top-level array produces
// records: object elements become Mappings, array elements become Lists and
// scalar elements are skipped. Any other valid document is an empty input.
func FromJSON(data []byte) (Input, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "invalid JSON document", nil).
			WithDetail("bytes", len(data))
	}
	if len(data) == 0 || data[0] != '[' {
		return ListSeq{}, nil
	}

	var (
		records  []Input
		mappings int
		lists    int
		walkErr  error
	)
	_, err := jsonparser.ArrayEach(data, func(item []byte, dataType jsonparser.ValueType, _ int, err error) {
		if walkErr != nil {
			return
		}
		if err != nil {
			walkErr = err
			return
		}
		switch dataType {
		case jsonparser.Object:
			m, err := mappingOf(item)
			if err != nil {
				walkErr = err
				return
			}
			records = append(records, m)
			mappings++
		case jsonparser.Array:
			l, err := listOf(item)
			if err != nil {
				walkErr = err
				return
			}
			records = append(records, l)
			lists++
		}
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "failed to walk JSON array", err)
	}

	switch {
	case mappings > 0 && lists == 0:
		seq := make(MappingSeq, 0, len(records))
		for _, r := range records {
			seq = append(seq, r.(Mapping))
		}
		return seq, nil
	case lists > 0 && mappings == 0:
		seq := make(ListSeq, 0, len(records))
		for _, r := range records {
			seq = append(seq, r.(List))
		}
		return seq, nil
	case len(records) == 0:
		return ListSeq{}, nil
	default:
		return Mixed(records), nil
	}
}

// NormalizeJSON is FromJSON followed by Normalize
func NormalizeJSON(data []byte) (models.Dataset, error) {
	in, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return Normalize(in), nil
}

func mappingOf(obj []byte) (Mapping, error) {
	var m Mapping
	index := make(map[string]int)
	err := jsonparser.ObjectEach(obj, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		k, err := jsonparser.ParseString(key)
		if err != nil {
			k = string(key)
		}
		v, err := textOf(value, dataType)
		if err != nil {
			return err
		}
		// a repeated key keeps its first position and takes the last value
		if i, seen := index[k]; seen {
			m[i].Value = v
			return nil
		}
		index[k] = len(m)
		m = append(m, Field{Key: k, Value: v})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	return m, nil
}

func listOf(arr []byte) (List, error) {
	l := List{}
	var walkErr error
	_, err := jsonparser.ArrayEach(arr, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if walkErr != nil {
			return
		}
		if err != nil {
			walkErr = err
			return
		}
		v, err := textOf(value, dataType)
		if err != nil {
			walkErr = err
			return
		}
		l = append(l, v)
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return nil, fmt.Errorf("array: %w", err)
	}
	return l, nil
}

// textOf coerces one JSON value to text. Strings are unescaped, numbers and
// booleans keep their source spelling, null is empty and containers are
// re-emitted as compact JSON.
func textOf(value []byte, dataType jsonparser.ValueType) (string, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return "", err
		}
		return s, nil
	case jsonparser.Null:
		return "", nil
	case jsonparser.Object, jsonparser.Array:
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(value), nil
	}
}
