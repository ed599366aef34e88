// Package storage is the durable mirror behind graph.Store: a bbolt-backed
// Backend, transactional at query-commit granularity, encoding node and
// relationship property values with github.com/vmihailenco/msgpack/v5 — a
// compact binary codec, never the self-describing text encoding
// internal/registry uses for metadata (spec §4.5, §6.3a).
//
// This file's tagged-kind wire structs are adapted from the teacher's
// serializedValue/serializedNode/serializedEdge shape in
// internal/serialization, generalized from four scalar kinds to the full
// value.Kind union minus the three runtime-only kinds (Node, Edge, Path)
// that can never legally appear inside a stored property map.
package storage

import (
	"fmt"
	"time"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/value"
)

// wireValue is value.Value's on-disk shape: one field per possible payload,
// tagged with the Kind that says which is populated. msgpack omits zero
// fields by struct tag so a typical scalar property stays a few bytes.
type wireValue struct {
	Kind string        `msgpack:"k"`
	B    bool          `msgpack:"b,omitempty"`
	I    int64         `msgpack:"i,omitempty"`
	F    float64       `msgpack:"f,omitempty"`
	S    string        `msgpack:"s,omitempty"`
	L    []wireValue   `msgpack:"l,omitempty"`
	M    []wireMapEntry `msgpack:"m,omitempty"`
	T    int64         `msgpack:"t,omitempty"` // unix nanoseconds
	Dur  wireDuration  `msgpack:"dur,omitempty"`
	Pt   wirePoint     `msgpack:"pt,omitempty"`
}

type wireMapEntry struct {
	Key string    `msgpack:"key"`
	Val wireValue `msgpack:"val"`
}

type wireDuration struct {
	Months  int64 `msgpack:"mo,omitempty"`
	Days    int64 `msgpack:"d,omitempty"`
	Seconds int64 `msgpack:"s,omitempty"`
	Nanos   int64 `msgpack:"n,omitempty"`
}

type wirePoint struct {
	X    float64 `msgpack:"x,omitempty"`
	Y    float64 `msgpack:"y,omitempty"`
	Z    float64 `msgpack:"z,omitempty"`
	Is3D bool    `msgpack:"is3d,omitempty"`
	SRID int     `msgpack:"srid,omitempty"`
}

// encodeValue converts a property value to its wire shape. Node, Edge, and
// Path are rejected: the graph store never stores them as properties, only
// produces them as query results.
func encodeValue(v value.Value) (wireValue, error) {
	switch v.Kind {
	case value.Null:
		return wireValue{Kind: "null"}, nil
	case value.Bool:
		return wireValue{Kind: "bool", B: v.B}, nil
	case value.Int:
		return wireValue{Kind: "int", I: v.I}, nil
	case value.Float:
		return wireValue{Kind: "float", F: v.F}, nil
	case value.String:
		return wireValue{Kind: "string", S: v.S}, nil
	case value.List:
		out := make([]wireValue, len(v.L))
		for i, item := range v.L {
			wv, err := encodeValue(item)
			if err != nil {
				return wireValue{}, err
			}
			out[i] = wv
		}
		return wireValue{Kind: "list", L: out}, nil
	case value.Map:
		entries := make([]wireMapEntry, 0, v.M.Len())
		for _, k := range v.M.Keys() {
			mv, _ := v.M.Get(k)
			wv, err := encodeValue(mv)
			if err != nil {
				return wireValue{}, err
			}
			entries = append(entries, wireMapEntry{Key: k, Val: wv})
		}
		return wireValue{Kind: "map", M: entries}, nil
	case value.Date:
		return wireValue{Kind: "date", T: v.T.UnixNano()}, nil
	case value.Time:
		return wireValue{Kind: "time", T: v.T.UnixNano()}, nil
	case value.DateTime:
		return wireValue{Kind: "datetime", T: v.T.UnixNano()}, nil
	case value.Duration:
		return wireValue{Kind: "duration", Dur: wireDuration{
			Months: v.Dur.Months, Days: v.Dur.Days, Seconds: v.Dur.Seconds, Nanos: v.Dur.Nanos,
		}}, nil
	case value.Point:
		return wireValue{Kind: "point", Pt: wirePoint{
			X: v.Pt.X, Y: v.Pt.Y, Z: v.Pt.Z, Is3D: v.Pt.Is3D, SRID: v.Pt.SRID,
		}}, nil
	case value.Distance:
		return wireValue{Kind: "distance", F: v.F}, nil
	default:
		return wireValue{}, cerr.New(cerr.KindStorageError, "value kind %s is not storable as a property", v.Kind)
	}
}

func decodeValue(wv wireValue) (value.Value, error) {
	switch wv.Kind {
	case "null", "":
		return value.NullValue, nil
	case "bool":
		return value.BoolValue(wv.B), nil
	case "int":
		return value.IntValue(wv.I), nil
	case "float":
		return value.FloatValue(wv.F), nil
	case "string":
		return value.StringValue(wv.S), nil
	case "list":
		items := make([]value.Value, len(wv.L))
		for i, item := range wv.L {
			dv, err := decodeValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = dv
		}
		return value.ListValue(items), nil
	case "map":
		m := value.NewOrderedMap()
		for _, e := range wv.M {
			dv, err := decodeValue(e.Val)
			if err != nil {
				return value.Value{}, err
			}
			m.Set(e.Key, dv)
		}
		return value.MapValue(m), nil
	case "date":
		return value.DateValue(time.Unix(0, wv.T).UTC()), nil
	case "time":
		return value.TimeValue(time.Unix(0, wv.T).UTC()), nil
	case "datetime":
		return value.DateTimeValue(time.Unix(0, wv.T).UTC()), nil
	case "duration":
		return value.DurationValueOf(value.DurationValue{
			Months: wv.Dur.Months, Days: wv.Dur.Days, Seconds: wv.Dur.Seconds, Nanos: wv.Dur.Nanos,
		}), nil
	case "point":
		return value.PointValueOf(value.PointValue{
			X: wv.Pt.X, Y: wv.Pt.Y, Z: wv.Pt.Z, Is3D: wv.Pt.Is3D, SRID: wv.Pt.SRID,
		}), nil
	case "distance":
		return value.DistanceValue(wv.F), nil
	default:
		return value.Value{}, cerr.New(cerr.KindStorageError, "unknown wire value kind %q", wv.Kind)
	}
}

func encodeProps(props map[string]value.Value) ([]wireMapEntry, error) {
	entries := make([]wireMapEntry, 0, len(props))
	for k, v := range props {
		wv, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		entries = append(entries, wireMapEntry{Key: k, Val: wv})
	}
	return entries, nil
}

func decodeProps(entries []wireMapEntry) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(entries))
	for _, e := range entries {
		dv, err := decodeValue(e.Val)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", e.Key, err)
		}
		out[e.Key] = dv
	}
	return out, nil
}

// wireNode and wireRelationship are the msgpack-encoded records stored one
// per key in the "nodes" and "edges" buckets.
type wireNode struct {
	Labels []string       `msgpack:"labels"`
	Props  []wireMapEntry `msgpack:"props"`
}

type wireRelationship struct {
	Type  string         `msgpack:"type"`
	From  int64          `msgpack:"from"`
	To    int64          `msgpack:"to"`
	Props []wireMapEntry `msgpack:"props"`
}
