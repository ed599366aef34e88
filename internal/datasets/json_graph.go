package datasets

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

// JSON Graph is this engine's own typed interchange format: a lossless,
// self-describing JSON rendering of a property graph, used for
// import/export and test fixtures rather than any public dataset source
// (adapted from graphforge.datasets.sources.json_graph's documented
// purpose — "no public datasets are registered here").
type jsonValue struct {
	Kind  string      `json:"kind"`
	Value interface{} `json:"value,omitempty"`
}

type jsonNode struct {
	ID     int64                `json:"id"`
	Labels []string             `json:"labels"`
	Props  map[string]jsonValue `json:"props,omitempty"`
}

type jsonEdge struct {
	ID    int64                `json:"id"`
	Type  string               `json:"type"`
	From  int64                `json:"from"`
	To    int64                `json:"to"`
	Props map[string]jsonValue `json:"props,omitempty"`
}

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// JSONGraphLoader reads and writes the JSON Graph format.
type JSONGraphLoader struct{}

func (l *JSONGraphLoader) Format() string { return "json_graph" }

func (l *JSONGraphLoader) Load(store graph.Store, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return cerr.New(cerr.KindStorageError, "opening dataset %s: %v", path, err)
	}
	var jg jsonGraph
	if err := json.Unmarshal(buf, &jg); err != nil {
		return cerr.New(cerr.KindStorageError, "parsing JSON graph %s: %v", path, err)
	}
	ms, ok := store.(*graph.MemoryStore)
	if !ok {
		return cerr.New(cerr.KindStorageError, "JSON graph import requires a graph.MemoryStore")
	}
	for _, n := range jg.Nodes {
		props, err := jsonDecodeProps(n.Props)
		if err != nil {
			return err
		}
		ms.RestoreNode(graph.NodeID(n.ID), n.Labels, props)
	}
	for _, e := range jg.Edges {
		props, err := jsonDecodeProps(e.Props)
		if err != nil {
			return err
		}
		ms.RestoreRelationship(graph.RelID(e.ID), e.Type, graph.NodeID(e.From), graph.NodeID(e.To), props)
	}
	return nil
}

// Export writes store's full contents to path as JSON Graph.
func Export(store graph.Store, path string) error {
	jg := jsonGraph{}
	for _, id := range store.ScanAllNodes() {
		n, err := store.GetNode(id)
		if err != nil {
			return err
		}
		props, err := jsonEncodeProps(n.Props)
		if err != nil {
			return err
		}
		jg.Nodes = append(jg.Nodes, jsonNode{ID: int64(n.ID), Labels: n.Labels, Props: props})
	}
	for _, id := range store.ScanAllNodes() {
		// Each relationship has exactly one "from" endpoint, so scanning
		// every node's outgoing edges visits every relationship exactly
		// once with no separate dedup pass needed.
		edges, err := store.IncidentEdges(id, graph.Outgoing, nil)
		if err != nil {
			return err
		}
		for _, eid := range edges {
			r, err := store.GetRelationship(eid)
			if err != nil {
				return err
			}
			props, err := jsonEncodeProps(r.Props)
			if err != nil {
				return err
			}
			jg.Edges = append(jg.Edges, jsonEdge{
				ID: int64(r.ID), Type: r.Type, From: int64(r.From), To: int64(r.To), Props: props,
			})
		}
	}
	buf, err := json.MarshalIndent(&jg, "", "  ")
	if err != nil {
		return cerr.New(cerr.KindStorageError, "encoding JSON graph: %v", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return cerr.New(cerr.KindStorageError, "writing %s: %v", path, err)
	}
	return nil
}

func jsonEncodeProps(props map[string]value.Value) (map[string]jsonValue, error) {
	out := make(map[string]jsonValue, len(props))
	for k, v := range props {
		jv, err := jsonEncodeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = jv
	}
	return out, nil
}

func jsonDecodeProps(props map[string]jsonValue) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(props))
	for k, jv := range props {
		v, err := jsonDecodeValue(jv)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func jsonEncodeValue(v value.Value) (jsonValue, error) {
	switch v.Kind {
	case value.Null:
		return jsonValue{Kind: "null"}, nil
	case value.Bool:
		return jsonValue{Kind: "bool", Value: v.B}, nil
	case value.Int:
		return jsonValue{Kind: "int", Value: v.I}, nil
	case value.Float:
		return jsonValue{Kind: "float", Value: v.F}, nil
	case value.String:
		return jsonValue{Kind: "string", Value: v.S}, nil
	case value.List:
		items := make([]jsonValue, len(v.L))
		for i, item := range v.L {
			jv, err := jsonEncodeValue(item)
			if err != nil {
				return jsonValue{}, err
			}
			items[i] = jv
		}
		return jsonValue{Kind: "list", Value: items}, nil
	case value.Map:
		m := make(map[string]jsonValue, v.M.Len())
		for _, k := range v.M.Keys() {
			mv, _ := v.M.Get(k)
			jv, err := jsonEncodeValue(mv)
			if err != nil {
				return jsonValue{}, err
			}
			m[k] = jv
		}
		return jsonValue{Kind: "map", Value: m}, nil
	case value.Date, value.Time, value.DateTime:
		return jsonValue{Kind: v.Kind.String(), Value: v.T.Format(time.RFC3339Nano)}, nil
	case value.Duration:
		return jsonValue{Kind: "duration", Value: map[string]int64{
			"months": v.Dur.Months, "days": v.Dur.Days, "seconds": v.Dur.Seconds, "nanos": v.Dur.Nanos,
		}}, nil
	case value.Point:
		return jsonValue{Kind: "point", Value: map[string]interface{}{
			"x": v.Pt.X, "y": v.Pt.Y, "z": v.Pt.Z, "is3d": v.Pt.Is3D, "srid": v.Pt.SRID,
		}}, nil
	default:
		return jsonValue{}, cerr.New(cerr.KindStorageError, "value kind %s is not storable as a property", v.Kind)
	}
}

func jsonDecodeValue(jv jsonValue) (value.Value, error) {
	switch jv.Kind {
	case "null", "":
		return value.NullValue, nil
	case "bool":
		return value.BoolValue(asBool(jv.Value)), nil
	case "int":
		return value.IntValue(int64(asFloat(jv.Value))), nil
	case "float":
		return value.FloatValue(asFloat(jv.Value)), nil
	case "string":
		return value.StringValue(asString(jv.Value)), nil
	case "list":
		raw, ok := jv.Value.([]interface{})
		if !ok {
			return value.Value{}, cerr.New(cerr.KindStorageError, "expected list value")
		}
		items := make([]value.Value, len(raw))
		for i, r := range raw {
			sub, err := reencodeAndDecode(r)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = sub
		}
		return value.ListValue(items), nil
	case "map":
		raw, ok := jv.Value.(map[string]interface{})
		if !ok {
			return value.Value{}, cerr.New(cerr.KindStorageError, "expected map value")
		}
		m := value.NewOrderedMap()
		for k, r := range raw {
			sub, err := reencodeAndDecode(r)
			if err != nil {
				return value.Value{}, err
			}
			m.Set(k, sub)
		}
		return value.MapValue(m), nil
	case "Date", "Time", "DateTime":
		t, err := time.Parse(time.RFC3339Nano, asString(jv.Value))
		if err != nil {
			return value.Value{}, cerr.New(cerr.KindStorageError, "parsing temporal value: %v", err)
		}
		switch jv.Kind {
		case "Date":
			return value.DateValue(t), nil
		case "Time":
			return value.TimeValue(t), nil
		default:
			return value.DateTimeValue(t), nil
		}
	case "duration":
		raw, _ := jv.Value.(map[string]interface{})
		return value.DurationValueOf(value.DurationValue{
			Months:  int64(asFloat(raw["months"])),
			Days:    int64(asFloat(raw["days"])),
			Seconds: int64(asFloat(raw["seconds"])),
			Nanos:   int64(asFloat(raw["nanos"])),
		}), nil
	case "point":
		raw, _ := jv.Value.(map[string]interface{})
		return value.PointValueOf(value.PointValue{
			X: asFloat(raw["x"]), Y: asFloat(raw["y"]), Z: asFloat(raw["z"]),
			Is3D: asBool(raw["is3d"]), SRID: int(asFloat(raw["srid"])),
		}), nil
	default:
		return value.Value{}, cerr.New(cerr.KindStorageError, "unknown JSON value kind %q", jv.Kind)
	}
}

// reencodeAndDecode round-trips a decoded interface{} (itself lacking a
// Kind tag once nested inside a list/map) back through the kind-tagged
// jsonValue shape. Nested list/map entries in the Go JSON decoder come
// back as map[string]interface{} already matching jsonValue's own field
// names, so a JSON re-marshal/unmarshal recovers the typed struct cheaply.
func reencodeAndDecode(raw interface{}) (value.Value, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return value.Value{}, err
	}
	var jv jsonValue
	if err := json.Unmarshal(buf, &jv); err != nil {
		return value.Value{}, err
	}
	return jsonDecodeValue(jv)
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
