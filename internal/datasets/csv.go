package datasets

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

// CSVLoader reads a SNAP-style edge list: one relationship per row, either
// a bare "src dst" pair (SNAP's whitespace/tab format, '#'-prefixed
// comment lines skipped) or a header'd CSV with "src,dst[,type][,...props]"
// columns. Nodes are created on first reference; this loader never
// dedupes external ids beyond the id→NodeID mapping it keeps for its own
// run, matching the original snap.py loaders' "one pass, no schema"
// simplicity.
type CSVLoader struct {
	// Label is applied to every created node; defaults to "Node".
	Label string
	// RelType is applied to every created relationship when the input has
	// no explicit type column; defaults to "LINK".
	RelType string
}

func (l *CSVLoader) Format() string { return "csv" }

func (l *CSVLoader) Load(store graph.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return cerr.New(cerr.KindStorageError, "opening dataset %s: %v", path, err)
	}
	defer f.Close()
	return l.loadFrom(store, f)
}

func (l *CSVLoader) loadFrom(store graph.Store, r io.Reader) error {
	label := l.Label
	if label == "" {
		label = "Node"
	}
	relType := l.RelType
	if relType == "" {
		relType = "LINK"
	}

	ids := make(map[string]graph.NodeID)
	ensureNode := func(external string) (graph.NodeID, error) {
		if id, ok := ids[external]; ok {
			return id, nil
		}
		id, err := store.CreateNode([]string{label}, map[string]value.Value{
			"externalId": value.StringValue(external),
		})
		if err != nil {
			return 0, err
		}
		ids[external] = id
		return id, nil
	}

	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec []string
		if strings.Contains(line, ",") {
			rec = strings.Split(line, ",")
		} else {
			rec = strings.Fields(line)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) < 2 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(rec[0], "src") || strings.EqualFold(rec[0], "source") {
				continue
			}
		}
		src, dst := rec[0], rec[1]
		fromID, err := ensureNode(src)
		if err != nil {
			return err
		}
		toID, err := ensureNode(dst)
		if err != nil {
			return err
		}
		rt := relType
		props := map[string]value.Value{}
		if len(rec) >= 3 && rec[2] != "" {
			rt = rec[2]
		}
		if len(rec) >= 4 {
			if w, err := strconv.ParseFloat(rec[3], 64); err == nil {
				props["weight"] = value.FloatValue(w)
			}
		}
		if _, err := store.CreateRelationship(rt, fromID, toID, props); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return cerr.New(cerr.KindStorageError, "reading dataset: %v", err)
	}
	return nil
}
