package graph

import "github.com/cypherdb/cypherdb/internal/cerr"

func errNodeNotFound(id NodeID) error {
	return cerr.New(cerr.KindNotFound, "node %d does not exist", id)
}

func errRelNotFound(id RelID) error {
	return cerr.New(cerr.KindNotFound, "relationship %d does not exist", id)
}

func errIncidentEdges(id NodeID) error {
	return cerr.New(cerr.KindConstraintViolation, "node %d has incident relationships; use DETACH DELETE", id)
}

func errInvalidName(kind, name string) error {
	return cerr.New(cerr.KindSyntaxError, "%s %q must start with a letter", kind, name)
}
