// Package ingestion is the external collaborator that turns a CSV edge
// feed into graph.Edge batches for Store.AddEdges. Tokenization of the
// question string and the data source itself are explicitly out of the
// reasoning engine's core scope; this package is the boundary.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// RowError records why a single CSV row was dropped. Ingestion never fails
// a whole batch for one bad row — unknown edge types (or other row-level
// problems) are logged and skipped.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

var requiredColumns = []string{"Edge Type", "Head Entity", "Tail Entity"}

// Ingest parses a CSV edge feed with columns `Edge Type`, `Head Entity`,
// `Tail Entity`, and an optional `Confidence`
// column (float, default 1.0), matched by header name so column order is
// irrelevant. Returns every well-formed edge plus one RowError per
// dropped row.
func Ingest(r io.Reader) ([]graph.Edge, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("ingestion: reading header: %w", err)
	}

	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columnIndex[required]; !ok {
			return nil, nil, fmt.Errorf("ingestion: missing required column %q", required)
		}
	}
	confidenceCol, hasConfidence := columnIndex["Confidence"]

	var edges []graph.Edge
	var rowErrors []RowError
	rowNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		edgeType := graph.EdgeType(strings.TrimSpace(record[columnIndex["Edge Type"]]))
		if !edgeType.Valid() {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: fmt.Sprintf("unrecognized edge type %q", edgeType)})
			continue
		}

		head := strings.TrimSpace(record[columnIndex["Head Entity"]])
		tail := strings.TrimSpace(record[columnIndex["Tail Entity"]])
		if head == "" || tail == "" {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "head or tail entity empty"})
			continue
		}

		edge := graph.NewEdge(edgeType, head, tail)
		if hasConfidence {
			raw := strings.TrimSpace(record[confidenceCol])
			if raw != "" {
				conf, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					rowErrors = append(rowErrors, RowError{Row: rowNum, Message: fmt.Sprintf("invalid confidence %q", raw)})
					continue
				}
				edge.Confidence = conf
			}
		}

		edges = append(edges, edge)
	}

	return edges, rowErrors, nil
}
