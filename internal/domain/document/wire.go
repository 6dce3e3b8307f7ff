package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/solrmap/internal/domain"
)

// Update request bodies without documents.
const (
	CommitRequest   = "\n<commit/>\n"
	OptimizeRequest = "\n<optimize/>\n"
)

// AddRequest wraps documents into an add (index or update) request body.
func AddRequest(docs []Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no documents to add", domain.ErrEmptyInput)
	}
	var b strings.Builder
	b.WriteString("\n<add>\n")
	for i := range docs {
		b.WriteString(docs[i].AddXML())
	}
	b.WriteString("</add>\n")
	return b.String(), nil
}

// DeleteRequest wraps document ids into a delete request body.
func DeleteRequest(docs []Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no documents to delete", domain.ErrEmptyInput)
	}
	var b strings.Builder
	b.WriteString("\n<delete>\n")
	for i := range docs {
		b.WriteString(docs[i].DeleteXML())
	}
	b.WriteString("</delete>\n")
	return b.String(), nil
}
