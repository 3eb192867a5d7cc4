package txn

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// InflightError names the commands that were still unresolved when commit
// was requested, ordered by sequence id.
type InflightError struct {
	Kinds []wire.CommandKind
}

func (e *InflightError) Error() string {
	names := make([]string, 0, len(e.Kinds))
	for _, k := range e.Kinds {
		names = append(names, string(k))
	}
	return fmt.Sprintf("%d unresolved requests: %s", len(e.Kinds), strings.Join(names, ", "))
}

func inflightError(kinds []wire.CommandKind) error {
	return common.WrapError(common.CodeInflightRequests, &InflightError{Kinds: kinds}, "commit with requests still in flight")
}

// streamError classifies an error returned by the stream itself.
func streamError(op string, err error) error {
	var typed *common.Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return common.NewError(common.CodeEndOfStream, "%s: stream ended", op)
	}
	return common.WrapError(common.CodeTransport, err, "%s", op)
}
