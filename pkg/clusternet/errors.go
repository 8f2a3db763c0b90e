package clusternet

import "github.com/fpgacore/atomnet/pkg/atomnet"

const errSource = "clusternet"

func newErr(kind atomnet.Kind, context string, cause error) *atomnet.IngestError {
	return &atomnet.IngestError{Source: errSource, Kind: kind, Context: context, Cause: cause}
}
