package classifier

import (
	"context"

	"github.com/clintrovert/firstissue/pkg/types"
)

// Classifier judges whether an issue suits a first-time contributor
type Classifier interface {
	Classify(ctx context.Context, issue types.RawIssue) (types.Analysis, error)
}
