package logs

import (
	"context"
	"errors"
	"fmt"
)

// WrapSpan joins the current span id onto err, so a failure inside an
// epoch can be matched to the run that produced it.
func WrapSpan(ctx context.Context, err error) error {
	v := ctx.Value(SpanKey)
	if v == nil {
		return err
	}
	err = errors.Join(err, fmt.Errorf("span: %s", v.(Span)))
	return err
}
