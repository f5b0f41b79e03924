package logs

import (
	"context"
	"testing"

	"github.com/reusee/dscope"
)

func TestNewSpan(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		newSpan NewSpan,
	) {
		ctx := context.Background()
		ctx, span := newSpan(ctx, "")
		if span == "" {
			t.Fatal()
		}
		ctx2, span2 := newSpan(ctx, span)
		if span2 == "" || span2 == span {
			t.Fatal()
		}
		if v := ctx2.Value(SpanKey); v.(Span) != span2 {
			t.Fatal()
		}
		_ = ctx
	})
}
