package pipeline

import (
	"context"
	"fmt"
	"log"

	"jobpilot-engine/internal/store"
)

// auditor mirrors every stage outcome to the process log and the append-only
// activity_log table. Failures to write the audit row are logged and
// swallowed: audit must never take a stage down.
type auditor struct {
	store     *store.Store
	component string
}

func (a auditor) write(ctx context.Context, outcome, action, detail string) {
	log.Printf("[%s] %s: %s", a.component, action, detail)
	if err := a.store.AppendActivity(ctx, a.component, action, outcome, detail); err != nil {
		log.Printf("[%s] activity log write failed: %v", a.component, err)
	}
}

func (a auditor) success(ctx context.Context, action, format string, args ...any) {
	a.write(ctx, store.OutcomeSuccess, action, fmt.Sprintf(format, args...))
}

func (a auditor) warn(ctx context.Context, action, format string, args ...any) {
	a.write(ctx, store.OutcomeWarning, action, fmt.Sprintf(format, args...))
}

func (a auditor) error(ctx context.Context, action, format string, args ...any) {
	a.write(ctx, store.OutcomeError, action, fmt.Sprintf(format, args...))
}
