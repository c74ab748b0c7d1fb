package handler

import "context"

// ProjectPoolUpdated carries the chain's project pool total. Stats are set, not added.
func ProjectPoolUpdated(_ context.Context, hc *Context) error {
	total, err := hc.amount("totalProjectPool")
	if err != nil {
		return err
	}
	hc.Delta.SetProjectPool(total)
	return nil
}

// AuditOnly is registered for events that only leave an audit row.
func AuditOnly(context.Context, *Context) error {
	return nil
}
