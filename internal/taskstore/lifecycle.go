package taskstore

import "context"

// Begin records a new task already in processing. It ignores cancellation of
// ctx so a run cancelled before it starts still leaves a row behind.
func (s *Store) Begin(ctx context.Context, source string, formats []string) (*Task, error) {
	ctx = context.WithoutCancel(ctx)
	task, err := s.Create(ctx, source, formats)
	if err != nil {
		return nil, err
	}
	if err := s.SetStatus(ctx, task.ID, StatusProcessing, ""); err != nil {
		return nil, err
	}
	task.Status = StatusProcessing
	return task, nil
}

// Finish stores the outcome of a run: Complete on success, otherwise the
// status from StatusForError with runErr as the message.
func (s *Store) Finish(ctx context.Context, id string, cueCount int, outputs []string, runErr error) error {
	ctx = context.WithoutCancel(ctx)
	if runErr == nil {
		return s.Complete(ctx, id, cueCount, outputs)
	}
	return s.SetStatus(ctx, id, StatusForError(runErr), runErr.Error())
}
