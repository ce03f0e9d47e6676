package runner

import "context"

const subscriptionBuffer = 5

// Output replays and then follows the captured stdout and stderr of a
// process. Both channels close when the process has closed its end of the
// stream or ctx is done.
func (runner *Runner) Output(ctx context.Context, id string) (<-chan []byte, <-chan []byte, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, nil, err
	}
	return pe.stdout.Subscribe(ctx, subscriptionBuffer), pe.stderr.Subscribe(ctx, subscriptionBuffer), nil
}
