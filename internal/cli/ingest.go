package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/ingest"
)

// maxPayloadSize bounds one event read from stdin.
const maxPayloadSize = 16 << 20

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Strict  bool
	NoLearn bool

	// IDGenerator overrides session id generation (for testing).
	IDGenerator ingest.IDGenerator
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Record one session event read from stdin",
		Long: `Read one JSON event from stdin and store it.

Kinds: session_start, session_end, response, code_change, command.
Editor hooks call this once per event. A malformed or rejected event is
logged and dropped with exit status 0 so the hook never breaks the editor;
--strict makes it fail with status 1 instead.

Example:
  echo '{"kind":"session_start","project_path":"/src/app"}' | learnlog ingest
  echo '{"kind":"response","session_id":"...","text":"..."}' | learnlog ingest --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when the event is malformed or rejected")
	cmd.Flags().BoolVar(&opts.NoLearn, "no-learn", false, "do not turn '# LEARN:' comments into concepts")

	return cmd
}

func runIngest(opts *IngestOptions, cmd *cobra.Command) error {
	payload, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxPayloadSize))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event", err)
	}

	e, err := opts.openEnv(cmd)
	if err != nil {
		return err
	}
	defer closeEnv(e)

	ingestOpts := []ingest.Option{
		ingest.WithLogger(e.logger),
		ingest.WithLearnMarkers(!opts.NoLearn),
	}
	if opts.IDGenerator != nil {
		ingestOpts = append(ingestOpts, ingest.WithIDGenerator(opts.IDGenerator))
	}
	in, err := ingest.New(e.store, ingestOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start ingester", err)
	}

	res, err := in.Ingest(cmd.Context(), payload)
	if err != nil {
		if opts.Strict {
			return WrapExitError(ExitFailure, "event rejected", err)
		}
		// Already logged by the ingester.
		return nil
	}
	return e.out.Success(ingestView(res))
}

type ingestView ingest.Result

func (v ingestView) String() string {
	s := fmt.Sprintf("stored %s (session %s)", v.Kind, v.SessionID)
	if n := len(v.Concepts); n > 0 {
		s += fmt.Sprintf(", %d concept(s) from LEARN notes", n)
	}
	if v.Clamped {
		s += ", end time clamped to start"
	}
	return s
}
