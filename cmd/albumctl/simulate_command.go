package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-albums/internal/adapters/noop"
	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/internal/upload"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	files       int
	size        int64
	chunkSize   int
	reject      int
	quota       int64
	cancelAfter int
	dryRun      bool
}

func newSimulateUploadCommand(ctx *commandContext) *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate-upload",
		Short: "Run an upload session against in-memory storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulateUpload(cmd, ctx, opts)
		},
	}
	cmd.Flags().IntVar(&opts.files, "files", 25, "Number of files to upload")
	cmd.Flags().Int64Var(&opts.size, "size", 1024, "Size of each file in bytes")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Files per request (defaults to configuration)")
	cmd.Flags().IntVar(&opts.reject, "reject", 0, "Number of trailing files the storage rejects")
	cmd.Flags().Int64Var(&opts.quota, "quota", 0, "Storage limit in bytes, zero for unlimited")
	cmd.Flags().IntVar(&opts.cancelAfter, "cancel-after", 0, "Cancel the session after this many chunks")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Accept every chunk without storing images")
	return cmd
}

func runSimulateUpload(cmd *cobra.Command, ctx *commandContext, opts simulateOptions) error {
	runCtx := cmd.Context()
	module, err := ctx.ensureModule(runCtx)
	if err != nil {
		return err
	}
	event, err := module.Store().CreateEvent(runCtx, uuid.New(), "Simulated upload")
	if err != nil {
		return err
	}

	files := make([]interfaces.UploadFile, 0, opts.files)
	var storage interfaces.StorageAPI
	if opts.dryRun {
		storage = noop.Storage()
	} else {
		storageOpts := []upload.MemoryStorageOption{}
		if opts.quota > 0 {
			storageOpts = append(storageOpts, upload.WithQuota("simulated", opts.quota, 0))
		}
		for i := opts.files - opts.reject; i < opts.files; i++ {
			storageOpts = append(storageOpts, upload.WithRejectedFile(simulatedName(i), "rejected by storage"))
		}
		storage = upload.NewMemoryStorage(module.Store(), storageOpts...)
	}
	for i := 0; i < opts.files; i++ {
		files = append(files, simulatedFile{name: simulatedName(i), size: opts.size})
	}

	container := module.Container()
	cfg := container.Config
	counting := &cancellingStorage{StorageAPI: storage, after: opts.cancelAfter}
	controllerOpts := []upload.Option{
		upload.WithConfig(cfg.Upload),
		upload.WithTenantID(cfg.TenantID),
		upload.WithLogger(logging.UploadLogger(container.LoggerProvider())),
		upload.WithMetrics(container.Metrics()),
	}
	if opts.chunkSize > 0 {
		controllerOpts = append(controllerOpts, upload.WithChunkSize(opts.chunkSize))
	}
	if previews := container.Previews(); previews != nil {
		controllerOpts = append(controllerOpts, upload.WithPreviews(previews))
	}
	ctrl := upload.NewController(counting, event.ID, controllerOpts...)
	defer ctrl.Close()
	counting.cancel = ctrl.Cancel

	if _, err := ctrl.Add(files...); err != nil {
		return err
	}
	report, err := ctrl.Start(runCtx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"State", "Total", "Uploaded", "Failed", "Untouched", "Chunks sent"},
		[][]string{{
			string(report.State),
			strconv.Itoa(report.Total),
			strconv.Itoa(report.Uploaded),
			strconv.Itoa(len(report.Failures)),
			strconv.Itoa(report.Untouched()),
			strconv.Itoa(counting.calls()),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	if len(report.Failures) > 0 {
		rows := make([][]string, 0, len(report.Failures))
		for _, failure := range report.Failures {
			rows = append(rows, []string{failure.FileName, failure.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Reason"}, rows, nil))
	}
	return nil
}

func simulatedName(i int) string {
	return fmt.Sprintf("IMG_%04d.jpg", i+1)
}

type simulatedFile struct {
	name string
	size int64
}

func (f simulatedFile) Name() string { return f.name }
func (f simulatedFile) Size() int64  { return f.size }
func (f simulatedFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(strings.Repeat("x", int(f.size)))), nil
}

// cancellingStorage cancels the session once after chunks have been sent.
type cancellingStorage struct {
	interfaces.StorageAPI
	after  int
	cancel func()

	mu   sync.Mutex
	sent int
}

func (s *cancellingStorage) UploadImageBatch(ctx context.Context, req interfaces.UploadBatchRequest) (*interfaces.UploadBatchResult, error) {
	result, err := s.StorageAPI.UploadImageBatch(ctx, req)
	s.mu.Lock()
	s.sent++
	trigger := s.after > 0 && s.sent == s.after && s.cancel != nil
	s.mu.Unlock()
	if trigger {
		s.cancel()
	}
	return result, err
}

func (s *cancellingStorage) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}
